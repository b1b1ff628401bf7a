//go:build !linux

package storage

import (
	"os"
	"time"
)

// oldestTime falls back to the modification time on platforms where the
// inode change time is not exposed through os.FileInfo.
func oldestTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
