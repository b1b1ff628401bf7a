//go:build linux

package storage

import (
	"os"
	"syscall"
	"time"
)

// oldestTime returns the older of the change and modification times, the
// same age basis the sweep has always used so that a late mtime touch
// cannot extend a directory's life past its creation-based retention.
func oldestTime(info os.FileInfo) time.Time {
	mtime := info.ModTime()
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		ctime := time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
		if ctime.Before(mtime) {
			return ctime
		}
	}
	return mtime
}
