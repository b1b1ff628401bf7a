package models

import "time"

// FileKind classifies a tracked file by how it entered the session.
type FileKind string

const (
	KindUpload    FileKind = "upload"
	KindProcessed FileKind = "processed"
)

// TrackedFile is one file owned by a session. StoredName is the on-disk,
// collision-resistant name; DisplayName is what the user sees and renames.
type TrackedFile struct {
	StoredName  string    `json:"storedName"`
	DisplayName string    `json:"displayName"`
	Kind        FileKind  `json:"kind"`
	Size        int64     `json:"size,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CountdownStatus reports the remaining lifetime of a session's files.
type CountdownStatus struct {
	Active           bool  `json:"active"`
	StartTime        int64 `json:"startTime"` // Unix seconds
	EndTime          int64 `json:"endTime"`   // Unix seconds
	RemainingSeconds int64 `json:"remainingSeconds"`
}
