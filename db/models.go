package db

import (
	"time"
)

// ProjectRecord represents a curated flow project
type ProjectRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// ScreenRecord represents a captured screen attached to a project
type ScreenRecord struct {
	ProjectID string `json:"projectId"`
	Filename  string `json:"filename"`
	Position  int    `json:"position"`
	DeletedAt *int64 `json:"deletedAt,omitempty"`
	BatchTS   *int64 `json:"batchTs,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// DeletedBatchRecord groups screens soft-deleted together
type DeletedBatchRecord struct {
	Timestamp int64    `json:"timestamp"`
	Count     int      `json:"count"`
	Filenames []string `json:"filenames"`
}

// ForkPointRecord marks a sequence index as a branching origin
type ForkPointRecord struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
}

// BranchRecord is a named sub-path of sequence indices diverging from a fork point
type BranchRecord struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	ForkFrom  int    `json:"forkFrom"`
	MergeTo   *int   `json:"mergeTo,omitempty"`
	Screens   []int  `json:"screens"`
	CreatedAt int64  `json:"createdAt"`
}

// OnboardingRangeRecord is the sub-slice of the sequence shown as "onboarding".
// Both -1 means the whole sequence.
type OnboardingRangeRecord struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NowMilli returns the current time as a unix millisecond timestamp
func NowMilli() int64 {
	return time.Now().UnixMilli()
}
