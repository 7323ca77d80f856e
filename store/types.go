package store

import "context"

// Screen is one captured app screen. The filename is the only durable
// identity and is unique within a sequence; it changes only through a
// successful apply-order or import rename.
type Screen struct {
	Filename string `json:"filename"`
}

// DeletedBatch groups screens soft-deleted together, restorable as a unit
type DeletedBatch struct {
	Timestamp int64    `json:"timestamp"`
	Count     int      `json:"count"`
	Filenames []string `json:"filenames"`
}

// ForkPoint marks a sequence index as a branching origin
type ForkPoint struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
}

// Branch is a named sub-path of sequence indices diverging from a fork
// point, optionally rejoining at a merge point. Screens holds indices in
// ascending order, all strictly greater than ForkFrom.
type Branch struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	ForkFrom int    `json:"forkFrom"`
	Screens  []int  `json:"screens"`
	MergeTo  *int   `json:"mergeTo,omitempty"`
}

// OnboardingRange is the sub-slice of the sequence shown as the
// onboarding portion. Both -1 means the whole sequence.
type OnboardingRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// OrderEntry pairs an existing filename with its new 1-based position
type OrderEntry struct {
	OriginalFile string `json:"originalFile"`
	NewIndex     int    `json:"newIndex"`
}

// EditMode is the branch-editing state machine. Modes are mutually
// exclusive; entering one while another is active switches modes and
// discards any staged branch selection.
type EditMode string

const (
	ModeNone         EditMode = "none"
	ModeFork         EditMode = "fork"
	ModeMerge        EditMode = "merge"
	ModeBranchSelect EditMode = "branch-select"
)

// DanglingRef flags a branch-overlay reference that no longer resolves to
// a live sequence position. The engine surfaces these instead of silently
// dropping or re-mapping them.
type DanglingRef struct {
	Kind     string `json:"kind"` // "fork-point", "merge-point" or "branch"
	BranchID string `json:"branchId,omitempty"`
	Index    int    `json:"index"`
	Reason   string `json:"reason"`
}

// Backend is the backend of record. The engine applies mutations locally
// and optimistically; a failed call leaves the local state in place with
// the unsaved flag set, it never rolls back.
type Backend interface {
	FetchSequence(ctx context.Context, projectID string) ([]Screen, error)
	FetchDeletedBatches(ctx context.Context, projectID string) ([]DeletedBatch, error)
	FetchOnboardingRange(ctx context.Context, projectID string) (OnboardingRange, error)
	SaveOnboardingRange(ctx context.Context, projectID string, r OnboardingRange) error

	DeleteScreens(ctx context.Context, projectID string, filenames []string) (int64, error)
	// RestoreBatch returns the authoritative live sequence after the
	// restore; the engine adopts it rather than reconstructing the prior
	// ordering locally.
	RestoreBatch(ctx context.Context, projectID string, batchTS int64) ([]Screen, error)

	SaveOrder(ctx context.Context, projectID string, entries []OrderEntry) error
	// ApplyOrder physically renumbers files and returns the canonical
	// filenames in sequence order.
	ApplyOrder(ctx context.Context, projectID string, entries []OrderEntry) ([]string, error)

	FetchForkPoints(ctx context.Context, projectID string) ([]ForkPoint, error)
	FetchMergePoints(ctx context.Context, projectID string) ([]int, error)
	FetchBranches(ctx context.Context, projectID string) ([]Branch, error)
	AddForkPoint(ctx context.Context, projectID string, index int, name string) error
	RemoveForkPoint(ctx context.Context, projectID string, index int) error
	AddMergePoint(ctx context.Context, projectID string, index int) error
	RemoveMergePoint(ctx context.Context, projectID string, index int) error
	AddBranch(ctx context.Context, projectID, name, color string, forkFrom int, mergeTo *int, screens []int) (Branch, error)
	RemoveBranch(ctx context.Context, projectID, branchID string) error
	ClearBranchData(ctx context.Context, projectID string) error
}
