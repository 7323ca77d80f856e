package store

import (
	"context"
	"sort"
)

// SetMode switches the branch-editing mode. Modes are mutually exclusive;
// switching away from branch-select discards the staged selection buffer.
func (s *Store) SetMode(mode EditMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}

	switch mode {
	case ModeNone, ModeFork, ModeMerge, ModeBranchSelect:
	default:
		return ErrWrongMode
	}

	if s.mode != mode {
		s.pendingBranch = nil
	}
	s.mode = mode
	return nil
}

// Mode returns the current branch-editing mode
func (s *Store) Mode() EditMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ToggleForkPoint creates a fork point at index, or removes an existing
// one. Removing a fork point orphans any branch forked from it: the branch
// stays in the overlay and is flagged by Snapshot warnings rather than
// silently deleted.
func (s *Store) ToggleForkPoint(ctx context.Context, index int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}
	if index < 0 || index >= len(s.sequence) {
		return ErrIndexOutOfRange
	}

	if _, exists := s.forkPoints[index]; exists {
		if err := s.backend.RemoveForkPoint(ctx, s.projectID, index); err != nil {
			return err
		}
		delete(s.forkPoints, index)
		return nil
	}

	if err := s.backend.AddForkPoint(ctx, s.projectID, index, name); err != nil {
		return err
	}
	s.forkPoints[index] = name
	return nil
}

// ToggleMergePoint flips set membership of a merge point at index.
// Merge points carry no ownership, so toggling never orphans anything.
func (s *Store) ToggleMergePoint(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}
	if index < 0 || index >= len(s.sequence) {
		return ErrIndexOutOfRange
	}

	if _, exists := s.mergePoints[index]; exists {
		if err := s.backend.RemoveMergePoint(ctx, s.projectID, index); err != nil {
			return err
		}
		delete(s.mergePoints, index)
		return nil
	}

	if err := s.backend.AddMergePoint(ctx, s.projectID, index); err != nil {
		return err
	}
	s.mergePoints[index] = struct{}{}
	return nil
}

// TogglePendingScreen adds or removes an index from the staged branch
// buffer. Only valid in branch-select mode; the buffer stays sorted
// ascending and is not a branch until committed by CreateBranch.
func (s *Store) TogglePendingScreen(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}
	if s.mode != ModeBranchSelect {
		return ErrWrongMode
	}
	if index < 0 || index >= len(s.sequence) {
		return ErrIndexOutOfRange
	}

	for i, v := range s.pendingBranch {
		if v == index {
			s.pendingBranch = append(s.pendingBranch[:i], s.pendingBranch[i+1:]...)
			return nil
		}
	}
	s.pendingBranch = append(s.pendingBranch, index)
	sort.Ints(s.pendingBranch)
	return nil
}

// CreateBranch materializes the staged buffer as a branch forked from
// forkFrom. Validation runs locally before the backend call: the buffer
// must be non-empty, the fork point must exist, every staged index must
// come strictly after it, and no staged index may already belong to
// another branch. On success the buffer clears and branch-select mode
// exits.
func (s *Store) CreateBranch(ctx context.Context, name, color string, forkFrom int, mergeTo *int) (*Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return nil, ErrNoSession
	}
	if len(s.pendingBranch) == 0 {
		return nil, ErrEmptyBranch
	}
	if _, ok := s.forkPoints[forkFrom]; !ok {
		return nil, ErrForkPointNotFound
	}
	for _, idx := range s.pendingBranch {
		if idx <= forkFrom {
			return nil, ErrInvalidBranchRange
		}
	}
	claimed := make(map[int]struct{})
	for _, b := range s.branches {
		for _, idx := range b.Screens {
			claimed[idx] = struct{}{}
		}
	}
	for _, idx := range s.pendingBranch {
		if _, taken := claimed[idx]; taken {
			return nil, ErrScreenAlreadyBranched
		}
	}

	screens := append([]int(nil), s.pendingBranch...)
	branch, err := s.backend.AddBranch(ctx, s.projectID, name, color, forkFrom, mergeTo, screens)
	if err != nil {
		return nil, err
	}

	s.branches = append(s.branches, branch)
	s.pendingBranch = nil
	s.mode = ModeNone
	return &branch, nil
}

// RemoveBranch deletes a branch. Fork and merge points are untouched.
func (s *Store) RemoveBranch(ctx context.Context, branchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}

	for i, b := range s.branches {
		if b.ID == branchID {
			if err := s.backend.RemoveBranch(ctx, s.projectID, branchID); err != nil {
				return err
			}
			s.branches = append(s.branches[:i], s.branches[i+1:]...)
			return nil
		}
	}
	return ErrBranchNotFound
}

// ClearAllBranches resets fork points, merge points and branches for a
// full-project overlay reset
func (s *Store) ClearAllBranches(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}

	if err := s.backend.ClearBranchData(ctx, s.projectID); err != nil {
		return err
	}
	s.forkPoints = make(map[int]string)
	s.mergePoints = make(map[int]struct{})
	s.branches = nil
	s.pendingBranch = nil
	s.mode = ModeNone
	return nil
}

// Warnings returns the current dangling-reference warnings
func (s *Store) Warnings() []DanglingRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateLocked()
}

// validateLocked detects branch-overlay references that no longer resolve.
// Fork points, merge points and branches reference positional indices, and
// the engine does not re-map them on reorder or delete: a reference past
// the current bounds, or a branch whose fork point was removed, is flagged
// so the UI can refuse to render or act on it instead of crashing.
func (s *Store) validateLocked() []DanglingRef {
	var warnings []DanglingRef
	n := len(s.sequence)

	for idx := range s.forkPoints {
		if idx >= n {
			warnings = append(warnings, DanglingRef{
				Kind:   "fork-point",
				Index:  idx,
				Reason: "index past end of sequence",
			})
		}
	}
	for idx := range s.mergePoints {
		if idx >= n {
			warnings = append(warnings, DanglingRef{
				Kind:   "merge-point",
				Index:  idx,
				Reason: "index past end of sequence",
			})
		}
	}
	for _, b := range s.branches {
		if _, ok := s.forkPoints[b.ForkFrom]; !ok {
			warnings = append(warnings, DanglingRef{
				Kind:     "branch",
				BranchID: b.ID,
				Index:    b.ForkFrom,
				Reason:   "fork point removed",
			})
		} else if b.ForkFrom >= n {
			warnings = append(warnings, DanglingRef{
				Kind:     "branch",
				BranchID: b.ID,
				Index:    b.ForkFrom,
				Reason:   "fork index past end of sequence",
			})
		}
		for _, idx := range b.Screens {
			if idx >= n {
				warnings = append(warnings, DanglingRef{
					Kind:     "branch",
					BranchID: b.ID,
					Index:    idx,
					Reason:   "screen index past end of sequence",
				})
			}
		}
		if b.MergeTo != nil && *b.MergeTo >= n {
			warnings = append(warnings, DanglingRef{
				Kind:     "branch",
				BranchID: b.ID,
				Index:    *b.MergeTo,
				Reason:   "merge index past end of sequence",
			})
		}
	}

	sort.Slice(warnings, func(i, j int) bool {
		if warnings[i].Kind != warnings[j].Kind {
			return warnings[i].Kind < warnings[j].Kind
		}
		return warnings[i].Index < warnings[j].Index
	})
	return warnings
}

func (s *Store) forkPointsSortedLocked() []ForkPoint {
	points := make([]ForkPoint, 0, len(s.forkPoints))
	for idx, name := range s.forkPoints {
		points = append(points, ForkPoint{Index: idx, Name: name})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Index < points[j].Index })
	return points
}

func (s *Store) mergePointsSortedLocked() []int {
	points := make([]int, 0, len(s.mergePoints))
	for idx := range s.mergePoints {
		points = append(points, idx)
	}
	sort.Ints(points)
	return points
}
