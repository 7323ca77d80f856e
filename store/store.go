// Package store implements the flow sequence and branch graph engine: an
// ordered screen sequence, a selection/preview cursor, soft-delete batches
// and a branch overlay graph kept mutually consistent under reordering,
// multi-select deletion, restore and live staging imports.
package store

import (
	"context"
	"sync"
)

// Store is the session model for a single open project. It is the single
// source of mutable truth for the editing session; the Backend is the
// source of truth across sessions.
//
// All operations serialize on one mutex, held across backend calls, so the
// store behaves as a single-writer actor per project: no two mutations can
// interleave between a backend suspension and its local follow-up.
type Store struct {
	mu      sync.Mutex
	backend Backend

	projectID string
	sequence  []Screen
	unsaved   bool

	selection map[string]struct{}
	anchor    string // last-clicked filename, range-select origin
	cursor    int    // preview cursor index, -1 = none

	batches []DeletedBatch

	forkPoints  map[int]string // index -> name
	mergePoints map[int]struct{}
	branches    []Branch

	mode          EditMode
	pendingBranch []int // staged branch indices, sorted ascending

	onboarding OnboardingRange

	epoch int64 // thumbnail cache-busting epoch
}

// New creates a Store bound to a backend. No session is open until Open
// is called.
func New(backend Backend) *Store {
	s := &Store{backend: backend}
	s.reset()
	return s
}

// reset clears all session state. Callers hold s.mu (or own s exclusively).
func (s *Store) reset() {
	s.projectID = ""
	s.sequence = nil
	s.unsaved = false
	s.selection = make(map[string]struct{})
	s.anchor = ""
	s.cursor = -1
	s.batches = nil
	s.forkPoints = make(map[int]string)
	s.mergePoints = make(map[int]struct{})
	s.branches = nil
	s.mode = ModeNone
	s.pendingBranch = nil
	s.onboarding = OnboardingRange{Start: -1, End: -1}
}

// Open loads a project from the backend and makes it the active session.
// Any previously open session is discarded. The thumbnail epoch is bumped
// so a fresh load never serves stale cached images.
func (s *Store) Open(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sequence, err := s.backend.FetchSequence(ctx, projectID)
	if err != nil {
		return err
	}
	batches, err := s.backend.FetchDeletedBatches(ctx, projectID)
	if err != nil {
		return err
	}
	forkPoints, err := s.backend.FetchForkPoints(ctx, projectID)
	if err != nil {
		return err
	}
	mergePoints, err := s.backend.FetchMergePoints(ctx, projectID)
	if err != nil {
		return err
	}
	branches, err := s.backend.FetchBranches(ctx, projectID)
	if err != nil {
		return err
	}
	onboarding, err := s.backend.FetchOnboardingRange(ctx, projectID)
	if err != nil {
		return err
	}

	s.reset()
	s.projectID = projectID
	s.sequence = sequence
	s.batches = batches
	for _, fp := range forkPoints {
		s.forkPoints[fp.Index] = fp.Name
	}
	for _, mp := range mergePoints {
		s.mergePoints[mp] = struct{}{}
	}
	s.branches = branches
	s.onboarding = onboarding
	s.epoch++

	return nil
}

// Teardown closes the active session, discarding all local state
func (s *Store) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// ProjectID returns the open project's ID, or "" when no session is open
func (s *Store) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectID
}

// Snapshot is a consistent view of the whole session state
type Snapshot struct {
	ProjectID     string          `json:"projectId"`
	Sequence      []Screen        `json:"sequence"`
	Unsaved       bool            `json:"unsaved"`
	Selection     []string        `json:"selection"`
	Cursor        int             `json:"cursor"` // -1 = none
	Batches       []DeletedBatch  `json:"batches"`
	ForkPoints    []ForkPoint     `json:"forkPoints"`
	MergePoints   []int           `json:"mergePoints"`
	Branches      []Branch        `json:"branches"`
	Mode          EditMode        `json:"mode"`
	PendingBranch []int           `json:"pendingBranch"`
	Onboarding    OnboardingRange `json:"onboarding"`
	Warnings      []DanglingRef   `json:"warnings"`
	Epoch         int64           `json:"epoch"`
}

// Snapshot returns a copy of the current session state, including
// dangling-reference warnings for the branch overlay. Nested slices are
// copied too, so the snapshot never aliases live session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	batches := make([]DeletedBatch, len(s.batches))
	for i, b := range s.batches {
		b.Filenames = append([]string(nil), b.Filenames...)
		batches[i] = b
	}
	branches := make([]Branch, len(s.branches))
	for i, b := range s.branches {
		b.Screens = append([]int(nil), b.Screens...)
		branches[i] = b
	}

	snap := Snapshot{
		ProjectID:     s.projectID,
		Sequence:      append([]Screen(nil), s.sequence...),
		Unsaved:       s.unsaved,
		Selection:     s.selectionInOrderLocked(),
		Cursor:        s.cursor,
		Batches:       batches,
		ForkPoints:    s.forkPointsSortedLocked(),
		MergePoints:   s.mergePointsSortedLocked(),
		Branches:      branches,
		Mode:          s.mode,
		PendingBranch: append([]int(nil), s.pendingBranch...),
		Onboarding:    s.onboarding,
		Warnings:      s.validateLocked(),
		Epoch:         s.epoch,
	}
	if snap.Selection == nil {
		snap.Selection = []string{}
	}
	if snap.PendingBranch == nil {
		snap.PendingBranch = []int{}
	}
	return snap
}

// Epoch returns the current thumbnail cache epoch
func (s *Store) Epoch() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Unsaved reports whether the sequence has local changes not yet saved
func (s *Store) Unsaved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsaved
}

// indexOfLocked resolves a filename to its live sequence index, -1 if absent
func (s *Store) indexOfLocked(filename string) int {
	for i, scr := range s.sequence {
		if scr.Filename == filename {
			return i
		}
	}
	return -1
}
