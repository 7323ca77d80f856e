package store

import "context"

// Sequence returns a copy of the live sequence
func (s *Store) Sequence() []Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Screen(nil), s.sequence...)
}

// Reorder moves the screen at oldIndex to newIndex (move semantics, not
// swap). The result is a pure permutation of the sequence. The preview
// cursor tracks the move:
//
//   - cursor == oldIndex: the cursor follows the moved screen to newIndex
//   - oldIndex < cursor <= newIndex: the cursor shifts down by one
//   - newIndex <= cursor < oldIndex: the cursor shifts up by one
//   - otherwise the cursor is unchanged
func (s *Store) Reorder(oldIndex, newIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}
	n := len(s.sequence)
	if oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n {
		return ErrIndexOutOfRange
	}
	if oldIndex == newIndex {
		return nil
	}

	moved := s.sequence[oldIndex]
	s.sequence = append(s.sequence[:oldIndex], s.sequence[oldIndex+1:]...)
	rest := append([]Screen(nil), s.sequence[newIndex:]...)
	s.sequence = append(s.sequence[:newIndex], moved)
	s.sequence = append(s.sequence, rest...)

	if c := s.cursor; c >= 0 {
		switch {
		case c == oldIndex:
			s.cursor = newIndex
		case oldIndex < c && c <= newIndex:
			s.cursor = c - 1
		case newIndex <= c && c < oldIndex:
			s.cursor = c + 1
		}
	}

	s.unsaved = true
	return nil
}

// InsertAt inserts a screen at index. The index is clamped to the live
// sequence bounds; a duplicate filename is rejected.
func (s *Store) InsertAt(screen Screen, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(screen, index)
}

// AppendIfProject appends a screen at the tail only while projectID is the
// open session, as one atomic check-and-append. The staging importer uses
// this so a session switched between an import finishing and the append
// can never receive another project's screen; a mismatch returns
// ErrNoSession.
func (s *Store) AppendIfProject(projectID string, screen Screen) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectID != projectID {
		return ErrNoSession
	}
	return s.insertLocked(screen, len(s.sequence))
}

func (s *Store) insertLocked(screen Screen, index int) error {
	if s.projectID == "" {
		return ErrNoSession
	}
	if s.indexOfLocked(screen.Filename) >= 0 {
		return ErrDuplicateScreen
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.sequence) {
		index = len(s.sequence)
	}

	s.sequence = append(s.sequence, Screen{})
	copy(s.sequence[index+1:], s.sequence[index:])
	s.sequence[index] = screen

	// Keep the cursor on the screen it was previewing
	if s.cursor >= index {
		s.cursor++
	}

	s.unsaved = true
	return nil
}

// removeManyLocked splices the given filenames out of the sequence,
// returning the removed screens in their original relative order. The
// selection and cursor are re-derived atomically with the mutation:
// stale selection keys are dropped silently, a cursor on a removed screen
// becomes none, and a surviving cursor shifts down by the number of
// removals before it.
func (s *Store) removeManyLocked(filenames []string) []Screen {
	doomed := make(map[string]struct{}, len(filenames))
	for _, f := range filenames {
		doomed[f] = struct{}{}
	}

	var removed []Screen
	kept := s.sequence[:0]
	cursorShift := 0
	cursorRemoved := false

	for i, scr := range s.sequence {
		if _, gone := doomed[scr.Filename]; gone {
			removed = append(removed, scr)
			delete(s.selection, scr.Filename)
			if s.anchor == scr.Filename {
				s.anchor = ""
			}
			if s.cursor == i {
				cursorRemoved = true
			} else if s.cursor > i {
				cursorShift++
			}
			continue
		}
		kept = append(kept, scr)
	}
	s.sequence = kept

	if cursorRemoved {
		s.cursor = -1
	} else if s.cursor >= 0 {
		s.cursor -= cursorShift
	}

	return removed
}

// ApplyRenumbering replaces the sequence's filenames positionally with the
// canonical names returned by a successful apply-order, and clears the
// unsaved flag. Selection keys follow their screens to the new names.
func (s *Store) applyRenumberingLocked(newFilenames []string) {
	if len(newFilenames) != len(s.sequence) {
		return
	}

	newSelection := make(map[string]struct{}, len(s.selection))
	for i := range s.sequence {
		old := s.sequence[i].Filename
		if _, ok := s.selection[old]; ok {
			newSelection[newFilenames[i]] = struct{}{}
		}
		if s.anchor == old {
			s.anchor = newFilenames[i]
		}
		s.sequence[i].Filename = newFilenames[i]
	}
	s.selection = newSelection
	s.unsaved = false
}

// SetOnboardingRange validates and persists the onboarding range.
// Both -1 means the whole sequence.
func (s *Store) SetOnboardingRange(ctx context.Context, r OnboardingRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}
	if r.Start >= 0 && r.End >= 0 && r.Start > r.End {
		return ErrInvalidRange
	}

	if err := s.backend.SaveOnboardingRange(ctx, s.projectID, r); err != nil {
		return err
	}
	s.onboarding = r
	return nil
}
