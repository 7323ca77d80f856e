package store

// Toggle flips a screen's membership in the selection set and makes it the
// range-select anchor
func (s *Store) Toggle(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}
	if s.indexOfLocked(filename) < 0 {
		return ErrUnknownScreen
	}

	if _, ok := s.selection[filename]; ok {
		delete(s.selection, filename)
	} else {
		s.selection[filename] = struct{}{}
	}
	s.anchor = filename
	return nil
}

// SelectRange selects every screen between the last-clicked anchor and
// targetIndex, inclusive, in either direction. Without an anchor only the
// target is selected. The anchor is left in place so repeated range clicks
// extend from the same origin.
func (s *Store) SelectRange(targetIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}
	if targetIndex < 0 || targetIndex >= len(s.sequence) {
		return ErrIndexOutOfRange
	}

	anchorIndex := targetIndex
	if s.anchor != "" {
		if i := s.indexOfLocked(s.anchor); i >= 0 {
			anchorIndex = i
		}
	}

	lo, hi := anchorIndex, targetIndex
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := lo; i <= hi; i++ {
		s.selection[s.sequence[i].Filename] = struct{}{}
	}
	return nil
}

// SelectAll selects every live screen
func (s *Store) SelectAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}
	for _, scr := range s.sequence {
		s.selection[scr.Filename] = struct{}{}
	}
	return nil
}

// ClearSelection empties the selection set and drops the anchor
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]struct{})
	s.anchor = ""
}

// Selected reports whether a screen is in the selection set
func (s *Store) Selected(filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selection[filename]
	return ok
}

// SetCursor moves the preview cursor. Pass -1 to clear it.
func (s *Store) SetCursor(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}
	if index < -1 || index >= len(s.sequence) {
		return ErrIndexOutOfRange
	}
	s.cursor = index
	return nil
}

// Cursor returns the preview cursor index, -1 when none
func (s *Store) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// selectionInOrderLocked returns the selected filenames in sequence order
func (s *Store) selectionInOrderLocked() []string {
	var out []string
	for _, scr := range s.sequence {
		if _, ok := s.selection[scr.Filename]; ok {
			out = append(out, scr.Filename)
		}
	}
	return out
}
