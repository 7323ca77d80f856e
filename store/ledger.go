package store

import "context"

// DeleteSelected soft-deletes the current selection as one atomic batch:
// the backend stamps the batch, the screens are spliced out of the local
// sequence in their original order, and the selection is cleared. The
// local mutation is optimistic only after the backend confirms, so a
// failed call leaves the sequence untouched.
func (s *Store) DeleteSelected(ctx context.Context) (*DeletedBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return nil, ErrNoSession
	}

	filenames := s.selectionInOrderLocked()
	if len(filenames) == 0 {
		return nil, ErrEmptySelection
	}

	ts, err := s.backend.DeleteScreens(ctx, s.projectID, filenames)
	if err != nil {
		return nil, err
	}

	removed := s.removeManyLocked(filenames)
	names := make([]string, len(removed))
	for i, scr := range removed {
		names[i] = scr.Filename
	}

	batch := DeletedBatch{Timestamp: ts, Count: len(names), Filenames: names}
	s.batches = append([]DeletedBatch{batch}, s.batches...)
	s.selection = make(map[string]struct{})
	s.anchor = ""

	return &batch, nil
}

// RemoveScreens soft-deletes an explicit filename list (not the selection)
// as one batch. Used when the UI deletes a single screen directly.
func (s *Store) RemoveScreens(ctx context.Context, filenames []string) (*DeletedBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return nil, ErrNoSession
	}
	if len(filenames) == 0 {
		return nil, ErrEmptySelection
	}
	for _, f := range filenames {
		if s.indexOfLocked(f) < 0 {
			return nil, ErrUnknownScreen
		}
	}

	ts, err := s.backend.DeleteScreens(ctx, s.projectID, filenames)
	if err != nil {
		return nil, err
	}

	removed := s.removeManyLocked(filenames)
	names := make([]string, len(removed))
	for i, scr := range removed {
		names[i] = scr.Filename
	}

	batch := DeletedBatch{Timestamp: ts, Count: len(names), Filenames: names}
	s.batches = append([]DeletedBatch{batch}, s.batches...)
	return &batch, nil
}

// RestoreBatch restores a deleted batch and adopts the backend's
// authoritative sequence. The original slots may have been invalidated by
// later edits, so the engine does not reconstruct the prior ordering;
// restored screens land where the backend put them. The cursor is
// reconciled by filename and the selection pruned against the new sequence.
func (s *Store) RestoreBatch(ctx context.Context, batchTS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}

	sequence, err := s.backend.RestoreBatch(ctx, s.projectID, batchTS)
	if err != nil {
		return err
	}
	batches, err := s.backend.FetchDeletedBatches(ctx, s.projectID)
	if err != nil {
		return err
	}

	cursorFile := ""
	if s.cursor >= 0 && s.cursor < len(s.sequence) {
		cursorFile = s.sequence[s.cursor].Filename
	}

	s.sequence = sequence
	s.batches = batches

	// Reconcile cursor by identity, prune stale selection keys
	s.cursor = -1
	if cursorFile != "" {
		s.cursor = s.indexOfLocked(cursorFile)
	}
	live := make(map[string]struct{}, len(s.sequence))
	for _, scr := range s.sequence {
		live[scr.Filename] = struct{}{}
	}
	for f := range s.selection {
		if _, ok := live[f]; !ok {
			delete(s.selection, f)
		}
	}
	if _, ok := live[s.anchor]; !ok {
		s.anchor = ""
	}

	return nil
}

// Batches returns the deleted batches, newest first
func (s *Store) Batches() []DeletedBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DeletedBatch(nil), s.batches...)
}
