package store

import "context"

// orderEntriesLocked builds the 1-based positional mapping for the current
// sequence
func (s *Store) orderEntriesLocked() []OrderEntry {
	entries := make([]OrderEntry, len(s.sequence))
	for i, scr := range s.sequence {
		entries[i] = OrderEntry{OriginalFile: scr.Filename, NewIndex: i + 1}
	}
	return entries
}

// SaveOrder sends the current order to the backend as metadata only, no
// file renames. The unsaved flag clears on success; on failure it stays
// set so the analyst can retry, and the local order is not rolled back.
func (s *Store) SaveOrder(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}

	if err := s.backend.SaveOrder(ctx, s.projectID, s.orderEntriesLocked()); err != nil {
		return err
	}
	s.unsaved = false
	return nil
}

// ApplyOrder has the backend physically renumber files to match the
// current order. On success the sequence adopts the canonical zero-padded
// filenames positionally, the unsaved flag clears, and the thumbnail epoch
// bumps so stale cached images are never shown under recycled filenames.
func (s *Store) ApplyOrder(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectID == "" {
		return ErrNoSession
	}

	canonical, err := s.backend.ApplyOrder(ctx, s.projectID, s.orderEntriesLocked())
	if err != nil {
		return err
	}

	s.applyRenumberingLocked(canonical)
	s.epoch++
	return nil
}
