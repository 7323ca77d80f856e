package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

// fakeBackend is an in-memory Backend for engine tests
type fakeBackend struct {
	nextTS      int64
	deleted     [][]string
	restoredSeq []Screen
	batches     []DeletedBatch
	saveErr     error
	applyErr    error
	saveCalls   int
	applyCalls  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextTS: 1000}
}

func (f *fakeBackend) FetchSequence(ctx context.Context, projectID string) ([]Screen, error) {
	return append([]Screen(nil), f.restoredSeq...), nil
}

func (f *fakeBackend) FetchDeletedBatches(ctx context.Context, projectID string) ([]DeletedBatch, error) {
	return append([]DeletedBatch(nil), f.batches...), nil
}

func (f *fakeBackend) FetchOnboardingRange(ctx context.Context, projectID string) (OnboardingRange, error) {
	return OnboardingRange{Start: -1, End: -1}, nil
}

func (f *fakeBackend) SaveOnboardingRange(ctx context.Context, projectID string, r OnboardingRange) error {
	return nil
}

func (f *fakeBackend) DeleteScreens(ctx context.Context, projectID string, filenames []string) (int64, error) {
	f.nextTS++
	f.deleted = append(f.deleted, append([]string(nil), filenames...))
	return f.nextTS, nil
}

func (f *fakeBackend) RestoreBatch(ctx context.Context, projectID string, batchTS int64) ([]Screen, error) {
	return append([]Screen(nil), f.restoredSeq...), nil
}

func (f *fakeBackend) SaveOrder(ctx context.Context, projectID string, entries []OrderEntry) error {
	f.saveCalls++
	return f.saveErr
}

func (f *fakeBackend) ApplyOrder(ctx context.Context, projectID string, entries []OrderEntry) ([]string, error) {
	f.applyCalls++
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	// Canonical zero-padded names preserving each screen's extension
	names := make([]string, len(entries))
	for i, e := range entries {
		ext := filepath.Ext(e.OriginalFile)
		names[i] = fmt.Sprintf("%04d%s", e.NewIndex, ext)
	}
	return names, nil
}

func (f *fakeBackend) FetchForkPoints(ctx context.Context, projectID string) ([]ForkPoint, error) {
	return nil, nil
}
func (f *fakeBackend) FetchMergePoints(ctx context.Context, projectID string) ([]int, error) {
	return nil, nil
}
func (f *fakeBackend) FetchBranches(ctx context.Context, projectID string) ([]Branch, error) {
	return nil, nil
}
func (f *fakeBackend) AddForkPoint(ctx context.Context, projectID string, index int, name string) error {
	return nil
}
func (f *fakeBackend) RemoveForkPoint(ctx context.Context, projectID string, index int) error {
	return nil
}
func (f *fakeBackend) AddMergePoint(ctx context.Context, projectID string, index int) error {
	return nil
}
func (f *fakeBackend) RemoveMergePoint(ctx context.Context, projectID string, index int) error {
	return nil
}
func (f *fakeBackend) AddBranch(ctx context.Context, projectID, name, color string, forkFrom int, mergeTo *int, screens []int) (Branch, error) {
	return Branch{
		ID:       fmt.Sprintf("branch-%d", len(screens)),
		Name:     name,
		Color:    color,
		ForkFrom: forkFrom,
		MergeTo:  mergeTo,
		Screens:  screens,
	}, nil
}
func (f *fakeBackend) RemoveBranch(ctx context.Context, projectID, branchID string) error {
	return nil
}
func (f *fakeBackend) ClearBranchData(ctx context.Context, projectID string) error {
	return nil
}

// openStore returns a store with an open session holding the given filenames
func openStore(t *testing.T, filenames ...string) (*Store, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	for _, f := range filenames {
		backend.restoredSeq = append(backend.restoredSeq, Screen{Filename: f})
	}
	s := New(backend)
	if err := s.Open(context.Background(), "proj-1"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, backend
}

func sequenceNames(s *Store) []string {
	seq := s.Sequence()
	names := make([]string, len(seq))
	for i, scr := range seq {
		names[i] = scr.Filename
	}
	return names
}

func TestReorder_IsPermutation(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png", "d.png", "e.png")

	before := sequenceNames(s)
	for oldIdx := 0; oldIdx < 5; oldIdx++ {
		for newIdx := 0; newIdx < 5; newIdx++ {
			if err := s.Reorder(oldIdx, newIdx); err != nil {
				t.Fatalf("Reorder(%d,%d): %v", oldIdx, newIdx, err)
			}
			after := sequenceNames(s)
			if len(after) != len(before) {
				t.Fatalf("Reorder(%d,%d) changed length: %d != %d", oldIdx, newIdx, len(after), len(before))
			}
			seen := make(map[string]int)
			for _, n := range after {
				seen[n]++
			}
			for _, n := range before {
				if seen[n] != 1 {
					t.Fatalf("Reorder(%d,%d) not a permutation: %v", oldIdx, newIdx, after)
				}
			}
		}
	}
}

func TestReorder_MoveSemantics(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png", "d.png", "e.png")

	if err := s.Reorder(0, 3); err != nil {
		t.Fatal(err)
	}
	got := strings.Join(sequenceNames(s), ",")
	want := "b.png,c.png,d.png,a.png,e.png"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestReorder_CursorFollowsMovedScreen(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png", "d.png", "e.png", "f.png")

	if err := s.SetCursor(2); err != nil {
		t.Fatal(err)
	}
	if err := s.Reorder(2, 5); err != nil {
		t.Fatal(err)
	}
	if got := s.Cursor(); got != 5 {
		t.Errorf("cursor = %d, want 5", got)
	}
}

func TestReorder_CursorShiftsDownWhenScreenMovesPast(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png", "d.png", "e.png")

	if err := s.SetCursor(2); err != nil {
		t.Fatal(err)
	}
	if err := s.Reorder(0, 3); err != nil {
		t.Fatal(err)
	}
	if got := s.Cursor(); got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}
}

func TestReorder_CursorShiftsUpWhenScreenMovesAhead(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png", "d.png", "e.png")

	if err := s.SetCursor(2); err != nil {
		t.Fatal(err)
	}
	if err := s.Reorder(4, 0); err != nil {
		t.Fatal(err)
	}
	if got := s.Cursor(); got != 3 {
		t.Errorf("cursor = %d, want 3", got)
	}
}

func TestReorder_CursorUntouchedOutsideSpan(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png", "d.png", "e.png")

	if err := s.SetCursor(0); err != nil {
		t.Fatal(err)
	}
	if err := s.Reorder(2, 4); err != nil {
		t.Fatal(err)
	}
	if got := s.Cursor(); got != 0 {
		t.Errorf("cursor = %d, want 0", got)
	}
}

func TestReorder_MarksUnsaved(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png")

	if s.Unsaved() {
		t.Fatal("fresh session should not be unsaved")
	}
	if err := s.Reorder(0, 1); err != nil {
		t.Fatal(err)
	}
	if !s.Unsaved() {
		t.Error("reorder should mark unsaved")
	}
}

func TestReorder_OutOfRange(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png")

	if err := s.Reorder(0, 2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("got %v, want ErrIndexOutOfRange", err)
	}
	if err := s.Reorder(-1, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("got %v, want ErrIndexOutOfRange", err)
	}
}

func TestInsertAt_RejectsDuplicateFilename(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png")

	if err := s.InsertAt(Screen{Filename: "a.png"}, 1); !errors.Is(err, ErrDuplicateScreen) {
		t.Errorf("got %v, want ErrDuplicateScreen", err)
	}
}

func TestInsertAt_ShiftsCursor(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png")

	if err := s.SetCursor(1); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertAt(Screen{Filename: "x.png"}, 0); err != nil {
		t.Fatal(err)
	}
	// Cursor keeps previewing b.png
	if got := s.Cursor(); got != 2 {
		t.Errorf("cursor = %d, want 2", got)
	}
}

func TestAppend_AddsAtTail(t *testing.T) {
	s, _ := openStore(t, "a.png")

	if err := s.AppendIfProject("proj-1", Screen{Filename: "b.png"}); err != nil {
		t.Fatal(err)
	}
	got := sequenceNames(s)
	if len(got) != 2 || got[1] != "b.png" {
		t.Errorf("sequence = %v", got)
	}
	if !s.Unsaved() {
		t.Error("append should mark unsaved")
	}
}

func TestToggle_UnknownScreen(t *testing.T) {
	s, _ := openStore(t, "a.png")

	if err := s.Toggle("nope.png"); !errors.Is(err, ErrUnknownScreen) {
		t.Errorf("got %v, want ErrUnknownScreen", err)
	}
}

func TestSelectRange_BothDirections(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png", "d.png", "e.png")

	// Anchor at d.png, range back to index 1
	if err := s.Toggle("d.png"); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectRange(1); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	want := []string{"b.png", "c.png", "d.png"}
	if strings.Join(snap.Selection, ",") != strings.Join(want, ",") {
		t.Errorf("selection = %v, want %v", snap.Selection, want)
	}

	// Forward from the same anchor
	if err := s.SelectRange(4); err != nil {
		t.Fatal(err)
	}
	snap = s.Snapshot()
	want = []string{"b.png", "c.png", "d.png", "e.png"}
	if strings.Join(snap.Selection, ",") != strings.Join(want, ",") {
		t.Errorf("selection = %v, want %v", snap.Selection, want)
	}
}

func TestDeleteSelected_EmptySelection(t *testing.T) {
	s, _ := openStore(t, "a.png")

	if _, err := s.DeleteSelected(context.Background()); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("got %v, want ErrEmptySelection", err)
	}
}

func TestDeleteSelected_PrunesSelectionAndBatches(t *testing.T) {
	s, backend := openStore(t, "a.png", "b.png", "c.png")

	if err := s.Toggle("a.png"); err != nil {
		t.Fatal(err)
	}
	if err := s.Toggle("c.png"); err != nil {
		t.Fatal(err)
	}

	batch, err := s.DeleteSelected(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if batch.Count != 2 {
		t.Errorf("batch count = %d, want 2", batch.Count)
	}
	// Original relative order preserved
	if strings.Join(batch.Filenames, ",") != "a.png,c.png" {
		t.Errorf("batch filenames = %v", batch.Filenames)
	}
	if s.Selected("a.png") || s.Selected("c.png") {
		t.Error("selection should be cleared after delete")
	}
	if got := strings.Join(sequenceNames(s), ","); got != "b.png" {
		t.Errorf("sequence = %s, want b.png", got)
	}
	if len(backend.deleted) != 1 {
		t.Errorf("backend delete calls = %d, want 1", len(backend.deleted))
	}
}

func TestRemoveScreens_CursorBecomesNoneWhenItsScreenGoes(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png")

	if err := s.SetCursor(1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RemoveScreens(context.Background(), []string{"b.png"}); err != nil {
		t.Fatal(err)
	}
	if got := s.Cursor(); got != -1 {
		t.Errorf("cursor = %d, want -1", got)
	}
}

func TestRemoveScreens_CursorShiftsDownPastRemovals(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png", "d.png", "e.png")

	if err := s.SetCursor(4); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RemoveScreens(context.Background(), []string{"a.png", "c.png"}); err != nil {
		t.Fatal(err)
	}
	if got := s.Cursor(); got != 2 {
		t.Errorf("cursor = %d, want 2", got)
	}
}

func TestRemoveScreens_SelectionNeverKeepsRemovedKey(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png")

	if err := s.Toggle("a.png"); err != nil {
		t.Fatal(err)
	}
	if err := s.Toggle("b.png"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RemoveScreens(context.Background(), []string{"a.png"}); err != nil {
		t.Fatal(err)
	}
	if s.Selected("a.png") {
		t.Error("selection still contains removed screen")
	}
	if !s.Selected("b.png") {
		t.Error("surviving selection dropped")
	}
}

func TestRestoreBatch_AdoptsBackendSequence(t *testing.T) {
	s, backend := openStore(t, "a.png", "b.png", "c.png")

	if err := s.Toggle("b.png"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.DeleteSelected(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Backend appends the restored screen at the tail
	backend.restoredSeq = []Screen{{Filename: "a.png"}, {Filename: "c.png"}, {Filename: "b.png"}}
	backend.batches = nil

	if err := s.RestoreBatch(context.Background(), 1001); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(sequenceNames(s), ","); got != "a.png,c.png,b.png" {
		t.Errorf("sequence = %s", got)
	}
	if got := len(s.Batches()); got != 0 {
		t.Errorf("batches = %d, want 0", got)
	}
}

func TestSaveOrder_ClearsUnsavedOnSuccessOnly(t *testing.T) {
	s, backend := openStore(t, "a.png", "b.png")

	if err := s.Reorder(0, 1); err != nil {
		t.Fatal(err)
	}

	backend.saveErr = errors.New("network down")
	if err := s.SaveOrder(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if !s.Unsaved() {
		t.Error("unsaved flag must stay set after a failed save")
	}
	// Local optimistic order is not rolled back
	if got := strings.Join(sequenceNames(s), ","); got != "b.png,a.png" {
		t.Errorf("sequence = %s", got)
	}

	backend.saveErr = nil
	if err := s.SaveOrder(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Unsaved() {
		t.Error("unsaved flag should clear after a successful save")
	}
}

func TestApplyOrder_AdoptsCanonicalNamesAndBumpsEpoch(t *testing.T) {
	s, _ := openStore(t, "welcome.png", "signup.jpg", "done.webp")

	if err := s.Toggle("signup.jpg"); err != nil {
		t.Fatal(err)
	}
	epochBefore := s.Epoch()

	if err := s.ApplyOrder(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := strings.Join(sequenceNames(s), ",")
	want := "0001.png,0002.jpg,0003.webp"
	if got != want {
		t.Errorf("sequence = %s, want %s", got, want)
	}
	if s.Unsaved() {
		t.Error("apply should clear unsaved")
	}
	if s.Epoch() != epochBefore+1 {
		t.Error("apply should bump the thumbnail epoch")
	}
	// Selection follows the renamed screen
	if !s.Selected("0002.jpg") {
		t.Error("selection did not follow renamed screen")
	}
	if s.Selected("signup.jpg") {
		t.Error("selection still holds stale filename")
	}
}

func TestOpen_BumpsEpochAndResetsState(t *testing.T) {
	s, backend := openStore(t, "a.png")

	if err := s.Toggle("a.png"); err != nil {
		t.Fatal(err)
	}
	epoch := s.Epoch()

	backend.restoredSeq = []Screen{{Filename: "x.png"}}
	if err := s.Open(context.Background(), "proj-2"); err != nil {
		t.Fatal(err)
	}
	if s.Epoch() != epoch+1 {
		t.Error("reopen should bump epoch")
	}
	if s.Selected("a.png") {
		t.Error("selection should reset on open")
	}
	if got := strings.Join(sequenceNames(s), ","); got != "x.png" {
		t.Errorf("sequence = %s", got)
	}
}

func TestAppendIfProject_RequiresMatchingSession(t *testing.T) {
	s, _ := openStore(t, "a.png")

	if err := s.AppendIfProject("proj-2", Screen{Filename: "b.png"}); !errors.Is(err, ErrNoSession) {
		t.Errorf("got %v, want ErrNoSession", err)
	}
	if got := len(s.Sequence()); got != 1 {
		t.Fatalf("sequence length = %d, a mismatched append must not land", got)
	}

	if err := s.AppendIfProject("proj-1", Screen{Filename: "b.png"}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(sequenceNames(s), ","); got != "a.png,b.png" {
		t.Errorf("sequence = %s", got)
	}
}

func TestSnapshot_DetachedFromSessionState(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png")
	ctx := context.Background()

	if err := s.ToggleForkPoint(ctx, 0, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMode(ModeBranchSelect); err != nil {
		t.Fatal(err)
	}
	if err := s.TogglePendingScreen(1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateBranch(ctx, "Alt", "#fff", 0, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Toggle("c.png"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.DeleteSelected(ctx); err != nil {
		t.Fatal(err)
	}

	// Writing through a snapshot must not reach the session
	snap := s.Snapshot()
	snap.Branches[0].Screens[0] = 99
	snap.Batches[0].Filenames[0] = "tampered.png"

	fresh := s.Snapshot()
	if fresh.Branches[0].Screens[0] != 1 {
		t.Errorf("branch screens = %v, want [1]", fresh.Branches[0].Screens)
	}
	if fresh.Batches[0].Filenames[0] != "c.png" {
		t.Errorf("batch filenames = %v, want [c.png]", fresh.Batches[0].Filenames)
	}
}

func TestTeardown_RequiresReopen(t *testing.T) {
	s, _ := openStore(t, "a.png")

	s.Teardown()
	if err := s.Reorder(0, 0); !errors.Is(err, ErrNoSession) {
		t.Errorf("got %v, want ErrNoSession", err)
	}
}
