package store

import (
	"context"
	"errors"
	"testing"
)

func TestSetMode_SwitchDiscardsStagedSelection(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png")

	if err := s.SetMode(ModeBranchSelect); err != nil {
		t.Fatal(err)
	}
	if err := s.TogglePendingScreen(1); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMode(ModeFork); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if len(snap.PendingBranch) != 0 {
		t.Errorf("pending buffer = %v, want empty after mode switch", snap.PendingBranch)
	}
	if snap.Mode != ModeFork {
		t.Errorf("mode = %s, want fork", snap.Mode)
	}
}

func TestTogglePendingScreen_RequiresBranchSelectMode(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png")

	if err := s.TogglePendingScreen(1); !errors.Is(err, ErrWrongMode) {
		t.Errorf("got %v, want ErrWrongMode", err)
	}
}

func TestTogglePendingScreen_KeepsBufferSorted(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png", "d.png", "e.png")

	if err := s.SetMode(ModeBranchSelect); err != nil {
		t.Fatal(err)
	}
	for _, idx := range []int{4, 2, 3} {
		if err := s.TogglePendingScreen(idx); err != nil {
			t.Fatal(err)
		}
	}
	snap := s.Snapshot()
	want := []int{2, 3, 4}
	for i, v := range want {
		if snap.PendingBranch[i] != v {
			t.Fatalf("pending = %v, want %v", snap.PendingBranch, want)
		}
	}

	// Toggling again removes
	if err := s.TogglePendingScreen(3); err != nil {
		t.Fatal(err)
	}
	snap = s.Snapshot()
	if len(snap.PendingBranch) != 2 {
		t.Errorf("pending = %v, want [2 4]", snap.PendingBranch)
	}
}

func TestToggleForkPoint_CreatesAndRemoves(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png")
	ctx := context.Background()

	if err := s.ToggleForkPoint(ctx, 1, "paywall"); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if len(snap.ForkPoints) != 1 || snap.ForkPoints[0].Index != 1 || snap.ForkPoints[0].Name != "paywall" {
		t.Errorf("fork points = %v", snap.ForkPoints)
	}

	if err := s.ToggleForkPoint(ctx, 1, ""); err != nil {
		t.Fatal(err)
	}
	if len(s.Snapshot().ForkPoints) != 0 {
		t.Error("fork point should be removed on second toggle")
	}
}

func TestToggleMergePoint_SetSemantics(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png")
	ctx := context.Background()

	if err := s.ToggleMergePoint(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleMergePoint(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Snapshot().MergePoints); got != 0 {
		t.Errorf("merge points = %d, want 0", got)
	}
}

func TestCreateBranch_RejectsIndexAtOrBeforeFork(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png", "d.png", "e.png", "f.png", "g.png", "h.png")
	ctx := context.Background()

	if err := s.ToggleForkPoint(ctx, 3, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMode(ModeBranchSelect); err != nil {
		t.Fatal(err)
	}
	if err := s.TogglePendingScreen(2); err != nil {
		t.Fatal(err)
	}

	if _, err := s.CreateBranch(ctx, "Alt", "#22c55e", 3, nil); !errors.Is(err, ErrInvalidBranchRange) {
		t.Errorf("got %v, want ErrInvalidBranchRange", err)
	}
}

func TestCreateBranch_SucceedsWithIndicesPastFork(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png", "d.png", "e.png", "f.png", "g.png", "h.png")
	ctx := context.Background()

	if err := s.ToggleForkPoint(ctx, 3, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMode(ModeBranchSelect); err != nil {
		t.Fatal(err)
	}
	for _, idx := range []int{4, 5, 7} {
		if err := s.TogglePendingScreen(idx); err != nil {
			t.Fatal(err)
		}
	}

	branch, err := s.CreateBranch(ctx, "Alt", "#22c55e", 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(branch.Screens) != 3 || branch.Screens[0] != 4 || branch.Screens[2] != 7 {
		t.Errorf("branch screens = %v", branch.Screens)
	}

	snap := s.Snapshot()
	if snap.Mode != ModeNone {
		t.Error("creating a branch should exit branch-select mode")
	}
	if len(snap.PendingBranch) != 0 {
		t.Error("creating a branch should clear the staged buffer")
	}
}

func TestCreateBranch_RequiresForkPoint(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png")
	ctx := context.Background()

	if err := s.SetMode(ModeBranchSelect); err != nil {
		t.Fatal(err)
	}
	if err := s.TogglePendingScreen(2); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateBranch(ctx, "Alt", "#fff", 1, nil); !errors.Is(err, ErrForkPointNotFound) {
		t.Errorf("got %v, want ErrForkPointNotFound", err)
	}
}

func TestCreateBranch_RequiresStagedScreens(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png")
	ctx := context.Background()

	if err := s.ToggleForkPoint(ctx, 0, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateBranch(ctx, "Alt", "#fff", 0, nil); !errors.Is(err, ErrEmptyBranch) {
		t.Errorf("got %v, want ErrEmptyBranch", err)
	}
}

func TestCreateBranch_RejectsScreenInAnotherBranch(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png", "d.png", "e.png")
	ctx := context.Background()

	if err := s.ToggleForkPoint(ctx, 1, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMode(ModeBranchSelect); err != nil {
		t.Fatal(err)
	}
	if err := s.TogglePendingScreen(3); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateBranch(ctx, "first", "#fff", 1, nil); err != nil {
		t.Fatal(err)
	}

	if err := s.SetMode(ModeBranchSelect); err != nil {
		t.Fatal(err)
	}
	if err := s.TogglePendingScreen(3); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateBranch(ctx, "second", "#fff", 1, nil); !errors.Is(err, ErrScreenAlreadyBranched) {
		t.Errorf("got %v, want ErrScreenAlreadyBranched", err)
	}
}

// Scenario from the flow-lab workflow: fork at 1, branch over [3,4], then a
// screen is deleted out from under the branch. The branch keeps its now
// dangling indices and is flagged, never silently dropped.
func TestBranchOverlay_DanglingAfterDelete(t *testing.T) {
	s, _ := openStore(t, "A.png", "B.png", "C.png", "D.png", "E.png")
	ctx := context.Background()

	if err := s.ToggleForkPoint(ctx, 1, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMode(ModeBranchSelect); err != nil {
		t.Fatal(err)
	}
	for _, idx := range []int{3, 4} {
		if err := s.TogglePendingScreen(idx); err != nil {
			t.Fatal(err)
		}
	}
	branch, err := s.CreateBranch(ctx, "Alt", "#22c55e", 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(branch.Screens) != 2 || branch.Screens[0] != 3 || branch.Screens[1] != 4 {
		t.Fatalf("branch screens = %v, want [3 4]", branch.Screens)
	}

	if _, err := s.RemoveScreens(ctx, []string{"D.png"}); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	// Branch indices are not re-mapped
	if len(snap.Branches) != 1 || len(snap.Branches[0].Screens) != 2 || snap.Branches[0].Screens[0] != 3 {
		t.Fatalf("branch mutated: %v", snap.Branches)
	}
	// The out-of-bounds index 4 must be flagged
	found := false
	for _, w := range snap.Warnings {
		if w.Kind == "branch" && w.Index == 4 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a dangling-branch warning, got %v", snap.Warnings)
	}
}

func TestToggleForkPoint_RemovalOrphansBranch(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png", "d.png")
	ctx := context.Background()

	if err := s.ToggleForkPoint(ctx, 1, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMode(ModeBranchSelect); err != nil {
		t.Fatal(err)
	}
	if err := s.TogglePendingScreen(2); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateBranch(ctx, "Alt", "#fff", 1, nil); err != nil {
		t.Fatal(err)
	}

	// Remove the fork point out from under the branch
	if err := s.ToggleForkPoint(ctx, 1, ""); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if len(snap.Branches) != 1 {
		t.Fatal("orphaned branch must not be silently deleted")
	}
	found := false
	for _, w := range snap.Warnings {
		if w.Kind == "branch" && w.Reason == "fork point removed" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an orphaned-branch warning, got %v", snap.Warnings)
	}
}

func TestClearAllBranches_ResetsOverlay(t *testing.T) {
	s, _ := openStore(t, "a.png", "b.png", "c.png")
	ctx := context.Background()

	if err := s.ToggleForkPoint(ctx, 0, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleMergePoint(ctx, 2); err != nil {
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

	if err := s.ClearAllBranches(ctx); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if len(snap.ForkPoints) != 0 || len(snap.MergePoints) != 0 || len(snap.Branches) != 0 {
		t.Errorf("overlay not cleared: %+v", snap)
	}
}

func TestRemoveBranch_UnknownID(t *testing.T) {
	s, _ := openStore(t, "a.png")

	if err := s.RemoveBranch(context.Background(), "nope"); !errors.Is(err, ErrBranchNotFound) {
		t.Errorf("got %v, want ErrBranchNotFound", err)
	}
}
