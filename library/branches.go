package library

import (
	"context"

	"github.com/flowdeck-app/flowdeck/db"
	"github.com/flowdeck-app/flowdeck/store"
)

// FetchForkPoints returns a project's fork points
func (s *Service) FetchForkPoints(ctx context.Context, projectID string) ([]store.ForkPoint, error) {
	records, err := db.GetForkPoints(projectID)
	if err != nil {
		return nil, err
	}
	points := make([]store.ForkPoint, len(records))
	for i, r := range records {
		points[i] = store.ForkPoint{Index: r.Index, Name: r.Name}
	}
	return points, nil
}

// FetchMergePoints returns a project's merge point indices
func (s *Service) FetchMergePoints(ctx context.Context, projectID string) ([]int, error) {
	return db.GetMergePoints(projectID)
}

// FetchBranches returns a project's branches
func (s *Service) FetchBranches(ctx context.Context, projectID string) ([]store.Branch, error) {
	records, err := db.GetBranches(projectID)
	if err != nil {
		return nil, err
	}
	branches := make([]store.Branch, len(records))
	for i, r := range records {
		branches[i] = store.Branch{
			ID:       r.ID,
			Name:     r.Name,
			Color:    r.Color,
			ForkFrom: r.ForkFrom,
			MergeTo:  r.MergeTo,
			Screens:  r.Screens,
		}
	}
	return branches, nil
}

// AddForkPoint creates or renames a fork point
func (s *Service) AddForkPoint(ctx context.Context, projectID string, index int, name string) error {
	return db.UpsertForkPoint(projectID, index, name)
}

// RemoveForkPoint deletes a fork point
func (s *Service) RemoveForkPoint(ctx context.Context, projectID string, index int) error {
	return db.DeleteForkPoint(projectID, index)
}

// AddMergePoint creates a merge point
func (s *Service) AddMergePoint(ctx context.Context, projectID string, index int) error {
	return db.InsertMergePoint(projectID, index)
}

// RemoveMergePoint deletes a merge point
func (s *Service) RemoveMergePoint(ctx context.Context, projectID string, index int) error {
	return db.DeleteMergePoint(projectID, index)
}

// AddBranch materializes a branch and returns it
func (s *Service) AddBranch(ctx context.Context, projectID, name, color string, forkFrom int, mergeTo *int, screens []int) (store.Branch, error) {
	r, err := db.InsertBranch(projectID, name, color, forkFrom, mergeTo, screens)
	if err != nil {
		return store.Branch{}, err
	}
	return store.Branch{
		ID:       r.ID,
		Name:     r.Name,
		Color:    r.Color,
		ForkFrom: r.ForkFrom,
		MergeTo:  r.MergeTo,
		Screens:  r.Screens,
	}, nil
}

// RemoveBranch deletes a branch
func (s *Service) RemoveBranch(ctx context.Context, projectID, branchID string) error {
	return db.DeleteBranch(projectID, branchID)
}

// ClearBranchData resets the whole branch overlay for a project
func (s *Service) ClearBranchData(ctx context.Context, projectID string) error {
	return db.ClearBranchData(projectID)
}
