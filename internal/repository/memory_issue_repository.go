package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

type memoryIssueRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.Issue
}

// NewMemoryIssueRepository returns a process-local repository with the same
// ordering and filtering as the postgres one. Used when no DSN is configured.
func NewMemoryIssueRepository() IssueRepository {
	return &memoryIssueRepository{byID: make(map[int64]domain.Issue)}
}

func (r *memoryIssueRepository) Insert(ctx context.Context, issue *domain.Issue) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	issue.ID = r.nextID
	r.byID[issue.ID] = cloneIssue(*issue)
	return issue.ID, nil
}

func (r *memoryIssueRepository) Update(ctx context.Context, issue *domain.Issue) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[issue.ID]
	if !ok {
		return false, nil
	}
	updated := cloneIssue(*issue)
	updated.CreatedAt = existing.CreatedAt
	r.byID[issue.ID] = updated
	return true, nil
}

func (r *memoryIssueRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *memoryIssueRepository) FindByID(ctx context.Context, id int64) (*domain.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	issue, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	out := cloneIssue(issue)
	return &out, nil
}

func (r *memoryIssueRepository) FindPage(ctx context.Context, filter IssueFilter) ([]domain.Issue, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	matched := make([]domain.Issue, 0, len(r.byID))
	for _, issue := range r.byID {
		if filter.Status != nil && issue.Status != *filter.Status {
			continue
		}
		matched = append(matched, cloneIssue(issue))
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Issue{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func cloneIssue(issue domain.Issue) domain.Issue {
	if issue.ResolvedAt != nil {
		at := *issue.ResolvedAt
		issue.ResolvedAt = &at
	}
	return issue
}
