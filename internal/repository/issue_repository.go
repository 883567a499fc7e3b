package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// IssueFilter captures list parameters. A nil Status matches every issue.
type IssueFilter struct {
	Status *domain.Status
	Offset int
	Limit  int
}

// IssueRepository encapsulates issue persistence. Absence is reported as a nil
// issue or a false flag, never as an error.
type IssueRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Issue, error)
	FindPage(ctx context.Context, filter IssueFilter) ([]domain.Issue, int, error)
	Insert(ctx context.Context, issue *domain.Issue) (int64, error)
	Update(ctx context.Context, issue *domain.Issue) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

const issueColumns = `id, title, description, status, created_at, resolved_at`

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates the postgres-backed repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Insert(ctx context.Context, issue *domain.Issue) (int64, error) {
	const query = `
        INSERT INTO issues (title, description, status, created_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	if err := r.pool.QueryRow(ctx, query,
		issue.Title,
		issue.Description,
		int16(issue.Status),
		issue.CreatedAt,
		issue.ResolvedAt,
	).Scan(&issue.ID); err != nil {
		return 0, fmt.Errorf("insert issue: %w", err)
	}
	return issue.ID, nil
}

func (r *issueRepository) Update(ctx context.Context, issue *domain.Issue) (bool, error) {
	const query = `
        UPDATE issues SET title=$1, description=$2, status=$3, resolved_at=$4
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		issue.Title,
		issue.Description,
		int16(issue.Status),
		issue.ResolvedAt,
		issue.ID,
	)
	if err != nil {
		return false, fmt.Errorf("update issue %d: %w", issue.ID, err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *issueRepository) Delete(ctx context.Context, id int64) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("delete issue %d: %w", id, err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *issueRepository) FindByID(ctx context.Context, id int64) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id=$1`
	issue, err := scanIssue(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find issue %d: %w", id, err)
	}
	return issue, nil
}

func (r *issueRepository) FindPage(ctx context.Context, filter IssueFilter) ([]domain.Issue, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, int16(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM issues WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count issues: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if total == 0 || offset >= total {
		return []domain.Issue{}, total, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM issues WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		issueColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	items, err := scanIssues(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("scan issues: %w", err)
	}
	return items, total, nil
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var (
		issue  domain.Issue
		status int16
		closed *time.Time
	)
	if err := row.Scan(
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&status,
		&issue.CreatedAt,
		&closed,
	); err != nil {
		return nil, err
	}
	issue.Status = domain.Status(status)
	issue.CreatedAt = issue.CreatedAt.UTC()
	if closed != nil {
		at := closed.UTC()
		issue.ResolvedAt = &at
	}
	return &issue, nil
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	result := []domain.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *issue)
	}
	return result, rows.Err()
}
