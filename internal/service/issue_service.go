package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
	"github.com/spec-kit/issue-tracker/pkg/util/optional"
)

const issueResource = "Issue"

// IssueService holds the issue business rules. It keeps no state between calls.
type IssueService struct {
	issues     repository.IssueRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo  repository.IssueRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// ListIssuesInput describes a page request. Out-of-range paging is clamped.
type ListIssuesInput struct {
	Status     *domain.Status
	PageNumber int
	PageSize   int
}

// IssueCreateInput describes issue creation payload.
type IssueCreateInput struct {
	Title       string
	Description string
}

// IssueUpdateInput is a partial update. Unset or null fields are left alone and
// blank title or description values are ignored rather than clearing the field.
type IssueUpdateInput struct {
	Title       optional.Optional[string]
	Description optional.Optional[string]
	Status      optional.Optional[domain.Status]
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &IssueService{
		issues:     deps.IssueRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// List returns issues newest first together with pagination metadata.
func (s *IssueService) List(ctx context.Context, input ListIssuesInput) (*domain.Page[domain.Issue], error) {
	pageNumber, pageSize := domain.NormalizePaging(input.PageNumber, input.PageSize)
	s.logger.Debug("listing issues",
		zap.Int("page_number", pageNumber),
		zap.Int("page_size", pageSize),
		zap.Stringer("status", statusField(input.Status)))

	items, total, err := s.issues.FindPage(ctx, repository.IssueFilter{
		Status: input.Status,
		Offset: domain.Offset(pageNumber, pageSize),
		Limit:  pageSize,
	})
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, pageNumber, pageSize, total), nil
}

// GetByID fetches a single issue.
func (s *IssueService) GetByID(ctx context.Context, id int64) (*domain.Issue, error) {
	return s.mustFind(ctx, id, "get")
}

// Create validates and stores a new Open issue.
func (s *IssueService) Create(ctx context.Context, input IssueCreateInput) (*domain.Issue, error) {
	fields := apperrors.FieldErrors{}
	for _, msg := range domain.TitleProblems(input.Title) {
		fields.Add("title", msg)
	}
	for _, msg := range domain.DescriptionProblems(input.Description) {
		fields.Add("description", msg)
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError("", fields)
	}

	issue := &domain.Issue{
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.StatusOpen,
		CreatedAt:   domain.Timestamp(s.now()),
	}
	if _, err := s.issues.Insert(ctx, issue); err != nil {
		return nil, err
	}
	s.logger.Info("issue created", zap.Int64("issue_id", issue.ID))
	s.publishEvent(ctx, events.NewEvent(ctx, events.EventIssueCreated, issue.ID, events.Snapshot(issue)))
	return issue, nil
}

// Update applies the provided fields of input to the issue.
func (s *IssueService) Update(ctx context.Context, id int64, input IssueUpdateInput) (*domain.Issue, error) {
	if err := validateUpdate(input); err != nil {
		return nil, err
	}
	issue, err := s.mustFind(ctx, id, "update")
	if err != nil {
		return nil, err
	}

	if title, ok := input.Title.Get(); ok && !domain.IsBlank(title) {
		issue.Title = title
	}
	if description, ok := input.Description.Get(); ok && !domain.IsBlank(description) {
		issue.Description = description
	}
	oldStatus := issue.Status
	if status, ok := input.Status.Get(); ok {
		*issue = domain.ApplyStatus(*issue, status, s.now())
	}

	if err := s.save(ctx, issue); err != nil {
		return nil, err
	}
	s.logger.Info("issue updated", zap.Int64("issue_id", id))
	s.publishEvent(ctx, events.NewEvent(ctx, events.EventIssueUpdated, id, events.Snapshot(issue)))
	if oldStatus != issue.Status {
		s.publishEvent(ctx, events.NewEvent(ctx, events.EventIssueStatusChanged, id, events.IssueStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: issue.Status,
		}))
	}
	return issue, nil
}

// Resolve marks the issue Resolved. Resolving twice keeps the first resolvedAt.
func (s *IssueService) Resolve(ctx context.Context, id int64) (*domain.Issue, error) {
	issue, err := s.mustFind(ctx, id, "resolve")
	if err != nil {
		return nil, err
	}
	oldStatus := issue.Status
	*issue = domain.ApplyStatus(*issue, domain.StatusResolved, s.now())

	if err := s.save(ctx, issue); err != nil {
		return nil, err
	}
	s.logger.Info("issue resolved", zap.Int64("issue_id", id))
	s.publishEvent(ctx, events.NewEvent(ctx, events.EventIssueResolved, id, events.Snapshot(issue)))
	if oldStatus != issue.Status {
		s.publishEvent(ctx, events.NewEvent(ctx, events.EventIssueStatusChanged, id, events.IssueStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: issue.Status,
		}))
	}
	return issue, nil
}

// Delete removes the issue permanently.
func (s *IssueService) Delete(ctx context.Context, id int64) error {
	if _, err := s.mustFind(ctx, id, "delete"); err != nil {
		return err
	}
	deleted, err := s.issues.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFound(issueResource, id)
	}
	s.logger.Info("issue deleted", zap.Int64("issue_id", id))
	s.publishEvent(ctx, events.NewEvent(ctx, events.EventIssueDeleted, id, nil))
	return nil
}

func (s *IssueService) mustFind(ctx context.Context, id int64, op string) (*domain.Issue, error) {
	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		s.logger.Warn("issue not found", zap.Int64("issue_id", id), zap.String("op", op))
		return nil, apperrors.NewNotFound(issueResource, id)
	}
	return issue, nil
}

// save persists issue; a row deleted concurrently surfaces as NotFound.
func (s *IssueService) save(ctx context.Context, issue *domain.Issue) error {
	updated, err := s.issues.Update(ctx, issue)
	if err != nil {
		return err
	}
	if !updated {
		return apperrors.NewNotFound(issueResource, issue.ID)
	}
	return nil
}

func (s *IssueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("issue_id", event.IssueID),
			zap.Error(err))
	}
}

func validateUpdate(input IssueUpdateInput) error {
	fields := apperrors.FieldErrors{}
	if title, ok := input.Title.Get(); ok {
		if msg := domain.LengthProblem("Title", title, domain.TitleMaxLength); msg != "" {
			fields.Add("title", msg)
		}
	}
	if description, ok := input.Description.Get(); ok {
		if msg := domain.LengthProblem("Description", description, domain.DescriptionMaxLength); msg != "" {
			fields.Add("description", msg)
		}
	}
	if status, ok := input.Status.Get(); ok && !status.Valid() {
		fields.Add("status", "Invalid status value")
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("", fields)
	}
	return nil
}

type statusStringer struct{ status *domain.Status }

func (s statusStringer) String() string {
	if s.status == nil {
		return "None"
	}
	return s.status.String()
}

func statusField(status *domain.Status) statusStringer {
	return statusStringer{status: status}
}
