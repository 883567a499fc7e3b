package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
	"github.com/spec-kit/issue-tracker/pkg/util/optional"
)

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate applies the field rules for new issues.
func (r CreateIssueRequest) Validate() apperrors.FieldErrors {
	fields := apperrors.FieldErrors{}
	for _, msg := range domain.TitleProblems(r.Title) {
		fields.Add("title", msg)
	}
	for _, msg := range domain.DescriptionProblems(r.Description) {
		fields.Add("description", msg)
	}
	return fields
}

// UpdateIssueRequest payload. Each field is independently absent, null or set.
type UpdateIssueRequest struct {
	Title       optional.Optional[string]        `json:"title,omitzero"`
	Description optional.Optional[string]        `json:"description,omitzero"`
	Status      optional.Optional[domain.Status] `json:"status,omitzero"`
}

// Validate checks the shape of provided fields. Blank strings pass; the
// service treats them as "leave unchanged".
func (r UpdateIssueRequest) Validate() apperrors.FieldErrors {
	fields := apperrors.FieldErrors{}
	if title, ok := r.Title.Get(); ok {
		if msg := domain.LengthProblem("Title", title, domain.TitleMaxLength); msg != "" {
			fields.Add("title", msg)
		}
	}
	if desc, ok := r.Description.Get(); ok {
		if msg := domain.LengthProblem("Description", desc, domain.DescriptionMaxLength); msg != "" {
			fields.Add("description", msg)
		}
	}
	if status, ok := r.Status.Get(); ok && !status.Valid() {
		fields.Add("status", "Invalid status value")
	}
	return fields
}

// IssueResponse is the wire shape of an issue.
type IssueResponse struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      domain.Status `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	ResolvedAt  *time.Time    `json:"resolvedAt"`
}

// IssuePageResponse is the page envelope.
type IssuePageResponse struct {
	Items       []IssueResponse `json:"items"`
	PageNumber  int             `json:"pageNumber"`
	PageSize    int             `json:"pageSize"`
	TotalCount  int             `json:"totalCount"`
	TotalPages  int             `json:"totalPages"`
	HasPrevious bool            `json:"hasPrevious"`
	HasNext     bool            `json:"hasNext"`
}

// NewIssueResponse maps a domain issue.
func NewIssueResponse(issue *domain.Issue) IssueResponse {
	return IssueResponse{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Status:      issue.Status,
		CreatedAt:   issue.CreatedAt,
		ResolvedAt:  issue.ResolvedAt,
	}
}

// NewIssuePageResponse maps a domain page.
func NewIssuePageResponse(page *domain.Page[domain.Issue]) IssuePageResponse {
	items := make([]IssueResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, NewIssueResponse(&page.Items[i]))
	}
	return IssuePageResponse{
		Items:       items,
		PageNumber:  page.PageNumber,
		PageSize:    page.PageSize,
		TotalCount:  page.TotalCount,
		TotalPages:  page.TotalPages,
		HasPrevious: page.HasPrevious,
		HasNext:     page.HasNext,
	}
}
