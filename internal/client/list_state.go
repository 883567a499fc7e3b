package client

import (
	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/domain"
)

// ListState tracks the filter and position of a paged issue listing.
type ListState struct {
	status     *domain.Status
	pageNumber int
	pageSize   int
	last       *dto.IssuePageResponse
}

// NewListState starts on the first page with the default page size.
func NewListState() *ListState {
	return &ListState{pageNumber: 1, pageSize: domain.DefaultPageSize}
}

// Params returns the request for the current position.
func (s *ListState) Params() ListParams {
	return ListParams{Status: s.status, PageNumber: s.pageNumber, PageSize: s.pageSize}
}

// Status returns the active filter, nil for all.
func (s *ListState) Status() *domain.Status { return s.status }

// PageNumber returns the current page.
func (s *ListState) PageNumber() int { return s.pageNumber }

// PageSize returns the current page size.
func (s *ListState) PageSize() int { return s.pageSize }

// SetStatus changes the filter and returns to page 1.
func (s *ListState) SetStatus(status *domain.Status) {
	s.status = status
	s.reset()
}

// SetPageSize changes the page size and returns to page 1.
func (s *ListState) SetPageSize(size int) {
	_, s.pageSize = domain.NormalizePaging(1, size)
	s.reset()
}

// SetPage jumps to page n.
func (s *ListState) SetPage(n int) {
	s.pageNumber, _ = domain.NormalizePaging(n, s.pageSize)
}

// Observe records the envelope returned for the current position.
func (s *ListState) Observe(page *dto.IssuePageResponse) {
	s.last = page
}

// Next advances one page when the last envelope reported more.
func (s *ListState) Next() bool {
	if s.last == nil || !s.last.HasNext {
		return false
	}
	s.pageNumber++
	s.last = nil
	return true
}

// Previous moves back one page when possible.
func (s *ListState) Previous() bool {
	if s.pageNumber <= 1 {
		return false
	}
	if s.last != nil && !s.last.HasPrevious {
		return false
	}
	s.pageNumber--
	s.last = nil
	return true
}

func (s *ListState) reset() {
	s.pageNumber = 1
	s.last = nil
}
