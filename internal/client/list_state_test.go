package client_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/client"
	"github.com/spec-kit/issue-tracker/internal/domain"
)

func TestListStateNavigation(t *testing.T) {
	s := client.NewListState()
	assert.Equal(t, 1, s.PageNumber())
	assert.Equal(t, domain.DefaultPageSize, s.PageSize())

	assert.False(t, s.Next(), "no envelope observed yet")

	s.Observe(&dto.IssuePageResponse{PageNumber: 1, HasNext: true})
	assert.True(t, s.Next())
	assert.Equal(t, 2, s.PageNumber())

	s.Observe(&dto.IssuePageResponse{PageNumber: 2, HasPrevious: true, HasNext: false})
	assert.False(t, s.Next())
	assert.True(t, s.Previous())
	assert.Equal(t, 1, s.PageNumber())
	assert.False(t, s.Previous())
}

func TestListStateFilterResetsPage(t *testing.T) {
	s := client.NewListState()
	s.SetPage(4)
	assert.Equal(t, 4, s.PageNumber())

	open := domain.StatusOpen
	s.SetStatus(&open)
	assert.Equal(t, 1, s.PageNumber())
	assert.Equal(t, &open, s.Params().Status)

	s.SetPage(3)
	s.SetPageSize(500)
	assert.Equal(t, 1, s.PageNumber())
	assert.Equal(t, domain.MaxPageSize, s.PageSize())
}
