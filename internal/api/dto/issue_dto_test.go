package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/domain"
)

func TestUpdateRequestFieldPresence(t *testing.T) {
	var req dto.UpdateIssueRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"","description":null}`), &req))

	assert.True(t, req.Title.IsSet())
	title, ok := req.Title.Get()
	assert.True(t, ok)
	assert.Equal(t, "", title)

	assert.True(t, req.Description.IsNull())
	_, ok = req.Description.Get()
	assert.False(t, ok)

	assert.False(t, req.Status.IsSet())
}

func TestUpdateRequestStatus(t *testing.T) {
	var req dto.UpdateIssueRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":2}`), &req))
	status, ok := req.Status.Get()
	require.True(t, ok)
	assert.Equal(t, domain.StatusInProgress, status)
	assert.Empty(t, req.Validate())

	require.NoError(t, json.Unmarshal([]byte(`{"status":9}`), &req))
	assert.Contains(t, req.Validate(), "status")

	assert.Error(t, json.Unmarshal([]byte(`{"status":"weird"}`), &req))
}

func TestUpdateRequestMarshalOmitsAbsentFields(t *testing.T) {
	req := dto.UpdateIssueRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"description":"x"}`), &req))
	out, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":"x"}`, string(out))
}

func TestCreateRequestValidate(t *testing.T) {
	fields := dto.CreateIssueRequest{Title: "", Description: "ok"}.Validate()
	assert.Equal(t, []string{"Title is required"}, fields["title"])
	assert.NotContains(t, fields, "description")

	assert.Empty(t, dto.CreateIssueRequest{Title: "Bug A", Description: "desc"}.Validate())
}

func TestIssueResponseJSONShape(t *testing.T) {
	issue := &domain.Issue{ID: 3, Title: "t", Description: "d", Status: domain.StatusOpen}
	out, err := json.Marshal(dto.NewIssueResponse(issue))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(out, &raw))
	assert.Equal(t, float64(1), raw["status"])
	assert.Contains(t, raw, "resolvedAt")
	assert.Nil(t, raw["resolvedAt"])
	assert.Contains(t, raw, "createdAt")
}
