// Package client is a typed HTTP client for the issue tracker API together
// with the cached query layer used by interactive front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/pkg/util/optional"
)

const (
	// DefaultBaseURL is where a locally started API listens.
	DefaultBaseURL = "http://localhost:8080"
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 15 * time.Second

	maxResponseSize = 10 * 1024 * 1024
)

// Client calls the issue tracker REST API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New creates a client for baseURL. An empty token sends no Authorization header.
func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient returns a copy of the client using httpClient.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return &Client{BaseURL: c.BaseURL, Token: c.Token, HTTPClient: httpClient}
}

// ListParams selects a page of issues.
type ListParams struct {
	Status     *domain.Status
	PageNumber int
	PageSize   int
}

func (p ListParams) query() url.Values {
	values := url.Values{}
	if p.Status != nil {
		values.Set("status", strconv.Itoa(int(*p.Status)))
	}
	if p.PageNumber > 0 {
		values.Set("pageNumber", strconv.Itoa(p.PageNumber))
	}
	if p.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	return values
}

// CreateParams is the payload for a new issue.
type CreateParams struct {
	Title       string
	Description string
}

// UpdateParams is a partial update; unset fields are not sent.
type UpdateParams struct {
	Title       optional.Optional[string]
	Description optional.Optional[string]
	Status      optional.Optional[domain.Status]
}

// ListIssues fetches one page of issues.
func (c *Client) ListIssues(ctx context.Context, params ListParams) (*dto.IssuePageResponse, error) {
	var page dto.IssuePageResponse
	if err := c.do(ctx, http.MethodGet, "/issues", params.query(), nil, &page); err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return &page, nil
}

// GetIssue fetches a single issue.
func (c *Client) GetIssue(ctx context.Context, id int64) (*dto.IssueResponse, error) {
	var issue dto.IssueResponse
	if err := c.do(ctx, http.MethodGet, issuePath(id), nil, nil, &issue); err != nil {
		return nil, fmt.Errorf("get issue %d: %w", id, err)
	}
	return &issue, nil
}

// CreateIssue creates an issue.
func (c *Client) CreateIssue(ctx context.Context, params CreateParams) (*dto.IssueResponse, error) {
	body := dto.CreateIssueRequest{Title: params.Title, Description: params.Description}
	var issue dto.IssueResponse
	if err := c.do(ctx, http.MethodPost, "/issues", nil, body, &issue); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	return &issue, nil
}

// UpdateIssue applies a partial update.
func (c *Client) UpdateIssue(ctx context.Context, id int64, params UpdateParams) (*dto.IssueResponse, error) {
	body := dto.UpdateIssueRequest{Title: params.Title, Description: params.Description, Status: params.Status}
	var issue dto.IssueResponse
	if err := c.do(ctx, http.MethodPut, issuePath(id), nil, body, &issue); err != nil {
		return nil, fmt.Errorf("update issue %d: %w", id, err)
	}
	return &issue, nil
}

// ResolveIssue marks an issue resolved.
func (c *Client) ResolveIssue(ctx context.Context, id int64) (*dto.IssueResponse, error) {
	var issue dto.IssueResponse
	if err := c.do(ctx, http.MethodPatch, issuePath(id)+"/resolve", nil, nil, &issue); err != nil {
		return nil, fmt.Errorf("resolve issue %d: %w", id, err)
	}
	return &issue, nil
}

// DeleteIssue removes an issue.
func (c *Client) DeleteIssue(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, issuePath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete issue %d: %w", id, err)
	}
	return nil
}

func issuePath(id int64) string {
	return "/issues/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// APIError is a non-2xx response. Problem is nil when the body was not a
// problem document.
type APIError struct {
	StatusCode int
	Problem    *dto.ProblemDetails
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var problem dto.ProblemDetails
	if len(body) > 0 && json.Unmarshal(body, &problem) == nil && (problem.Status != 0 || problem.Title != "") {
		apiErr.Problem = &problem
	}
	return apiErr
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.UserMessage())
}

// UserMessage is the text to show a person: the server's detail when present,
// otherwise a fallback for the status class.
func (e *APIError) UserMessage() string {
	if e.Problem != nil && e.Problem.Detail != "" {
		return e.Problem.Detail
	}
	switch {
	case e.StatusCode == http.StatusBadRequest:
		return "Please check your input and try again."
	case e.StatusCode == http.StatusNotFound:
		return "The requested resource was not found."
	case e.StatusCode == http.StatusUnauthorized:
		return "You are not authorized to perform this action."
	case e.StatusCode >= 500:
		return "An error occurred on the server. Please try again later."
	default:
		return "An unexpected error occurred."
	}
}

// FieldErrors returns validation messages keyed by field, or nil.
func (e *APIError) FieldErrors() map[string][]string {
	if e.Problem == nil {
		return nil
	}
	return e.Problem.Errors
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsValidation reports whether err is a 400 from the API.
func IsValidation(err error) bool {
	return hasStatus(err, http.StatusBadRequest)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
