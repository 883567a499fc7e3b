package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/domain"
)

const (
	listKeyPrefix   = "issues/list/"
	detailKeyPrefix = "issues/detail/"
)

// Key identifies a cached query.
type Key string

// ListKey is the cache key of a page query. Defaults are filled in so that
// equivalent requests share an entry.
func ListKey(params ListParams) Key {
	status := "all"
	if params.Status != nil {
		status = params.Status.String()
	}
	pageNumber, pageSize := domain.NormalizePaging(params.PageNumber, params.PageSize)
	return Key(fmt.Sprintf("%s%s/%d/%d", listKeyPrefix, status, pageNumber, pageSize))
}

// DetailKey is the cache key of a single issue.
func DetailKey(id int64) Key {
	return Key(fmt.Sprintf("%s%d", detailKeyPrefix, id))
}

// State is a snapshot of one query.
type State struct {
	Data      any
	IsLoading bool
	Err       error
}

type entry struct {
	data    any
	hasData bool
	loading int
	err     error
}

// IssueQueries caches reads, collapses identical in-flight fetches and
// invalidates affected entries after every mutation.
type IssueQueries struct {
	client *Client
	group  singleflight.Group

	mu         sync.Mutex
	entries    map[Key]*entry
	generation uint64
}

// NewIssueQueries wraps client with a query cache.
func NewIssueQueries(client *Client) *IssueQueries {
	return &IssueQueries{client: client, entries: make(map[Key]*entry)}
}

// List returns a page, served from cache when present.
func (q *IssueQueries) List(ctx context.Context, params ListParams) (*dto.IssuePageResponse, error) {
	v, err := q.fetch(ctx, ListKey(params), func(ctx context.Context) (any, error) {
		return q.client.ListIssues(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.IssuePageResponse), nil
}

// Issue returns one issue, served from cache when present.
func (q *IssueQueries) Issue(ctx context.Context, id int64) (*dto.IssueResponse, error) {
	v, err := q.fetch(ctx, DetailKey(id), func(ctx context.Context) (any, error) {
		return q.client.GetIssue(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.IssueResponse), nil
}

// Create creates an issue and drops every cached page.
func (q *IssueQueries) Create(ctx context.Context, params CreateParams) (*dto.IssueResponse, error) {
	issue, err := q.client.CreateIssue(ctx, params)
	if err != nil {
		return nil, err
	}
	q.invalidate(0)
	return issue, nil
}

// Update applies a partial update and drops cached pages and the issue.
func (q *IssueQueries) Update(ctx context.Context, id int64, params UpdateParams) (*dto.IssueResponse, error) {
	issue, err := q.client.UpdateIssue(ctx, id, params)
	if err != nil {
		return nil, err
	}
	q.invalidate(id)
	return issue, nil
}

// Resolve resolves an issue and drops cached pages and the issue.
func (q *IssueQueries) Resolve(ctx context.Context, id int64) (*dto.IssueResponse, error) {
	issue, err := q.client.ResolveIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	q.invalidate(id)
	return issue, nil
}

// Delete removes an issue and evicts it from the cache.
func (q *IssueQueries) Delete(ctx context.Context, id int64) error {
	if err := q.client.DeleteIssue(ctx, id); err != nil {
		return err
	}
	q.invalidate(id)
	return nil
}

// State reports the cached state of key.
func (q *IssueQueries) State(key Key) State {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[key]
	if !ok {
		return State{}
	}
	return State{Data: e.data, IsLoading: e.loading > 0, Err: e.err}
}

func (q *IssueQueries) fetch(ctx context.Context, key Key, load func(context.Context) (any, error)) (any, error) {
	q.mu.Lock()
	e := q.entryLocked(key)
	if e.hasData {
		data := e.data
		q.mu.Unlock()
		return data, nil
	}
	e.loading++
	gen := q.generation
	q.mu.Unlock()

	// Callers only share a flight started under the same generation, so a
	// read issued after a mutation never joins a request that predates it.
	v, err, _ := q.group.Do(fmt.Sprintf("%s@%d", key, gen), func() (any, error) {
		return load(ctx)
	})

	q.mu.Lock()
	defer q.mu.Unlock()
	e = q.entryLocked(key)
	if e.loading > 0 {
		e.loading--
	}
	// A mutation landed while loading; the result may predate it.
	if gen != q.generation {
		return v, err
	}
	e.err = err
	if err == nil {
		e.data = v
		e.hasData = true
	}
	return v, err
}

func (q *IssueQueries) entryLocked(key Key) *entry {
	e, ok := q.entries[key]
	if !ok {
		e = &entry{}
		q.entries[key] = e
	}
	return e
}

// invalidate drops all list entries and, for a non-zero id, that issue.
func (q *IssueQueries) invalidate(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.generation++
	for key := range q.entries {
		if strings.HasPrefix(string(key), listKeyPrefix) {
			delete(q.entries, key)
		}
	}
	if id != 0 {
		delete(q.entries, DetailKey(id))
	}
}
