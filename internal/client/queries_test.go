package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/client"
	"github.com/spec-kit/issue-tracker/internal/domain"
)

type countingAPI struct {
	lists   atomic.Int32
	details atomic.Int32
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (a *countingAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/issues":
		a.lists.Add(1)
		if a.release != nil {
			a.once.Do(func() { close(a.started) })
			<-a.release
		}
		_ = json.NewEncoder(w).Encode(dto.IssuePageResponse{Items: []dto.IssueResponse{{ID: 1, Title: "a"}}, PageNumber: 1, PageSize: 20, TotalCount: 1, TotalPages: 1})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/issues/"):
		a.details.Add(1)
		_ = json.NewEncoder(w).Encode(dto.IssueResponse{ID: 1, Title: "a", Status: domain.StatusOpen})
	case r.Method == http.MethodPost:
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dto.IssueResponse{ID: 2, Title: "b", Status: domain.StatusOpen})
	case r.Method == http.MethodPatch:
		_ = json.NewEncoder(w).Encode(dto.IssueResponse{ID: 1, Title: "a", Status: domain.StatusResolved})
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestIssueQueriesCachesReads(t *testing.T) {
	api := &countingAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()
	q := client.NewIssueQueries(client.New(srv.URL, ""))
	ctx := context.Background()

	_, err := q.List(ctx, client.ListParams{})
	require.NoError(t, err)
	_, err = q.List(ctx, client.ListParams{PageNumber: 1, PageSize: domain.DefaultPageSize})
	require.NoError(t, err)
	assert.EqualValues(t, 1, api.lists.Load())

	_, err = q.Issue(ctx, 1)
	require.NoError(t, err)
	_, err = q.Issue(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, api.details.Load())

	state := q.State(client.DetailKey(1))
	assert.False(t, state.IsLoading)
	assert.NoError(t, state.Err)
	assert.Equal(t, int64(1), state.Data.(*dto.IssueResponse).ID)
}

func TestIssueQueriesMutationsInvalidate(t *testing.T) {
	api := &countingAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()
	q := client.NewIssueQueries(client.New(srv.URL, ""))
	ctx := context.Background()

	_, err := q.List(ctx, client.ListParams{})
	require.NoError(t, err)
	_, err = q.Issue(ctx, 1)
	require.NoError(t, err)

	_, err = q.Create(ctx, client.CreateParams{Title: "b", Description: "d"})
	require.NoError(t, err)
	assert.Nil(t, q.State(client.ListKey(client.ListParams{})).Data)
	assert.NotNil(t, q.State(client.DetailKey(1)).Data)

	_, err = q.List(ctx, client.ListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, api.lists.Load())

	_, err = q.Resolve(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, q.State(client.DetailKey(1)).Data)
	_, err = q.Issue(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, api.details.Load())

	require.NoError(t, q.Delete(ctx, 1))
	assert.Equal(t, client.State{}, q.State(client.DetailKey(1)))
	assert.Equal(t, client.State{}, q.State(client.ListKey(client.ListParams{})))
}

func TestIssueQueriesCollapsesConcurrentFetches(t *testing.T) {
	api := &countingAPI{release: make(chan struct{}), started: make(chan struct{})}
	srv := httptest.NewServer(api)
	defer srv.Close()
	q := client.NewIssueQueries(client.New(srv.URL, ""))

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := q.List(context.Background(), client.ListParams{})
			assert.NoError(t, err)
		}()
	}

	<-api.started
	assert.True(t, q.State(client.ListKey(client.ListParams{})).IsLoading)
	time.Sleep(50 * time.Millisecond)
	close(api.release)
	wg.Wait()

	assert.EqualValues(t, 1, api.lists.Load())
	assert.False(t, q.State(client.ListKey(client.ListParams{})).IsLoading)
}

// versionedAPI blocks the first list request until release is closed and
// reports how many issues were created before each list was served.
type versionedAPI struct {
	created atomic.Int32
	lists   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (a *versionedAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		count := int(a.created.Load())
		if a.lists.Add(1) == 1 {
			close(a.started)
			<-a.release
		}
		_ = json.NewEncoder(w).Encode(dto.IssuePageResponse{PageNumber: 1, PageSize: 20, TotalCount: count, TotalPages: 1})
	case http.MethodPost:
		a.created.Add(1)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dto.IssueResponse{ID: 1, Title: "b", Status: domain.StatusOpen})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestIssueQueriesReadAfterMutationSkipsStaleFlight(t *testing.T) {
	api := &versionedAPI{started: make(chan struct{}), release: make(chan struct{})}
	srv := httptest.NewServer(api)
	defer srv.Close()
	defer func() {
		select {
		case <-api.release:
		default:
			close(api.release)
		}
	}()
	q := client.NewIssueQueries(client.New(srv.URL, ""))
	ctx := context.Background()
	key := client.ListKey(client.ListParams{})

	staleDone := make(chan struct{})
	go func() {
		defer close(staleDone)
		_, _ = q.List(ctx, client.ListParams{})
	}()
	<-api.started

	_, err := q.Create(ctx, client.CreateParams{Title: "b", Description: "d"})
	require.NoError(t, err)

	fresh := make(chan *dto.IssuePageResponse, 1)
	go func() {
		page, err := q.List(ctx, client.ListParams{})
		assert.NoError(t, err)
		fresh <- page
	}()

	select {
	case page := <-fresh:
		require.NotNil(t, page)
		assert.Equal(t, 1, page.TotalCount)
	case <-time.After(2 * time.Second):
		t.Fatal("read after mutation joined the in-flight list request")
	}

	close(api.release)
	<-staleDone

	cached := q.State(key).Data.(*dto.IssuePageResponse)
	assert.Equal(t, 1, cached.TotalCount)
	assert.EqualValues(t, 2, api.lists.Load())
}

func TestIssueQueriesKeepsErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	q := client.NewIssueQueries(client.New(srv.URL, ""))

	_, err := q.Issue(context.Background(), 9)
	require.Error(t, err)
	state := q.State(client.DetailKey(9))
	assert.True(t, client.IsNotFound(state.Err))
	assert.Nil(t, state.Data)
}

func TestListKey(t *testing.T) {
	resolved := domain.StatusResolved
	assert.Equal(t, client.Key("issues/list/all/1/20"), client.ListKey(client.ListParams{}))
	assert.Equal(t, client.Key("issues/list/Resolved/3/100"), client.ListKey(client.ListParams{Status: &resolved, PageNumber: 3, PageSize: 500}))
	assert.Equal(t, client.Key("issues/detail/7"), client.DetailKey(7))
}
