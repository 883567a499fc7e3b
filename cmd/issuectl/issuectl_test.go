package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	httpapi "github.com/spec-kit/issue-tracker/internal/api/http"
	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/client"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/service"
)

func startAPI(t *testing.T) string {
	t.Helper()
	svc := service.NewIssueService(service.IssueDependencies{
		IssueRepo:  repository.NewMemoryIssueRepository(),
		Dispatcher: events.NewInMemoryDispatcher(),
	})
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httpapi.RegisterMiddlewares(app, httpapi.MiddlewareConfig{Timeout: 5 * time.Second})
	httpapi.RegisterRoutes(app, httpapi.RouteConfig{
		Issues:         handlers.NewIssuesHandler(svc),
		AuthMiddleware: auth.NewAuthMiddleware(nil),
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, apiURL, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(viper.New())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--api-url", apiURL}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestIssueCommands(t *testing.T) {
	api := startAPI(t)

	out, err := run(t, api, "", "--json", "create", "--title", "Bug A", "--description", "desc")
	require.NoError(t, err)
	var created dto.IssueResponse
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, domain.StatusOpen, created.Status)

	out, err = run(t, api, "", "resolve", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "Resolved")

	out, err = run(t, api, "", "edit", "1", "--status", "in-progress")
	require.NoError(t, err)
	assert.Contains(t, out, "In Progress")
	assert.NotContains(t, out, "Resolved:")

	out, err = run(t, api, "", "list", "--status", "InProgress")
	require.NoError(t, err)
	assert.Contains(t, out, "Bug A")
	assert.Contains(t, out, "Page 1 of 1 (1 issues)")

	out, err = run(t, api, "n\n", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	_, err = run(t, api, "", "show", "1")
	require.NoError(t, err)

	out, err = run(t, api, "", "delete", "1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted issue #1")

	_, err = run(t, api, "", "show", "1")
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
}

func TestListAllWalksPages(t *testing.T) {
	api := startAPI(t)
	for _, title := range []string{"one", "two", "three"} {
		_, err := run(t, api, "", "create", "--title", title, "--description", "d")
		require.NoError(t, err)
	}

	out, err := run(t, api, "", "list", "--page-size", "2", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 1 of 2 (3 issues)")
	assert.Contains(t, out, "Page 2 of 2 (3 issues)")
	assert.Less(t, strings.Index(out, "three"), strings.Index(out, "one"))
}

func TestPrintErrorShowsFieldMessages(t *testing.T) {
	api := startAPI(t)

	_, err := run(t, api, "", "create", "--title", "", "--description", "d")
	require.Error(t, err)

	var buf bytes.Buffer
	printError(&buf, err)
	assert.Contains(t, buf.String(), "Title is required")
	assert.Contains(t, buf.String(), "title: Title is required")

	buf.Reset()
	printError(&buf, errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}

func TestEditRequiresAChange(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "", "edit", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")

	_, err = run(t, "http://127.0.0.1:1", "", "show", "abc")
	require.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")

	out, err := run(t, "", "", "token", "--subject", "alice")
	require.NoError(t, err)

	claims, err := auth.NewTokenManager("cli-secret", 5).ParseToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestRenderIssueTableEmpty(t *testing.T) {
	out := renderIssueTable(&dto.IssuePageResponse{Items: []dto.IssueResponse{}})
	assert.Contains(t, out, "No issues found.")
}
