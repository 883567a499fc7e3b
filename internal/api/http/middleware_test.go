package http_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	httpapi "github.com/spec-kit/issue-tracker/internal/api/http"
	"github.com/spec-kit/issue-tracker/internal/observability"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

func TestCancelledRequestIsNotAServerError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httpapi.RegisterMiddlewares(app, httpapi.MiddlewareConfig{
		Logger:  zap.New(core),
		Metrics: observability.NewMetrics(reg),
	})
	app.Get("/issues", func(c *fiber.Ctx) error {
		return fmt.Errorf("list issues: %w", context.Canceled)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	resp, data := send(t, app, http.MethodGet, "/issues", nil, nil)
	require.Equal(t, apperrors.StatusClientClosedRequest, resp.StatusCode)
	problem := decodeProblem(t, resp, data)
	assert.Equal(t, "Client Closed Request", problem.Title)

	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("request rejected").Len())

	_, data = send(t, app, http.MethodGet, "/metrics", nil, nil)
	assert.Contains(t, string(data), `code="REQUEST_CANCELLED"`)
}
