package http

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/observability"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

const genericServerDetail = "An unexpected error occurred. Please try again later."

// MiddlewareConfig bundles dependencies of the global middleware chain.
type MiddlewareConfig struct {
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Timeout     time.Duration
	CORSOrigins []string
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app.Use(requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: observability.RequestIDKey,
	}))
	if len(cfg.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:  strings.Join(cfg.CORSOrigins, ","),
			AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
			ExposeHeaders: "Location, X-Request-Id",
		}))
	}
	app.Use(observability.RequestLogger(logger, cfg.Metrics))
	app.Use(errorHandlingMiddleware(logger, cfg.Metrics))
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("request_id", observability.RequestID(c)))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				metrics.RecordError(observability.RouteLabel(c), observability.MethodLabel(c), domainErr.Code)
				if domainErr.HTTPStatus >= http.StatusInternalServerError {
					logger.Error("request failed",
						zap.Error(domainErr),
						zap.String("method", c.Method()),
						zap.String("path", c.Path()),
						zap.String("request_id", observability.RequestID(c)))
				} else {
					logger.Debug("request rejected",
						zap.String("code", domainErr.Code),
						zap.String("message", domainErr.Message),
						zap.String("request_id", observability.RequestID(c)))
				}
				err = writeProblem(c, domainErr)
			}
		}()
		return c.Next()
	}
}

func writeProblem(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	status := domainErr.HTTPStatus
	detail := domainErr.Message
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		detail = genericServerDetail
	}
	now := time.Now().UTC()
	problem := dto.ProblemDetails{
		Type:      dto.ProblemType(status),
		Title:     dto.ProblemTitle(status, domainErr.Code == apperrors.CodeValidation),
		Status:    status,
		Detail:    detail,
		Instance:  c.Path(),
		TraceID:   observability.RequestID(c),
		Timestamp: &now,
		Method:    c.Method(),
		Errors:    domainErr.Fields,
	}
	if err := c.Status(status).JSON(problem); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, dto.ProblemContentType)
	return nil
}
