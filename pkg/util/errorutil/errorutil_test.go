package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"cancelled", context.Canceled, CodeCanceled, StatusClientClosedRequest},
		{"wrapped cancelled", fmt.Errorf("find issue: %w", context.Canceled), CodeCanceled, StatusClientClosedRequest},
		{"deadline", context.DeadlineExceeded, CodeTimeout, http.StatusServiceUnavailable},
		{"fiber not found", fiber.ErrNotFound, CodeNotFound, http.StatusNotFound},
		{"fiber bad request", fiber.NewError(http.StatusBadRequest, "bad json"), CodeValidation, http.StatusBadRequest},
		{"not found", NewNotFound("Issue", 4), CodeNotFound, http.StatusNotFound},
		{"unknown", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestCancelledKeepsCause(t *testing.T) {
	err := ToDomainError(fmt.Errorf("count issues: %w", context.Canceled))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "request cancelled", err.Message)
}
