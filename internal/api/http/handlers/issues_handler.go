package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// IssuesHandler exposes the issue service over HTTP.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// List GET /issues?status=&pageNumber=&pageSize=.
func (h *IssuesHandler) List(c *fiber.Ctx) error {
	input := service.ListIssuesInput{
		PageNumber: parseInt(c.Query("pageNumber"), 1),
		PageSize:   parseInt(c.Query("pageSize"), domain.DefaultPageSize),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return apperrors.NewFieldError("status", "Invalid status value")
		}
		input.Status = &status
	}

	page, err := h.service.List(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIssuePageResponse(page))
}

// Get GET /issues/:id.
func (h *IssuesHandler) Get(c *fiber.Ctx) error {
	id, err := issueID(c)
	if err != nil {
		return err
	}
	issue, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIssueResponse(issue))
}

// Create POST /issues.
func (h *IssuesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateIssueRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if fields := req.Validate(); len(fields) > 0 {
		return apperrors.NewValidationError("", fields)
	}

	issue, err := h.service.Create(c.UserContext(), service.IssueCreateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	c.Location(fmt.Sprintf("/issues/%d", issue.ID))
	return c.Status(fiber.StatusCreated).JSON(dto.NewIssueResponse(issue))
}

// Update PUT /issues/:id.
func (h *IssuesHandler) Update(c *fiber.Ctx) error {
	id, err := issueID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateIssueRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if fields := req.Validate(); len(fields) > 0 {
		return apperrors.NewValidationError("", fields)
	}

	issue, err := h.service.Update(c.UserContext(), id, service.IssueUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIssueResponse(issue))
}

// Resolve PATCH /issues/:id/resolve.
func (h *IssuesHandler) Resolve(c *fiber.Ctx) error {
	id, err := issueID(c)
	if err != nil {
		return err
	}
	issue, err := h.service.Resolve(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIssueResponse(issue))
}

// Delete DELETE /issues/:id.
func (h *IssuesHandler) Delete(c *fiber.Ctx) error {
	id, err := issueID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func issueID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewFieldError("id", fmt.Sprintf("The value '%s' is not a valid issue id.", c.Params("id")))
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	err := c.BodyParser(out)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperrors.NewFieldError(typeErr.Field, fmt.Sprintf("The %s field has an invalid value.", typeErr.Field))
	}
	return apperrors.NewValidationError("The request body is not valid JSON.", nil)
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}
