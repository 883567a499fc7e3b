package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/domain"
)

var (
	colorOpen = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
	colorBusy = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorDone = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorFail = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorMute = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}

	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMute)
	errorStyle   = lipgloss.NewStyle().Foreground(colorFail).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colorDone)
)

const timeLayout = "2006-01-02 15:04"

func statusStyle(s domain.Status) lipgloss.Style {
	switch s {
	case domain.StatusOpen:
		return lipgloss.NewStyle().Foreground(colorOpen)
	case domain.StatusInProgress:
		return lipgloss.NewStyle().Foreground(colorBusy)
	case domain.StatusResolved:
		return lipgloss.NewStyle().Foreground(colorDone)
	default:
		return mutedStyle
	}
}

func renderStatus(s domain.Status) string {
	return statusStyle(s).Render(s.Label())
}

func renderIssueTable(page *dto.IssuePageResponse) string {
	if len(page.Items) == 0 {
		return mutedStyle.Render("No issues found.") + "\n"
	}

	idWidth, statusWidth := len("ID"), len("STATUS")
	for _, issue := range page.Items {
		idWidth = max(idWidth, len(fmt.Sprint(issue.ID)))
		statusWidth = max(statusWidth, len(issue.Status.Label()))
	}
	idCol := lipgloss.NewStyle().Width(idWidth + 2)
	statusCol := lipgloss.NewStyle().Width(statusWidth + 2)
	createdCol := lipgloss.NewStyle().Width(len(timeLayout) + 2)

	var b strings.Builder
	b.WriteString(headerStyle.Render(idCol.Render("ID") + statusCol.Render("STATUS") + createdCol.Render("CREATED") + "TITLE"))
	b.WriteString("\n")
	for _, issue := range page.Items {
		b.WriteString(idCol.Render(fmt.Sprint(issue.ID)))
		b.WriteString(statusCol.Render(renderStatus(issue.Status)))
		b.WriteString(createdCol.Render(formatTime(issue.CreatedAt)))
		b.WriteString(issue.Title)
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Page %d of %d (%d issues)", page.PageNumber, max(page.TotalPages, 1), page.TotalCount)))
	b.WriteString("\n")
	return b.String()
}

func renderIssue(issue *dto.IssueResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", headerStyle.Render(fmt.Sprintf("#%d", issue.ID)), headerStyle.Render(issue.Title))
	fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("Status:  "), renderStatus(issue.Status))
	fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("Created: "), formatTime(issue.CreatedAt))
	if issue.ResolvedAt != nil {
		fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("Resolved:"), formatTime(*issue.ResolvedAt))
	}
	if issue.Description != "" {
		b.WriteString("\n")
		b.WriteString(issue.Description)
		b.WriteString("\n")
	}
	return b.String()
}

func renderError(msg string) string {
	return errorStyle.Render("Error: ") + msg
}

func renderSuccess(msg string) string {
	return successStyle.Render(msg)
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}
