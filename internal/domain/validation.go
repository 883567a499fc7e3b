package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	TitleMaxLength       = 200
	DescriptionMaxLength = 2000
)

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// TitleProblems returns the reasons title cannot be stored on a new issue.
func TitleProblems(title string) []string {
	return textProblems("Title", title, TitleMaxLength)
}

// DescriptionProblems returns the reasons description cannot be stored on a new issue.
func DescriptionProblems(description string) []string {
	return textProblems("Description", description, DescriptionMaxLength)
}

// LengthProblem reports an over-length value, or "" when it fits.
func LengthProblem(name, value string, max int) string {
	if utf8.RuneCountInString(value) > max {
		return fmt.Sprintf("%s cannot exceed %d characters", name, max)
	}
	return ""
}

func textProblems(name, value string, max int) []string {
	switch {
	case value == "":
		return []string{name + " is required"}
	case IsBlank(value):
		return []string{name + " cannot be only whitespace"}
	}
	if msg := LengthProblem(name, value, max); msg != "" {
		return []string{msg}
	}
	return nil
}
