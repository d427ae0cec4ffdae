// Package validate holds the client-side field checks run before any
// request is sent. Each check returns the message to show next to the
// field, or "" when the value is acceptable.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxBoardName    = 35
	maxTaskTitle    = 50
	maxSubtaskTitle = 50
)

func check(label, s string, max int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Sprintf("%s cannot be empty.", label)
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return fmt.Sprintf("%s cannot be longer than %d characters.", label, max)
	}
	return ""
}

// BoardName checks a board name.
func BoardName(s string) string { return check("Board name", s, maxBoardName) }

// TaskTitle checks a task title.
func TaskTitle(s string) string { return check("Task title", s, maxTaskTitle) }

// SubtaskTitle checks a subtask title.
func SubtaskTitle(s string) string { return check("Subtask title", s, maxSubtaskTitle) }

// Username checks the login form's username.
func Username(s string) string { return check("Username", s, 0) }

// Password checks the login form's password.
func Password(s string) string { return check("Password", s, 0) }

// Func adapts a check to the func(string) error shape huh fields take.
func Func(v func(string) string) func(string) error {
	return func(s string) error {
		if msg := v(s); msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}
