// ABOUTME: Output and argument helpers shared by the CLI commands.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/reps/internal/models"
)

var (
	faint   = color.New(color.Faint)
	success = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	bold    = color.New(color.Bold)
)

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// parseID parses a positive numeric identifier argument.
func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s ID %q", models.ErrValidation, kind, s)
	}
	return id, nil
}

// parseDelta accepts signed integers such as +5 or -10.
func parseDelta(s string) (int, error) {
	d, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid delta %q", models.ErrValidation, s)
	}
	return d, nil
}
