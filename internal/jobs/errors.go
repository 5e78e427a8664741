package jobs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("job not found")
)

func invalidStatus(raw string) error {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return fmt.Errorf("%w: status %q must be one of %s", ErrInvalidInput, raw, strings.Join(names, ", "))
}
