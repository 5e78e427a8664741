package notes

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("note not found")
)

func invalidCategory(raw Category) error {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return fmt.Errorf("%w: category %q must be one of %s", ErrInvalidInput, raw, strings.Join(names, ", "))
}
