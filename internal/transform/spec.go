// Package transform produces candidate columns from a dataset column.
//
// The split functions are pure: they read a Dataset and return Candidates
// without touching session state. Rename relabels candidates positionally.
package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/colsplit/internal/dataset"
)

// Mode selects how a column is split.
type Mode string

const (
	ModeDelimiter  Mode = "delimiter"
	ModeFixedWidth Mode = "fixed-width"
)

// DefaultDelimiter is the separator used when no mode has been chosen.
const DefaultDelimiter = ","

// ParseMode accepts the canonical names plus a few spellings used by the CLI.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delimiter", "delim", "d":
		return ModeDelimiter, nil
	case "fixed-width", "fixed", "fixedwidth", "width", "f":
		return ModeFixedWidth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// SplitSpec is the pending split configuration for one preview/commit cycle.
type SplitSpec struct {
	Column    string `json:"column"`
	Mode      Mode   `json:"mode"`
	Delimiter string `json:"delimiter,omitempty"`
	Widths    []int  `json:"widths,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
}

// DefaultSpec is the configuration a freshly selected column starts with:
// comma-delimited, named after the column.
func DefaultSpec(column string) SplitSpec {
	return SplitSpec{
		Column:    column,
		Mode:      ModeDelimiter,
		Delimiter: DefaultDelimiter,
	}
}

// NamePrefix returns the prefix for default candidate names.
func (s SplitSpec) NamePrefix() string {
	if s.Prefix != "" {
		return s.Prefix
	}
	return s.Column
}

// Validate checks the mode parameters without looking at any data.
func (s SplitSpec) Validate() error {
	switch s.Mode {
	case ModeDelimiter:
		return validateDelimiter(s.Delimiter)
	case ModeFixedWidth:
		return validateWidths(s.Widths)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, s.Mode)
	}
}

// Apply runs the split described by s against d.
func (s SplitSpec) Apply(d *dataset.Dataset) (*Candidates, error) {
	switch s.Mode {
	case ModeDelimiter:
		return splitByDelimiter(d, s.Column, s.Delimiter, s.NamePrefix())
	case ModeFixedWidth:
		return splitByFixedWidth(d, s.Column, s.Widths, s.NamePrefix())
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, s.Mode)
	}
}

// ParseDelimiter turns user input into a literal separator.
// The two-character sequence \t means a tab.
func ParseDelimiter(s string) (string, error) {
	if s == `\t` {
		s = "\t"
	}
	if err := validateDelimiter(s); err != nil {
		return "", err
	}
	return s, nil
}

// ParseWidths parses a comma-separated list of positive integers such as "5,5,5".
func ParseWidths(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty list", ErrInvalidWidths)
	}

	parts := strings.Split(s, ",")
	widths := make([]int, 0, len(parts))
	for _, p := range parts {
		w, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidWidths, p)
		}
		widths = append(widths, w)
	}

	if err := validateWidths(widths); err != nil {
		return nil, err
	}
	return widths, nil
}

// DefaultNames returns prefix_0 .. prefix_{n-1}.
func DefaultNames(prefix string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = prefix + "_" + strconv.Itoa(i)
	}
	return names
}

func validateDelimiter(delim string) error {
	if delim == "" {
		return fmt.Errorf("%w: delimiter is empty", ErrInvalidDelimiter)
	}
	return nil
}

func validateWidths(widths []int) error {
	if len(widths) == 0 {
		return fmt.Errorf("%w: no widths given", ErrInvalidWidths)
	}
	for i, w := range widths {
		if w <= 0 {
			return fmt.Errorf("%w: width %d at position %d is not positive", ErrInvalidWidths, w, i)
		}
	}
	return nil
}
