package sheet

import (
	"context"
	"fmt"
)

// State is the current content of a remote table: the header row followed by
// data rows. Only the header and the row count are interpreted.
type State struct {
	Header []string
	Rows   [][]string
}

// Empty reports whether the table holds nothing at all, not even a header.
func (s *State) Empty() bool {
	return s == nil || (len(s.Header) == 0 && len(s.Rows) == 0)
}

// FromValues splits raw sheet values into header and data rows.
func FromValues(values [][]string) *State {
	if len(values) == 0 {
		return &State{}
	}
	return &State{Header: values[0], Rows: values[1:]}
}

// Cell is a cell reference in column A.
type Cell struct {
	Row int
}

func (c Cell) String() string {
	return fmt.Sprintf("A%d", c.Row)
}

// Table is a remote table the pipeline appends to. Write must only ever be
// called with a start row past the existing content.
type Table interface {
	Read(ctx context.Context) (*State, error)
	Write(ctx context.Context, start Cell, rows [][]string) error
}
