package sheet

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/TobiSchelling/cfpsync/internal/proposal"
	"github.com/TobiSchelling/cfpsync/internal/resource"
)

// ErrDrift is returned by a verifying planner when the remote table no longer
// matches the local prefix it is assumed to mirror.
var ErrDrift = errors.New("remote table drifted from local records")

// PlanOptions tune PlanAppend.
type PlanOptions struct {
	// Verify compares the ids already in the table with the local prefix
	// instead of trusting the row count alone.
	Verify bool
	// Header, when set together with Verify, must equal the remote header.
	Header []string
	// IDColumn names the column holding record ids. Defaults to "id".
	IDColumn string
}

// Plan describes an append-only write against a remote table.
type Plan struct {
	Start       Cell
	WriteHeader bool
	Existing    int
	Records     []proposal.Proposal
}

// Empty reports whether there is nothing to write.
func (p *Plan) Empty() bool {
	return !p.WriteHeader && len(p.Records) == 0
}

// Rows renders the write payload, header first when the plan requires it.
func (p *Plan) Rows(cols []resource.Column) [][]string {
	var rows [][]string
	if p.WriteHeader {
		rows = append(rows, resource.Header(cols))
	}
	return append(rows, resource.Rows(cols, p.Records)...)
}

// PlanAppend computes which local records are missing from the table.
//
// The k data rows already present are assumed to be the first k local
// records; only the tail is appended, directly below the last row. This
// relies on the table being written exclusively by this pipeline. Rows
// reordered, removed or inserted by hand are only detected with Verify.
func PlanAppend(state *State, local proposal.Ascending, opts PlanOptions) (*Plan, error) {
	if state.Empty() {
		return &Plan{
			Start:       Cell{Row: 1},
			WriteHeader: true,
			Records:     local.Records(),
		}, nil
	}

	k := len(state.Rows)
	if opts.Verify {
		if err := verifyPrefix(state, local, opts); err != nil {
			return nil, err
		}
	}

	return &Plan{
		Start:    Cell{Row: k + 2},
		Existing: k,
		Records:  local.Tail(k),
	}, nil
}

func verifyPrefix(state *State, local proposal.Ascending, opts PlanOptions) error {
	if opts.Header != nil && !slices.Equal(opts.Header, state.Header) {
		return fmt.Errorf("%w: header %v, expected %v", ErrDrift, state.Header, opts.Header)
	}

	name := opts.IDColumn
	if name == "" {
		name = "id"
	}
	col := slices.Index(state.Header, name)
	if col < 0 {
		return fmt.Errorf("%w: no %q column to verify against", ErrDrift, name)
	}

	if len(state.Rows) > local.Len() {
		return fmt.Errorf("%w: table has %d rows but only %d local records", ErrDrift, len(state.Rows), local.Len())
	}
	for i, row := range state.Rows {
		var got string
		if col < len(row) {
			got = row[col]
		}
		if want := local.At(i).ID; got != want {
			return fmt.Errorf("%w: row %d has id %q, expected %q", ErrDrift, i+2, got, want)
		}
	}
	return nil
}

// Apply writes a plan to the table and returns the number of records written.
func Apply(ctx context.Context, t Table, plan *Plan, cols []resource.Column) (int, error) {
	if plan.Empty() {
		return 0, nil
	}
	if err := t.Write(ctx, plan.Start, plan.Rows(cols)); err != nil {
		return 0, fmt.Errorf("writing at %s: %w", plan.Start, err)
	}
	return len(plan.Records), nil
}
