package sheet

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/cfpsync/internal/proposal"
	"github.com/TobiSchelling/cfpsync/internal/resource"
)

func localRecords(t *testing.T, n int) proposal.Ascending {
	t.Helper()
	records := make([]proposal.Proposal, n)
	for i := range records {
		records[i] = proposal.Proposal{
			ID:        fmt.Sprintf("net%d+2017-01-%02d10:00:00", i+1, i+1),
			Submitted: time.Date(2017, 1, i+1, 10, 0, 0, 0, time.UTC),
			Theme:     []string{},
		}
	}
	asc, err := proposal.NewAscending(records)
	require.NoError(t, err)
	return asc
}

// memTable is an in-memory Table that refuses to overwrite existing rows.
type memTable struct {
	values [][]string
	writes int
}

func (m *memTable) Read(context.Context) (*State, error) {
	return FromValues(m.values), nil
}

func (m *memTable) Write(_ context.Context, start Cell, rows [][]string) error {
	if start.Row != len(m.values)+1 {
		return fmt.Errorf("write at %s would not append after row %d", start, len(m.values))
	}
	m.values = append(m.values, rows...)
	m.writes++
	return nil
}

func TestPlanEmptyTable(t *testing.T) {
	local := localRecords(t, 3)
	plan, err := PlanAppend(&State{}, local, PlanOptions{})
	require.NoError(t, err)

	assert.Equal(t, "A1", plan.Start.String())
	assert.True(t, plan.WriteHeader)
	assert.Len(t, plan.Records, 3)
}

func TestPlanNilState(t *testing.T) {
	plan, err := PlanAppend(nil, localRecords(t, 1), PlanOptions{})
	require.NoError(t, err)
	assert.True(t, plan.WriteHeader)
}

func TestPlanHeaderOnly(t *testing.T) {
	state := &State{Header: []string{"id", "submitted"}}
	plan, err := PlanAppend(state, localRecords(t, 2), PlanOptions{})
	require.NoError(t, err)

	assert.Equal(t, "A2", plan.Start.String())
	assert.False(t, plan.WriteHeader)
	assert.Len(t, plan.Records, 2)
}

func TestPlanAppendsTail(t *testing.T) {
	local := localRecords(t, 5)
	state := &State{
		Header: []string{"id"},
		Rows:   [][]string{{local.At(0).ID}, {local.At(1).ID}, {local.At(2).ID}},
	}

	plan, err := PlanAppend(state, local, PlanOptions{})
	require.NoError(t, err)

	assert.Equal(t, "A5", plan.Start.String())
	assert.False(t, plan.WriteHeader)
	assert.Equal(t, 3, plan.Existing)
	require.Len(t, plan.Records, 2)
	assert.Equal(t, local.At(3).ID, plan.Records[0].ID)
	assert.Equal(t, local.At(4).ID, plan.Records[1].ID)
}

func TestPlanRemoteAheadOfLocal(t *testing.T) {
	state := &State{Header: []string{"id"}, Rows: [][]string{{"x"}, {"y"}, {"z"}}}
	plan, err := PlanAppend(state, localRecords(t, 2), PlanOptions{})
	require.NoError(t, err)
	assert.True(t, plan.Empty())
}

func TestPlanIsIdempotent(t *testing.T) {
	ctx := context.Background()
	table := &memTable{}
	local := localRecords(t, 4)
	cols := resource.SessionColumns()

	for run := 0; run < 3; run++ {
		state, err := table.Read(ctx)
		require.NoError(t, err)
		plan, err := PlanAppend(state, local, PlanOptions{})
		require.NoError(t, err)
		n, err := Apply(ctx, table, plan, cols)
		require.NoError(t, err)

		if run == 0 {
			assert.Equal(t, 4, n)
		} else {
			assert.True(t, plan.Empty(), "run %d should have nothing to write", run)
			assert.Zero(t, n)
		}
	}
	assert.Equal(t, 1, table.writes)
	assert.Len(t, table.values, 5)
	assert.Equal(t, resource.Header(cols), table.values[0])
}

func TestPlanPicksUpNewSubmissions(t *testing.T) {
	ctx := context.Background()
	table := &memTable{}
	cols := resource.SessionColumns()

	first := localRecords(t, 2)
	plan, err := PlanAppend(FromValues(table.values), first, PlanOptions{})
	require.NoError(t, err)
	_, err = Apply(ctx, table, plan, cols)
	require.NoError(t, err)

	second := localRecords(t, 5)
	plan, err = PlanAppend(FromValues(table.values), second, PlanOptions{Verify: true})
	require.NoError(t, err)
	assert.Equal(t, "A4", plan.Start.String())
	n, err := Apply(ctx, table, plan, cols)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, table.values, 6)
	assert.Equal(t, second.At(4).ID, table.values[5][0])
}

func TestPlanVerifyDetectsDrift(t *testing.T) {
	local := localRecords(t, 3)

	tests := []struct {
		name  string
		state *State
		opts  PlanOptions
	}{
		{
			name:  "reordered rows",
			state: &State{Header: []string{"id"}, Rows: [][]string{{local.At(1).ID}, {local.At(0).ID}}},
		},
		{
			name:  "more rows than records",
			state: &State{Header: []string{"id"}, Rows: [][]string{{"a"}, {"b"}, {"c"}, {"d"}}},
		},
		{
			name:  "no id column",
			state: &State{Header: []string{"title"}, Rows: [][]string{{"x"}}},
		},
		{
			name:  "header changed",
			state: &State{Header: []string{"id", "title"}},
			opts:  PlanOptions{Header: []string{"id", "submitted"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Verify = true
			_, err := PlanAppend(tt.state, local, tt.opts)
			assert.True(t, errors.Is(err, ErrDrift), "expected ErrDrift, got %v", err)
		})
	}
}

func TestPlanWithoutVerifyTrustsCount(t *testing.T) {
	local := localRecords(t, 3)
	state := &State{Header: []string{"id"}, Rows: [][]string{{"edited by hand"}}}
	plan, err := PlanAppend(state, local, PlanOptions{})
	require.NoError(t, err)
	require.Len(t, plan.Records, 2)
	assert.Equal(t, local.At(1).ID, plan.Records[0].ID)
}

func TestPlanRows(t *testing.T) {
	local := localRecords(t, 1)
	plan, err := PlanAppend(&State{}, local, PlanOptions{})
	require.NoError(t, err)

	rows := plan.Rows(resource.SessionColumns())
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, local.At(0).ID, rows[1][0])
}
