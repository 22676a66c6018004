package resource

import "github.com/TobiSchelling/cfpsync/internal/proposal"

// Column is one column of a tabular view.
type Column struct {
	Name  string
	Value func(p *proposal.Proposal) string
}

var (
	idColumn = Column{Name: "id", Value: func(p *proposal.Proposal) string { return p.ID }}

	submittedColumn = Column{Name: "submitted", Value: func(p *proposal.Proposal) string { return p.SubmittedString() }}
)

func fieldColumn(f proposal.Field) Column {
	return Column{Name: string(f), Value: func(p *proposal.Proposal) string { return p.Render(f) }}
}

// SessionColumns are the columns of the synced session table.
func SessionColumns() []Column {
	cols := []Column{idColumn, submittedColumn}
	for _, f := range proposal.SessionFields {
		cols = append(cols, fieldColumn(f))
	}
	return cols
}

// ProposalColumns are the columns of the flat export: submission fields
// before speaker fields.
func ProposalColumns() []Column {
	cols := SessionColumns()
	for _, f := range proposal.SpeakerFields {
		cols = append(cols, fieldColumn(f))
	}
	return cols
}

// Header returns the column names.
func Header(cols []Column) []string {
	h := make([]string, len(cols))
	for i, c := range cols {
		h[i] = c.Name
	}
	return h
}

// Row renders one proposal across the columns.
func Row(cols []Column, p *proposal.Proposal) []string {
	row := make([]string, len(cols))
	for i, c := range cols {
		row[i] = c.Value(p)
	}
	return row
}

// Rows renders every proposal across the columns.
func Rows(cols []Column, records []proposal.Proposal) [][]string {
	rows := make([][]string, len(records))
	for i := range records {
		rows[i] = Row(cols, &records[i])
	}
	return rows
}
