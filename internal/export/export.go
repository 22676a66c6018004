// Package export writes proposals to local files and the terminal.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/TobiSchelling/cfpsync/internal/proposal"
	"github.com/TobiSchelling/cfpsync/internal/resource"
)

// Format names an export file format.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	HTML Format = "html"
)

// ParseFormat validates a format name given on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case CSV, JSON, HTML:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or html)", s)
}

// Write dispatches to the writer for format.
func Write(w io.Writer, format Format, records []proposal.Proposal) error {
	switch format {
	case CSV:
		return WriteCSV(w, records)
	case JSON:
		return WriteJSON(w, records)
	case HTML:
		return WriteHTML(w, records)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteCSV writes one row per proposal with a header line. Session columns
// come before speaker columns.
func WriteCSV(w io.Writer, records []proposal.Proposal) error {
	cols := resource.ProposalColumns()
	cw := csv.NewWriter(w)
	if err := cw.Write(resource.Header(cols)); err != nil {
		return err
	}
	if err := cw.WriteAll(resource.Rows(cols, records)); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// WriteJSON writes the proposals as an indented JSON array. Keys are sorted
// and unanswered fields are left out.
func WriteJSON(w io.Writer, records []proposal.Proposal) error {
	out := make([]map[string]any, 0, len(records))
	for i := range records {
		p := &records[i]
		obj := map[string]any{
			"id":        p.ID,
			"submitted": p.SubmittedString(),
			"theme":     p.Theme,
		}
		if p.Theme == nil {
			obj["theme"] = []string{}
		}
		for _, f := range slices.Concat(proposal.SessionFields, proposal.SpeakerFields) {
			if f == proposal.Theme {
				continue
			}
			if v, ok := p.Get(f); ok {
				obj[string(f)] = v
			}
		}
		out = append(out, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
