package export

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/TobiSchelling/cfpsync/internal/proposal"
	"github.com/TobiSchelling/cfpsync/internal/resource"
)

// Count is the number of records carrying one value.
type Count struct {
	Value string
	N     int
}

// FieldStats holds the distinct values of one field, most frequent first.
type FieldStats struct {
	Field  proposal.Field
	Counts []Count
}

// Stats summarizes the distinct values of the session and speaker fields.
type Stats struct {
	Proposals int
	Speakers  int
	Session   []FieldStats
	Speaker   []FieldStats
}

var (
	sessionStatFields = []proposal.Field{proposal.Type, proposal.Theme, proposal.Difficulty}
	speakerStatFields = []proposal.Field{proposal.Org, proposal.Country}
)

// Summarize counts values per field. Each theme of a multi-theme proposal
// counts once; missing values count as UNKNOWN. Secondary speakers add to
// the speaker total but carry no structured fields.
func Summarize(records []proposal.Proposal) *Stats {
	s := &Stats{
		Proposals: len(records),
		Speakers:  len(resource.ProjectSpeakers(records)),
	}
	for _, f := range sessionStatFields {
		s.Session = append(s.Session, countField(records, f))
	}
	for _, f := range speakerStatFields {
		s.Speaker = append(s.Speaker, countField(records, f))
	}
	return s
}

func countField(records []proposal.Proposal, f proposal.Field) FieldStats {
	counts := make(map[string]int)
	for i := range records {
		p := &records[i]
		if f == proposal.Theme {
			if len(p.Theme) == 0 {
				counts[proposal.Unknown]++
			}
			for _, t := range p.Theme {
				counts[t]++
			}
			continue
		}
		counts[p.Render(f)]++
	}

	fs := FieldStats{Field: f}
	for v, n := range counts {
		fs.Counts = append(fs.Counts, Count{Value: v, N: n})
	}
	slices.SortFunc(fs.Counts, func(a, b Count) int {
		if c := cmp.Compare(b.N, a.N); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return fs
}

// WriteStats prints a Stats report.
func WriteStats(w io.Writer, s *Stats) error {
	if _, err := fmt.Fprintf(w, "Sessions: %d\nSpeakers: %d\n", s.Proposals, s.Speakers); err != nil {
		return err
	}
	sections := []struct {
		title  string
		fields []FieldStats
	}{
		{"Sessions", s.Session},
		{"Speakers", s.Speaker},
	}
	for _, sec := range sections {
		fmt.Fprintf(w, "\n%s\n", sec.title)
		for _, fs := range sec.fields {
			fmt.Fprintf(w, "  %s (%d distinct)\n", fs.Field, len(fs.Counts))
			for _, c := range fs.Counts {
				if _, err := fmt.Fprintf(w, "    %4d  %s\n", c.N, c.Value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
