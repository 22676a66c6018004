package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/TobiSchelling/cfpsync/internal/proposal"
	"github.com/TobiSchelling/cfpsync/internal/resource"
)

var rule = strings.Repeat("-", 79)

// Show writes a human-readable listing of the proposals. With summary set
// the abstracts are left out.
func Show(w io.Writer, records []proposal.Proposal, summary bool) error {
	for i := range records {
		p := &records[i]
		speaker := resource.ProjectSpeakers(records[i : i+1])[0]

		var b strings.Builder
		fmt.Fprintf(&b, "Title:      %s\n", p.Render(proposal.Title))
		fmt.Fprintf(&b, "Speaker:    %s\n", speaker.DisplayName())
		fmt.Fprintf(&b, "Email:      %s\n", p.Render(proposal.Email))
		fmt.Fprintf(&b, "Type:       %s\n", p.Render(proposal.Type))
		fmt.Fprintf(&b, "Theme:      %s\n", p.ThemeString())
		fmt.Fprintf(&b, "Difficulty: %s\n", p.Render(proposal.Difficulty))
		fmt.Fprintf(&b, "Submitted:  %s\n", p.SubmittedString())
		if !summary {
			fmt.Fprintf(&b, "Abstract:\n\n%s\n", p.Render(proposal.Abstract))
		}
		b.WriteString("\n" + rule + "\n")

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// ShowSpeakers lists speaker records. Secondary speakers print their raw
// text under the id of their proposal.
func ShowSpeakers(w io.Writer, speakers []resource.Speaker) error {
	for _, s := range speakers {
		var line string
		if s.IsSecondary {
			line = fmt.Sprintf("%s  (co-speaker) %s\n", s.ID, s.Raw)
		} else {
			line = fmt.Sprintf("%s  %s <%s>\n", s.ID, s.DisplayName(), deref(s.Email))
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ShowSessions lists one session per line.
func ShowSessions(w io.Writer, sessions []resource.Session) error {
	for _, s := range sessions {
		line := fmt.Sprintf("%s  [%s/%s] %s\n", s.ID, deref(s.Type), deref(s.Difficulty), deref(s.Title))
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return proposal.Unknown
	}
	return *s
}
