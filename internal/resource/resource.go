package resource

import (
	"fmt"
	"time"

	"github.com/TobiSchelling/cfpsync/internal/proposal"
)

// Kind names a projection of the proposal set.
type Kind string

const (
	Proposals Kind = "proposals"
	Sessions  Kind = "sessions"
	Speakers  Kind = "speakers"
)

// ParseKind validates a resource name given on the command line.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Proposals, Sessions, Speakers:
		return k, nil
	}
	return "", fmt.Errorf("invalid resource: %s", s)
}

// Session is the session half of a proposal.
type Session struct {
	ID         string
	Submitted  time.Time
	Title      *string
	Type       *string
	Theme      []string
	Difficulty *string
	Abstract   *string
}

// Speaker is the speaker half of a proposal. Secondary speakers are free
// text and carried verbatim in Raw with IsSecondary set; their structured
// fields stay nil.
type Speaker struct {
	ID          string
	IsSecondary bool
	Raw         string

	Agreement *string
	Name      *string
	Country   *string
	Bio       *string
	Org       *string
	Size      *string
	Email     *string
	Avatar    *string
	Twitter   *string
}

// ProjectSessions returns one Session per proposal, in input order.
func ProjectSessions(records []proposal.Proposal) []Session {
	out := make([]Session, 0, len(records))
	for _, p := range records {
		out = append(out, Session{
			ID:         p.ID,
			Submitted:  p.Submitted,
			Title:      p.Title,
			Type:       p.Type,
			Theme:      p.Theme,
			Difficulty: p.Difficulty,
			Abstract:   p.Abstract,
		})
	}
	return out
}

// ProjectSpeakers returns the primary speaker of every proposal, each
// followed by a linked secondary record when the proposal names co-speakers.
func ProjectSpeakers(records []proposal.Proposal) []Speaker {
	out := make([]Speaker, 0, len(records))
	for _, p := range records {
		out = append(out, Speaker{
			ID:        p.ID,
			Agreement: p.Agreement,
			Name:      p.Name,
			Country:   p.Country,
			Bio:       p.Bio,
			Org:       p.Org,
			Size:      p.Size,
			Email:     p.Email,
			Avatar:    p.Avatar,
			Twitter:   p.Twitter,
		})
		if p.Secondary != nil && *p.Secondary != "" {
			out = append(out, Speaker{ID: p.ID, IsSecondary: true, Raw: *p.Secondary})
		}
	}
	return out
}

// Primary filters out secondary speaker records.
func Primary(speakers []Speaker) []Speaker {
	var out []Speaker
	for _, s := range speakers {
		if !s.IsSecondary {
			out = append(out, s)
		}
	}
	return out
}

// DisplayName renders the speaker as "Name (@handle)".
func (s Speaker) DisplayName() string {
	name := proposal.Unknown
	if s.Name != nil {
		name = *s.Name
	}
	if s.Twitter != nil && len(*s.Twitter) > 1 {
		name += fmt.Sprintf(" (@%s)", *s.Twitter)
	}
	return name
}
