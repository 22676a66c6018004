package proposal

import (
	"strings"
	"time"
)

// Unknown is rendered in place of a field the submitter did not answer.
const Unknown = "UNKNOWN"

// ThemeDelimiter joins the sorted theme list into a single cell.
const ThemeDelimiter = "; "

// SubmittedLayout is the timestamp layout used by the survey API.
const SubmittedLayout = "2006-01-02 15:04:05"

// Proposal is one normalized conference submission. Optional answers are nil
// when absent. A Proposal is never mutated after normalization.
type Proposal struct {
	ID        string
	Submitted time.Time
	Theme     []string

	Agreement  *string
	Title      *string
	Type       *string
	Difficulty *string
	Abstract   *string
	Name       *string
	Country    *string
	Bio        *string
	Org        *string
	Size       *string
	Email      *string
	Avatar     *string
	Twitter    *string
	Secondary  *string
}

// slot returns the storage for a single-valued field, or nil for theme and
// unknown fields.
func (p *Proposal) slot(f Field) **string {
	switch f {
	case Agreement:
		return &p.Agreement
	case Title:
		return &p.Title
	case Type:
		return &p.Type
	case Difficulty:
		return &p.Difficulty
	case Abstract:
		return &p.Abstract
	case Name:
		return &p.Name
	case Country:
		return &p.Country
	case Bio:
		return &p.Bio
	case Org:
		return &p.Org
	case Size:
		return &p.Size
	case Email:
		return &p.Email
	case Avatar:
		return &p.Avatar
	case Twitter:
		return &p.Twitter
	case Secondary:
		return &p.Secondary
	}
	return nil
}

// Get returns a field's value and whether it was provided. Theme is always
// provided, flattened with ThemeDelimiter.
func (p *Proposal) Get(f Field) (string, bool) {
	if f == Theme {
		return p.ThemeString(), true
	}
	s := p.slot(f)
	if s == nil || *s == nil {
		return "", false
	}
	return **s, true
}

// Render returns a field for tabular output, substituting Unknown when absent.
func (p *Proposal) Render(f Field) string {
	if v, ok := p.Get(f); ok {
		return v
	}
	return Unknown
}

// ThemeString flattens the sorted theme list.
func (p *Proposal) ThemeString() string {
	return strings.Join(p.Theme, ThemeDelimiter)
}

// SubmittedString formats the submission time in the survey's layout.
func (p *Proposal) SubmittedString() string {
	return p.Submitted.Format(SubmittedLayout)
}
