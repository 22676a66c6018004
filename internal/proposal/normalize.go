package proposal

import (
	"fmt"
	"log"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/TobiSchelling/cfpsync/internal/survey"
)

// SchemaDriftError reports an answer whose question cannot be mapped to a
// field. The form changed upstream and QuestionAlias needs updating.
type SchemaDriftError struct {
	ResponseID string
	QuestionID string
	Question   string
}

func (e *SchemaDriftError) Error() string {
	if e.Question == "" {
		return fmt.Sprintf("response %s: answer to unknown question id %q", e.ResponseID, e.QuestionID)
	}
	return fmt.Sprintf("response %s: question %q (%s) has no field alias", e.ResponseID, e.Question, e.QuestionID)
}

// TimestampError reports a submission date that does not parse.
type TimestampError struct {
	ResponseID string
	Value      string
	Err        error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("response %s: malformed submission date %q: %v", e.ResponseID, e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error { return e.Err }

// Normalizer turns raw survey payloads into Proposals.
type Normalizer struct {
	Labels LabelTable
}

// NewNormalizer creates a Normalizer with an optional label table.
func NewNormalizer(labels LabelTable) *Normalizer {
	return &Normalizer{Labels: labels}
}

// Normalize returns the payload's proposals, most recent first.
func (n *Normalizer) Normalize(p *survey.Payload) ([]Proposal, error) {
	asc, err := n.NormalizeAscending(p)
	if err != nil {
		return nil, err
	}
	return asc.Descending(), nil
}

// NormalizeAscending returns the payload's proposals oldest first, the order
// the sync planner requires.
func (n *Normalizer) NormalizeAscending(p *survey.Payload) (Ascending, error) {
	questions := make(map[string]string, len(p.Questions))
	for _, q := range p.Questions {
		questions[q.ID] = q.Question
	}

	seen := make(map[string]struct{}, len(p.Responses))
	records := make([]Proposal, 0, len(p.Responses))
	for _, r := range p.Responses {
		rec, err := n.normalizeResponse(r, questions)
		if err != nil {
			return Ascending{}, err
		}
		if _, dup := seen[rec.ID]; dup {
			log.Printf("Skipping duplicate submission %s", rec.ID)
			continue
		}
		seen[rec.ID] = struct{}{}
		records = append(records, rec)
	}

	return SortAscending(records), nil
}

func (n *Normalizer) normalizeResponse(r survey.Response, questions map[string]string) (Proposal, error) {
	dt := r.Metadata.DateSubmit
	id := stripSpace(r.Metadata.NetworkID + "+" + dt)

	submitted, err := time.Parse(SubmittedLayout, strings.TrimSpace(dt))
	if err != nil {
		return Proposal{}, &TimestampError{ResponseID: id, Value: dt, Err: err}
	}

	rec := Proposal{ID: id, Submitted: submitted, Theme: []string{}}

	// Map iteration order is random; visit answers in a fixed order so
	// repeated runs produce identical records.
	qids := make([]string, 0, len(r.Answers))
	for qid := range r.Answers {
		qids = append(qids, qid)
	}
	sort.Strings(qids)

	for _, qid := range qids {
		value := norm.NFC.String(strings.TrimSpace(r.Answers[qid]))

		question, ok := questions[qid]
		if !ok {
			return Proposal{}, &SchemaDriftError{ResponseID: id, QuestionID: qid}
		}
		field, ok := LookupAlias(question)
		if !ok {
			return Proposal{}, &SchemaDriftError{ResponseID: id, QuestionID: qid, Question: question}
		}

		switch field {
		case Theme:
			rec.Theme = append(rec.Theme, value)
		case Twitter:
			if handle := CleanTwitter(value); handle != "" {
				rec.Twitter = &handle
			}
		default:
			v := n.Labels.Apply(field, value)
			*rec.slot(field) = &v
		}
	}

	rec.Theme = sortUnique(rec.Theme)
	return rec, nil
}

func sortUnique(values []string) []string {
	slices.Sort(values)
	return slices.Compact(values)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
