package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/cfpsync/internal/proposal"
)

func str(s string) *string { return &s }

func sample() []proposal.Proposal {
	return []proposal.Proposal{
		{
			ID:         "bbb+2017-01-0518:30:00",
			Submitted:  time.Date(2017, 1, 5, 18, 30, 0, 0, time.UTC),
			Theme:      []string{"Cloud", "Security"},
			Title:      str("Kernel tricks"),
			Type:       str("talk"),
			Difficulty: str("advanced"),
			Abstract:   str(`Deep dive, with "quotes"`),
			Agreement:  str("yes"),
			Name:       str("John Roe"),
			Country:    str("CZ"),
			Org:        str("Red Hat"),
			Email:      str("john@example.com"),
			Twitter:    str("jroe"),
		},
		{
			ID:        "aaa+2017-01-0209:00:00",
			Submitted: time.Date(2017, 1, 2, 9, 0, 0, 0, time.UTC),
			Theme:     []string{},
			Title:     str("Containers 101"),
			Name:      str("Jane Doe"),
		},
	}
}

func TestWriteCSVGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "proposals_csv", buf.Bytes())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "bbb+2017-01-0518:30:00", got[0]["id"])
	assert.Equal(t, "2017-01-05 18:30:00", got[0]["submitted"])
	assert.Equal(t, []any{"Cloud", "Security"}, got[0]["theme"])
	assert.Equal(t, "jroe", got[0]["twitter"])

	assert.Equal(t, []any{}, got[1]["theme"])
	_, hasEmail := got[1]["email"]
	assert.False(t, hasEmail, "unanswered fields are omitted")

	// Keys are emitted sorted.
	out := buf.String()
	assert.Less(t, strings.Index(out, `"abstract"`), strings.Index(out, `"title"`))
}

func TestWriteHTMLRendersMarkdown(t *testing.T) {
	records := sample()
	records[1].Abstract = str("Intro to **containers**\n\n- namespaces\n- cgroups")

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, records))
	out := buf.String()

	assert.Contains(t, out, "<title>Proposals (2)</title>")
	assert.Contains(t, out, "<strong>containers</strong>")
	assert.Contains(t, out, "<li>namespaces</li>")
	assert.Contains(t, out, "John Roe (@jroe)")
	assert.Contains(t, out, `<span class="theme">Security</span>`)
	// Title text is escaped, abstract HTML is not double-escaped.
	assert.NotContains(t, out, "&lt;strong&gt;")
}

func TestWriteHTMLMissingAbstract(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sample()[1:]))
	assert.Contains(t, buf.String(), "<em>UNKNOWN</em>")
}

func TestShow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Show(&buf, sample()[:1], false))
	out := buf.String()

	assert.Contains(t, out, "Title:      Kernel tricks\n")
	assert.Contains(t, out, "Speaker:    John Roe (@jroe)\n")
	assert.Contains(t, out, "Theme:      Cloud; Security\n")
	assert.Contains(t, out, "Abstract:\n\nDeep dive")
	assert.Contains(t, out, strings.Repeat("-", 79))
}

func TestShowSummaryOmitsAbstract(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Show(&buf, sample(), true))
	out := buf.String()

	assert.NotContains(t, out, "Abstract:")
	assert.Contains(t, out, "Speaker:    Jane Doe\n")
	assert.Contains(t, out, "Email:      UNKNOWN\n")
	assert.Equal(t, 2, strings.Count(out, strings.Repeat("-", 79)))
}

func TestSummarize(t *testing.T) {
	records := sample()
	records[0].Secondary = str("Alice")
	records = append(records, proposal.Proposal{
		ID:    "ccc+2017-01-0600:00:00",
		Theme: []string{"Cloud"},
		Type:  str("talk"),
		Org:   str("Red Hat"),
	})

	s := Summarize(records)
	assert.Equal(t, 3, s.Proposals)
	assert.Equal(t, 4, s.Speakers)

	require.Len(t, s.Session, 3)
	assert.Equal(t, proposal.Type, s.Session[0].Field)
	assert.Equal(t, []Count{{"talk", 2}, {"UNKNOWN", 1}}, s.Session[0].Counts)
	assert.Equal(t, []Count{{"Cloud", 2}, {"Security", 1}, {"UNKNOWN", 1}}, s.Session[1].Counts)

	require.Len(t, s.Speaker, 2)
	assert.Equal(t, []Count{{"Red Hat", 2}, {"UNKNOWN", 1}}, s.Speaker[0].Counts)
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStats(&buf, Summarize(sample())))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Sessions: 2\nSpeakers: 2\n"))
	assert.Contains(t, out, "  difficulty (2 distinct)\n")
	assert.Contains(t, out, "       1  advanced\n")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("html")
	require.NoError(t, err)
	assert.Equal(t, HTML, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}
