package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/cfpsync/internal/proposal"
	"github.com/TobiSchelling/cfpsync/internal/resource"
)

//go:embed templates/digest.html
var templateFS embed.FS

var md = goldmark.New()

var digest = template.Must(template.New("digest.html").Funcs(template.FuncMap{
	"markdown": renderMarkdown,
	"render": func(p proposal.Proposal, f string) string {
		return p.Render(proposal.Field(f))
	},
	"speaker": func(p proposal.Proposal) string {
		return resource.ProjectSpeakers([]proposal.Proposal{p})[0].DisplayName()
	},
}).ParseFS(templateFS, "templates/digest.html"))

type digestData struct {
	Count     int
	Proposals []proposal.Proposal
}

// WriteHTML writes a self-contained review page. Abstracts are rendered
// from Markdown.
func WriteHTML(w io.Writer, records []proposal.Proposal) error {
	data := digestData{Count: len(records), Proposals: records}
	if err := digest.Execute(w, data); err != nil {
		return fmt.Errorf("rendering digest: %w", err)
	}
	return nil
}

func renderMarkdown(p proposal.Proposal) template.HTML {
	if p.Abstract == nil {
		return template.HTML("<p><em>" + proposal.Unknown + "</em></p>")
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(*p.Abstract), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(*p.Abstract))
	}
	return template.HTML(buf.String()) //nolint: gosec
}
