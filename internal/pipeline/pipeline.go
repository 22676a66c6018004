package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/TobiSchelling/cfpsync/internal/proposal"
	"github.com/TobiSchelling/cfpsync/internal/resource"
	"github.com/TobiSchelling/cfpsync/internal/sheet"
	"github.com/TobiSchelling/cfpsync/internal/survey"
)

// Fetcher retrieves the raw survey payload.
type Fetcher interface {
	Fetch(ctx context.Context, q survey.Query) (*survey.Payload, error)
}

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a sync run.
type Result struct {
	RunID   string
	Steps   []StepResult
	Plan    *sheet.Plan
	Written int
}

// Err returns the first step error, if any.
func (r *Result) Err() error {
	for _, s := range r.Steps {
		if s.Err != nil {
			return fmt.Errorf("%s: %w", s.Name, s.Err)
		}
	}
	return nil
}

// Pipeline runs the fetch, normalize, read, plan and append sync.
type Pipeline struct {
	source     Fetcher
	normalizer *proposal.Normalizer
	table      sheet.Table
	verify     bool
	cols       []resource.Column
	runID      string
	log        *log.Logger
}

// New creates a sync pipeline writing the session view into table.
func New(source Fetcher, normalizer *proposal.Normalizer, table sheet.Table, verify bool) *Pipeline {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	runID := id.String()
	return &Pipeline{
		source:     source,
		normalizer: normalizer,
		table:      table,
		verify:     verify,
		cols:       resource.SessionColumns(),
		runID:      runID,
		log:        log.New(log.Writer(), "["+runID[:13]+"] ", log.Flags()),
	}
}

// RunID identifies this run in the logs.
func (p *Pipeline) RunID() string { return p.runID }

// Run executes the full sync, stopping at the first failing step.
func (p *Pipeline) Run(ctx context.Context) *Result {
	r := p.plan(ctx, false)
	if r.Plan == nil {
		return r
	}

	step := p.runAppend(ctx, r)
	r.Steps = append(r.Steps, step)
	return r
}

// DryRun computes the plan without writing to the table.
func (p *Pipeline) DryRun(ctx context.Context) *Result {
	return p.plan(ctx, true)
}

func (p *Pipeline) plan(ctx context.Context, dry bool) *Result {
	r := &Result{RunID: p.runID}
	prefix := ""
	if dry {
		prefix = "[dry-run] "
	}

	// Step 1: Fetch
	p.log.Println("Step 1/5: Fetching survey responses...")
	payload, err := p.source.Fetch(ctx, survey.Query{})
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Fetch", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("%sFetched %d responses", prefix, len(payload.Responses)),
	})

	// Step 2: Normalize
	p.log.Println("Step 2/5: Normalizing proposals...")
	local, err := p.normalizer.NormalizeAscending(payload)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Normalize", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Normalize",
		Summary: fmt.Sprintf("%s%d proposals", prefix, local.Len()),
	})

	// Step 3: Read table
	p.log.Println("Step 3/5: Reading remote table...")
	state, err := p.table.Read(ctx)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Read", Err: err})
		return r
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Read",
		Summary: fmt.Sprintf("%s%d rows already in table", prefix, len(state.Rows)),
	})

	// Step 4: Plan
	p.log.Println("Step 4/5: Planning append...")
	plan, err := sheet.PlanAppend(state, local, sheet.PlanOptions{
		Verify: p.verify,
		Header: resource.Header(p.cols),
	})
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Plan", Err: err})
		return r
	}
	r.Plan = plan
	summary := fmt.Sprintf("%sTable is up to date", prefix)
	if !plan.Empty() {
		summary = fmt.Sprintf("%sWould write %d records at %s", prefix, len(plan.Records), plan.Start)
		if plan.WriteHeader {
			summary += " with header"
		}
	}
	r.Steps = append(r.Steps, StepResult{Name: "Plan", Summary: summary})
	return r
}

func (p *Pipeline) runAppend(ctx context.Context, r *Result) StepResult {
	p.log.Println("Step 5/5: Appending to table...")
	n, err := sheet.Apply(ctx, p.table, r.Plan, p.cols)
	if err != nil {
		return StepResult{Name: "Append", Err: err}
	}
	r.Written = n
	if n == 0 {
		return StepResult{Name: "Append", Summary: "Nothing to append"}
	}
	p.log.Printf("Appended %d records starting at %s", n, r.Plan.Start)
	return StepResult{
		Name:    "Append",
		Summary: fmt.Sprintf("Appended %d records at %s", n, r.Plan.Start),
	}
}
