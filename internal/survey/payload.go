package survey

// Question is one entry of the form's question list. Repeatable choices
// (such as multi-select themes) share the same question text under
// different ids.
type Question struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

// Metadata holds per-submission details supplied by the survey service.
type Metadata struct {
	DateSubmit string `json:"date_submit"`
	NetworkID  string `json:"network_id"`
}

// Response is one survey submission.
type Response struct {
	Completed string            `json:"completed"`
	Token     string            `json:"token"`
	Metadata  Metadata          `json:"metadata"`
	Answers   map[string]string `json:"answers"`
}

// Payload is the raw result of a survey query.
type Payload struct {
	Questions []Question `json:"questions"`
	Responses []Response `json:"responses"`
}
