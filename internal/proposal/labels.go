package proposal

// LabelTable rewrites known synonyms of categorical answers to a canonical
// label, keyed by field then raw value.
type LabelTable map[Field]map[string]string

// NewLabelTable builds a LabelTable from config-shaped data.
func NewLabelTable(raw map[string]map[string]string) LabelTable {
	t := make(LabelTable, len(raw))
	for field, values := range raw {
		t[Field(field)] = values
	}
	return t
}

// Apply returns the canonical label for value, or value unchanged.
func (t LabelTable) Apply(f Field, value string) string {
	if canonical, ok := t[f][value]; ok {
		return canonical
	}
	return value
}
