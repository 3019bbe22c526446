package extractor

// Step is the outcome of one strategy during an extraction.
type Step struct {
	Field    string `json:"field"`
	Strategy string `json:"strategy"`
	Value    string `json:"value,omitempty"`
	Chosen   bool   `json:"chosen,omitempty"`
}

// Trace collects the steps of one extraction. A nil *Trace records nothing.
type Trace struct {
	JSONLDBlocks      int    `json:"jsonLdBlocks"`
	HasStructuredData bool   `json:"hasStructuredData"`
	Steps             []Step `json:"steps"`
}

func (t *Trace) record(field, strategy, value string, chosen bool) {
	if t == nil {
		return
	}
	t.Steps = append(t.Steps, Step{Field: field, Strategy: strategy, Value: value, Chosen: chosen})
}
