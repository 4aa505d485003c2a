package presentation

import (
	"encoding/json"
	"io"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatEntries formats a list of entries as JSON
func (f *Formatter) FormatEntries(entries []EntryDTO) error {
	return f.encode(entries)
}

// FormatProblems formats registry:check findings as JSON
func (f *Formatter) FormatProblems(problems []ProblemDTO) error {
	if problems == nil {
		problems = []ProblemDTO{}
	}
	return f.encode(problems)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
