package output

import "io"

// Format selects the CLI output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formatter renders a value to a writer in one encoding.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the formatter for a format. Unknown formats
// render as a table.
func NewFormatter(format Format, wide bool) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{Wide: wide}
	}
}
