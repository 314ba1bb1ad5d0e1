package report

import "strings"

// Escape quotes a field when it contains a comma, a double quote, CR or LF,
// doubling embedded quotes. Every other field is written verbatim.
func Escape(field string) string {
	if !strings.ContainsAny(field, ",\"\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// FormatRow joins escaped fields into one line without the terminator.
func FormatRow(row []string) string {
	var b strings.Builder
	for i, f := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Escape(f))
	}
	return b.String()
}
