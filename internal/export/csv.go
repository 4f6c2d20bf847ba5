package export

import "strings"

const utf8BOM = "\ufeff"

// ToCSV renders rows behind a header line. The output starts with a UTF-8
// byte order mark so spreadsheet apps pick the right encoding, and lines are
// joined with "\n" with no trailing newline.
func ToCSV(rows []Row) string {
	var b strings.Builder
	b.WriteString(utf8BOM)
	writeCSVLine(&b, Headers)
	for _, r := range rows {
		b.WriteByte('\n')
		writeCSVLine(&b, r.fields())
	}
	return b.String()
}

func writeCSVLine(b *strings.Builder, values []string) {
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSV(v))
	}
}

// escapeCSV doubles quotes and wraps the value only when it contains a
// quote, comma or newline.
func escapeCSV(v string) string {
	if !strings.ContainsAny(v, "\",\n") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
