package core

// parser.go turns a delimited collection export into Records.
//
// The format is deliberately small and lenient:
//
//   - Lines are split on '\n'. The first line is the header; it is split on
//     every comma (quotes are not interpreted there) and each name is trimmed.
//   - Whitespace-only data lines are skipped.
//   - A data line is scanned once, left to right. '"' toggles quoted mode and
//     is never copied into the value, so an escaped quote ("") produces no
//     character at all. A ',' outside quoted mode ends the current field.
//   - Every field is trimmed. Trimming also removes a trailing '\r', so
//     CRLF exports parse the same as LF exports.
//   - A line whose field count differs from the header is dropped without an
//     error and without being counted.
//
// encoding/csv is not used because it rejects bare quotes and reports
// field-count mismatches as errors, both of which this format tolerates.

import (
	"strings"
	"unicode"
)

// Parse converts raw export text into records in input order.
// Input consisting of only a header, or no content, yields an empty slice.
func Parse(text string) []Record {
	_, records := ParseTable(text)
	return records
}

// ParseTable is Parse that also returns the header row.
func ParseTable(text string) (Header, []Record) {
	lines := strings.Split(text, "\n")

	header := parseHeader(lines[0])
	records := make([]Record, 0, len(lines)-1)

	for _, line := range lines[1:] {
		if trimField(line) == "" {
			continue
		}

		values := splitLine(line)
		if len(values) != len(header) {
			continue
		}

		rec := make(Record, len(header))
		for i, name := range header {
			rec[name] = values[i]
		}
		records = append(records, rec)
	}

	return header, records
}

// parseHeader splits the header line on every comma and trims each name.
func parseHeader(line string) Header {
	parts := strings.Split(line, ",")
	header := make(Header, len(parts))
	for i, p := range parts {
		header[i] = trimField(p)
	}
	return header
}

// splitLine scans one data line into trimmed field values.
func splitLine(line string) []string {
	var (
		values   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			values = append(values, trimField(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	values = append(values, trimField(current.String()))

	return values
}

// trimField trims Unicode whitespace and the byte order mark.
func trimField(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
