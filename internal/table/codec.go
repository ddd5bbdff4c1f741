package table

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/canonical/upload-charm-docs/internal/errs"
)

// Marker is the literal line that begins the engine-authored navigation
// table. Everything before its first occurrence is the human-authored
// preamble and is preserved verbatim across reconciliations.
const Marker = "# Navigation"

const tableHeader = "| Level | Path | Navlink |"
const tableSeparator = "| -- | -- | -- |"

// rowPattern matches a single table row: "| <level> | <path> | [<title>](<link>) |".
// The link group may be empty, indicating a group row.
var rowPattern = regexp.MustCompile(`^\|\s*(\S+)\s*\|\s*([^|]+?)\s*\|\s*\[([^\]]*)\]\(([^)]*)\)\s*\|\s*$`)

// Parse splits the full text of an index topic into its preamble (everything
// before the first occurrence of the marker; the marker line itself is not
// part of it) and the ordered rows found after it. Lines after the marker that do not match the row
// grammar (the canonical header/separator, blank lines) are tolerated and
// skipped.
func Parse(text string) (preamble string, rows []Row, err error) {
	idx := strings.Index(text, Marker)
	if idx == -1 {
		// No table yet: the whole text is preamble, no rows.
		return text, nil, nil
	}

	preamble = text[:idx]
	rest := text[idx:]

	lines := strings.Split(rest, "\n")
	for _, line := range lines[1:] { // skip the marker line itself
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == tableHeader || trimmed == tableSeparator {
			continue
		}

		match := rowPattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}

		level, convErr := strconv.Atoi(strings.TrimSpace(match[1]))
		if convErr != nil || level <= 0 {
			return "", nil, errs.WrapInputError(
				fmt.Sprintf("malformed table: row %q has a non-positive or non-numeric level", trimmed),
				convErr,
			)
		}

		path := strings.TrimSpace(match[2])
		title := match[3]
		link := strings.TrimSpace(match[4])

		row := Row{Level: level, Path: path, Navlink: Navlink{Title: title}}
		if link != "" {
			row.Navlink.Link = NewLink(link)
		}
		rows = append(rows, row)
	}

	return preamble, rows, nil
}

// Emit renders preamble followed by the marker, canonical header and
// separator, and one row per input row, in order. A non-empty preamble that
// does not end in a newline gets one appended before the marker. For a
// preamble that is empty or already ends in a newline, Emit is the inverse
// of Parse: Parse(Emit(preamble, rows)) == (preamble, rows).
func Emit(preamble string, rows []Row) string {
	var b strings.Builder
	b.WriteString(preamble)
	if !strings.HasSuffix(preamble, "\n") && preamble != "" {
		b.WriteString("\n")
	}
	b.WriteString(Marker)
	b.WriteString("\n")
	b.WriteString(tableHeader)
	b.WriteString("\n")
	b.WriteString(tableSeparator)
	b.WriteString("\n")

	for _, row := range rows {
		link := ""
		if row.Navlink.Link != nil {
			link = *row.Navlink.Link
		}
		fmt.Fprintf(&b, "| %d | %s | [%s](%s) |\n", row.Level, row.Path, row.Navlink.Title, link)
	}

	return b.String()
}
