// Package walker enumerates a local documentation directory into the same
// row model the table codec produces, so the differ can compare the two
// without caring which side a row came from.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/canonical/upload-charm-docs/internal/table"
)

// GitkeepName is the sentinel empty file that lets an otherwise-empty
// directory survive version control. It is never surfaced as a row.
const GitkeepName = ".gitkeep"

// Row pairs a table row produced by the walker with the local file content
// backing it. Content is nil for group rows and always set for documents; a
// document that cannot be read makes Walk return an error instead.
type Row struct {
	table.Row
	Content *string
}

// Walk traverses root depth-first in deterministic sorted order and returns
// one Row per directory (group) and per .md file (document) found. An empty
// directory yields only its group row: its gitkeep marker exists purely to
// keep the directory in version control and is never turned into a row.
func Walk(root string) ([]Row, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat docs root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docs root %q is not a directory", root)
	}

	return walkDir(root, "", 1)
}

func walkDir(dir, parentPath string, level int) ([]Row, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %q: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var rows []Row
	for _, entry := range entries {
		name := entry.Name()
		if name == GitkeepName {
			continue
		}

		entryPath := filepath.Join(dir, name)

		if entry.IsDir() {
			path := joinPath(parentPath, name)
			rows = append(rows, Row{Row: table.Row{
				Level:   level,
				Path:    path,
				Navlink: table.Navlink{Title: titleCase(name)},
			}})

			children, err := walkDir(entryPath, path, level+1)
			if err != nil {
				return nil, err
			}
			rows = append(rows, children...)
			continue
		}

		if !strings.HasSuffix(name, ".md") {
			continue
		}

		stem := strings.TrimSuffix(name, ".md")
		path := joinPath(parentPath, stem)

		content, err := os.ReadFile(entryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read document %q: %w", entryPath, err)
		}
		contentStr := string(content)

		rows = append(rows, Row{
			Row: table.Row{
				Level:   level,
				Path:    path,
				Navlink: table.Navlink{Title: titleCase(stem), Link: nil},
			},
			Content: &contentStr,
		})
	}

	return rows, nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "-" + name
}

// titleCase converts a dash/underscore-separated path token into Title Case
// words, e.g. "how-to-guides" -> "How To Guides".
func titleCase(token string) string {
	words := strings.FieldsFunc(token, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
