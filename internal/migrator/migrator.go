// Package migrator implements the inverse of the reconciler: given a parsed
// remote navigation table, it reconstructs the local directory tree that
// would have produced it, fetching each document's content from the forum.
package migrator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/canonical/upload-charm-docs/internal/action"
	"github.com/canonical/upload-charm-docs/internal/errs"
	"github.com/canonical/upload-charm-docs/internal/forum"
	"github.com/canonical/upload-charm-docs/internal/table"
)

// Kind discriminates the MigrationFileMeta variants.
type Kind int

const (
	Document Kind = iota
	Gitkeep
	Index
)

// FileMeta is a tagged union describing one file the migration must write.
type FileMeta struct {
	Kind Kind

	// Path is relative to the docs root: a "<dir>/<name>.md" for Document, a
	// "<dir>/.gitkeep" for Gitkeep, or the literal "index.md" for Index.
	Path string

	Link    string    // Document only
	Content string    // Index only
	Row     table.Row // Document and Gitkeep: the remote row this file represents
}

// groupFrame tracks one open group while the stack-based walk reconstructs
// directory structure from the flat, level-tagged row list.
type groupFrame struct {
	row    table.Row
	fsPath string
	hasDoc bool
}

// Plan translates a parsed remote table into the ordered stream of files a
// migration must write: an Index meta for the preamble, one Document meta
// per document row, and a Gitkeep meta for every group that never received
// a descendant document.
func Plan(preamble string, rows []table.Row) ([]FileMeta, error) {
	metas := []FileMeta{{Kind: Index, Path: "index.md", Content: preamble}}

	var stack []groupFrame

	popTo := func(level int) {
		for len(stack) > 0 && stack[len(stack)-1].row.Level >= level {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !top.hasDoc {
				metas = append(metas, FileMeta{Kind: Gitkeep, Path: filepath.Join(top.fsPath, ".gitkeep"), Row: top.row})
			}
			// The popped frame always leaves behind at least one file on
			// disk, its own gitkeep or a descendant's document, so its
			// parent directory is never empty either.
			if len(stack) > 0 {
				stack[len(stack)-1].hasDoc = true
			}
		}
	}

	for _, row := range rows {
		isDocument := row.Navlink.Link != nil

		if !isDocument {
			popTo(row.Level)
			parentTablePath, parentFsPath := "", ""
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				parentTablePath, parentFsPath = top.row.Path, top.fsPath
			}
			leaf := extractName(row.Path, parentTablePath)
			stack = append(stack, groupFrame{row: row, fsPath: filepath.Join(parentFsPath, leaf)})
			continue
		}

		popTo(row.Level)
		parentTablePath, parentFsPath := "", ""
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			parentTablePath, parentFsPath = top.row.Path, top.fsPath
		}
		leaf := extractName(row.Path, parentTablePath)

		for i := range stack {
			stack[i].hasDoc = true
		}

		metas = append(metas, FileMeta{
			Kind: Document,
			Path: filepath.Join(parentFsPath, leaf+".md"),
			Link: *row.Navlink.Link,
			Row:  row,
		})
	}

	popTo(0)

	return metas, nil
}

// extractName strips the parent group's table-path prefix (and its "-"
// separator) from a row's path to recover the local file or directory name.
// If the prefix does not match, the whole path is used verbatim: tolerance
// for an authoring error further upstream, rather than a hard failure.
func extractName(path, parentTablePath string) string {
	if parentTablePath == "" {
		return path
	}
	prefix := parentTablePath + "-"
	if strings.HasPrefix(path, prefix) {
		return strings.TrimPrefix(path, prefix)
	}
	return path
}

// Execute writes every planned file under docsRoot, fetching document
// content from client as it goes. It attempts every item even after a
// failure and returns one report per item; if any item failed it also
// returns a *errs.MigrationError carrying every failure description.
func Execute(ctx context.Context, client forum.Client, docsRoot string, metas []FileMeta) ([]action.Report, error) {
	var reports []action.Report
	var failures []string

	for _, meta := range metas {
		report := executeOne(ctx, client, docsRoot, meta)
		reports = append(reports, report)
		if report.Result == action.Fail {
			failures = append(failures, report.Location+": "+report.Reason)
		}
	}

	if len(failures) > 0 {
		return reports, errs.NewMigrationError(failures)
	}
	return reports, nil
}

func executeOne(ctx context.Context, client forum.Client, docsRoot string, meta FileMeta) action.Report {
	fullPath := filepath.Join(docsRoot, meta.Path)

	switch meta.Kind {
	case Index:
		if err := writeFile(fullPath, meta.Content); err != nil {
			return action.Report{Location: meta.Path, Result: action.Fail, Reason: err.Error()}
		}
		return action.Report{Location: meta.Path, Result: action.Success}

	case Gitkeep:
		if err := writeFile(fullPath, ""); err != nil {
			return action.Report{Row: &meta.Row, Location: meta.Path, Result: action.Fail, Reason: err.Error()}
		}
		return action.Report{Row: &meta.Row, Location: meta.Path, Result: action.Success}

	case Document:
		content, err := client.RetrieveTopic(ctx, meta.Link)
		if err != nil {
			return action.Report{Row: &meta.Row, Location: meta.Path, Result: action.Fail, Reason: err.Error()}
		}
		if err := writeFile(fullPath, content); err != nil {
			return action.Report{Row: &meta.Row, Location: meta.Path, Result: action.Fail, Reason: err.Error()}
		}
		return action.Report{Row: &meta.Row, Location: meta.Path, Result: action.Success}

	default:
		return action.Report{Location: meta.Path, Result: action.Fail, Reason: "unknown migration file kind"}
	}
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
