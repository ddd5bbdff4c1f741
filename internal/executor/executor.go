// Package executor drives the forum client according to an ordered action
// plan, honoring draft-mode and delete-pages policy, and produces one
// append-only report per action plus the rows that should be written back
// to the index.
package executor

import (
	"context"
	"fmt"
	"log"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/canonical/upload-charm-docs/internal/action"
	"github.com/canonical/upload-charm-docs/internal/errs"
	"github.com/canonical/upload-charm-docs/internal/forum"
	"github.com/canonical/upload-charm-docs/internal/table"
)

// Config controls how actions are executed.
type Config struct {
	DraftMode   bool
	DeletePages bool
}

// draftLink builds a syntactically-valid-but-unreachable placeholder link
// for a CREATE doc action under draft mode, so a dry run never has to
// special-case an empty link for a would-be document.
func draftLink() string {
	return "/t/draft/" + uuid.NewString()
}

// Run executes actions in order and returns one report per action plus the
// rows reflecting post-execution state, ready to hand to the index updater.
// It never short-circuits on a FAIL: a client error for one action is
// captured as a FAIL report and execution continues. An ActionError (a
// content-changed update with nil new content) is fatal and aborts the run
// immediately.
func Run(ctx context.Context, client forum.Client, actions []action.Action, cfg Config) ([]action.Report, []table.Row, error) {
	var reports []action.Report
	var rows []table.Row

	for _, act := range actions {
		switch act.Kind {
		case action.Create:
			report, row := runCreate(ctx, client, act, cfg)
			reports = append(reports, report)
			if row != nil {
				rows = append(rows, *row)
			}

		case action.Update:
			report, row, err := runUpdate(ctx, client, act, cfg)
			if err != nil {
				return reports, rows, err
			}
			reports = append(reports, report)
			if row != nil {
				rows = append(rows, *row)
			}

		case action.Delete:
			report, keep := runDelete(ctx, client, act, cfg)
			reports = append(reports, report)
			if keep {
				rows = append(rows, act.RemoteRow)
			}

		case action.Noop:
			reports = append(reports, action.Report{
				Row:      &act.Row,
				Location: location(act.Row),
				Result:   action.Success,
				Reason:   "noop",
			})
			rows = append(rows, act.Row)
		}
	}

	log.Printf("[executor] %s", Summarize(reports))
	return reports, rows, nil
}

// Summarize renders a one-line outcome count for a completed run, e.g.
// "12 succeeded, 3 skipped, 1 failed".
func Summarize(reports []action.Report) string {
	var success, skipped, failed int
	for _, r := range reports {
		switch r.Result {
		case action.Success:
			success++
		case action.Skipped:
			skipped++
		case action.Fail:
			failed++
		}
	}
	return fmt.Sprintf("%s succeeded, %s skipped, %s failed",
		humanize.Comma(int64(success)), humanize.Comma(int64(skipped)), humanize.Comma(int64(failed)))
}

func location(row table.Row) string {
	if row.Navlink.Link != nil {
		return *row.Navlink.Link
	}
	return row.Path
}

func runCreate(ctx context.Context, client forum.Client, act action.Action, cfg Config) (action.Report, *table.Row) {
	isGroup := act.Content == nil
	log.Printf("[action] create path=%q level=%d group=%t draft_mode=%t", act.Path, act.Level, isGroup, cfg.DraftMode)

	if isGroup {
		row := table.Row{Level: act.Level, Path: act.Path, Navlink: table.Navlink{Title: act.Title}}
		result := action.Success
		if cfg.DraftMode {
			result = action.Skipped
		}
		return action.Report{Row: &row, Location: act.Path, Result: result}, &row
	}

	if cfg.DraftMode {
		link := draftLink()
		row := table.Row{Level: act.Level, Path: act.Path, Navlink: table.Navlink{Title: act.Title, Link: table.NewLink(link)}}
		return action.Report{Row: &row, Location: link, Result: action.Skipped}, &row
	}

	url, err := client.CreateTopic(ctx, act.Title, *act.Content)
	if err != nil {
		return action.Report{Location: act.Path, Result: action.Fail, Reason: err.Error()}, nil
	}
	row := table.Row{Level: act.Level, Path: act.Path, Navlink: table.Navlink{Title: act.Title, Link: table.NewLink(url)}}
	return action.Report{Row: &row, Location: url, Result: action.Success}, &row
}

func runUpdate(ctx context.Context, client forum.Client, act action.Action, cfg Config) (action.Report, *table.Row, error) {
	isGroup := act.OldContent == nil && act.NewContent == nil
	log.Printf("[action] update path=%q level=%d group=%t draft_mode=%t", act.Path, act.Level, isGroup, cfg.DraftMode)

	newRow := table.Row{Level: act.Level, Path: act.Path, Navlink: act.NewNavlink}

	if isGroup {
		// Groups never have a remote topic; the navlink lives only in the index.
		return action.Report{Row: &newRow, Location: act.Path, Result: action.Skipped, Reason: "no remote topic for group"}, &newRow, nil
	}

	titleOnly := act.OldContent != nil && act.NewContent != nil && *act.OldContent == *act.NewContent
	if titleOnly {
		return action.Report{Row: &newRow, Location: location(newRow), Result: action.Skipped, Reason: "title only, index is authoritative for display"}, &newRow, nil
	}

	if cfg.DraftMode {
		return action.Report{Row: &newRow, Location: location(newRow), Result: action.Skipped}, &newRow, nil
	}

	if act.NewContent == nil {
		return action.Report{}, nil, errs.NewActionError(fmt.Sprintf("update for %q has no new content to write", act.Path))
	}

	link := newRow.Navlink.Link
	if link == nil {
		return action.Report{Location: act.Path, Result: action.Fail, Reason: "content changed but row has no link"}, nil, nil
	}

	updatedURL, err := client.UpdateTopic(ctx, *link, *act.NewContent, "")
	if err != nil {
		oldRow := table.Row{Level: act.Level, Path: act.Path, Navlink: act.OldNavlink}
		return action.Report{Row: &oldRow, Location: *link, Result: action.Fail, Reason: err.Error()}, &oldRow, nil
	}
	newRow.Navlink.Link = table.NewLink(updatedURL)
	return action.Report{Row: &newRow, Location: updatedURL, Result: action.Success}, &newRow, nil
}

func runDelete(ctx context.Context, client forum.Client, act action.Action, cfg Config) (action.Report, bool) {
	isGroup := act.RemoteRow.Navlink.Link == nil
	log.Printf("[action] delete path=%q level=%d group=%t draft_mode=%t delete_pages=%t", act.Path, act.Level, isGroup, cfg.DraftMode, cfg.DeletePages)

	if isGroup || cfg.DraftMode || !cfg.DeletePages {
		reason := "group rows are index-only"
		switch {
		case cfg.DraftMode:
			reason = "draft mode"
		case !cfg.DeletePages && !isGroup:
			reason = "delete_pages is false"
		}
		return action.Report{Location: location(act.RemoteRow), Result: action.Skipped, Reason: reason}, false
	}

	link := *act.RemoteRow.Navlink.Link
	_, err := client.DeleteTopic(ctx, link)
	if err != nil {
		return action.Report{Row: &act.RemoteRow, Location: link, Result: action.Fail, Reason: err.Error()}, true
	}
	return action.Report{Location: link, Result: action.Success}, false
}
