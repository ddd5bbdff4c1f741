// Package differ pairs local rows with remote rows by table-path identity
// and emits the ordered plan of typed actions the executor will run.
package differ

import (
	"context"
	"fmt"

	"github.com/canonical/upload-charm-docs/internal/action"
	"github.com/canonical/upload-charm-docs/internal/forum"
	"github.com/canonical/upload-charm-docs/internal/table"
	"github.com/canonical/upload-charm-docs/internal/walker"
)

// Diff builds the ordered action plan to reconcile local against remote.
// Matched document rows whose remote side has a link are compared against
// their live remote content (fetched via client.RetrieveTopic) to decide
// between NOOP and UPDATE. Actions follow local traversal order; any
// remote-only rows are appended as DELETEs in reverse remote order, so
// nested deletions happen before their parent group's deletion.
func Diff(ctx context.Context, client forum.Client, local []walker.Row, remote []table.Row) ([]action.Action, error) {
	remoteByPath := make(map[string]table.Row, len(remote))
	for _, row := range remote {
		remoteByPath[row.Path] = row
	}
	visited := make(map[string]bool, len(remote))

	var actions []action.Action

	for _, localRow := range local {
		remoteRow, ok := remoteByPath[localRow.Path]
		if !ok {
			actions = append(actions, action.NewCreate(localRow.Level, localRow.Path, localRow.Navlink.Title, localRow.Content))
			continue
		}
		visited[localRow.Path] = true

		act, err := diffMatched(ctx, client, localRow, remoteRow)
		if err != nil {
			return nil, err
		}
		actions = append(actions, act)
	}

	for i := len(remote) - 1; i >= 0; i-- {
		row := remote[i]
		if !visited[row.Path] {
			actions = append(actions, action.NewDelete(row))
		}
	}

	return actions, nil
}

func diffMatched(ctx context.Context, client forum.Client, local walker.Row, remote table.Row) (action.Action, error) {
	isDocument := local.Content != nil
	levelChanged := local.Level != remote.Level
	titleChanged := local.Navlink.Title != remote.Navlink.Title

	if !isDocument {
		newNav := table.Navlink{Title: local.Navlink.Title}
		if !titleChanged && !levelChanged {
			return action.NewNoop(table.Row{Level: local.Level, Path: local.Path, Navlink: newNav}, nil), nil
		}
		return action.NewUpdate(local.Level, local.Path, remote.Navlink, newNav, nil, nil), nil
	}

	var oldContent *string
	if remote.Navlink.Link != nil {
		content, err := client.RetrieveTopic(ctx, *remote.Navlink.Link)
		if err != nil {
			return action.Action{}, fmt.Errorf("failed to retrieve remote content for %q: %w", local.Path, err)
		}
		oldContent = &content
	}

	contentChanged := oldContent == nil || *oldContent != *local.Content
	newNav := table.Navlink{Title: local.Navlink.Title, Link: remote.Navlink.Link}

	if !titleChanged && !levelChanged && !contentChanged {
		return action.NewNoop(table.Row{Level: local.Level, Path: local.Path, Navlink: newNav}, local.Content), nil
	}

	return action.NewUpdate(local.Level, local.Path, remote.Navlink, newNav, oldContent, local.Content), nil
}
