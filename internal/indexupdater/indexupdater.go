// Package indexupdater regenerates the navigation table body of the index
// topic from the rows the executor produced and pushes it back to the forum,
// unless the run is in draft mode.
package indexupdater

import (
	"context"
	"fmt"

	"github.com/canonical/upload-charm-docs/internal/forum"
	"github.com/canonical/upload-charm-docs/internal/table"
)

// Update rebuilds the index body from preamble and rows and, unless
// draftMode is set, pushes it to indexURL. It returns the body that was (or
// would have been) written, so callers can log or inspect it either way.
// Under draft mode no forum-client call is made at all: the whole index
// update step is itself a mutation.
func Update(ctx context.Context, client forum.Client, indexURL, preamble string, rows []table.Row, draftMode bool) (string, error) {
	body := table.Emit(preamble, rows)

	if draftMode {
		return body, nil
	}

	if _, err := client.UpdateTopic(ctx, indexURL, body, "content updated"); err != nil {
		return body, fmt.Errorf("failed to update index topic %q: %w", indexURL, err)
	}
	return body, nil
}
