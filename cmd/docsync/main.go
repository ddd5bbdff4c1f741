// Command docsync reconciles a charm repository's local documentation tree
// with its Discourse-hosted navigation index, or migrates an existing
// forum-hosted tree back onto disk when none exists yet.
package main

import (
	"fmt"
	"os"

	"github.com/canonical/upload-charm-docs/cmd/docsync/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
