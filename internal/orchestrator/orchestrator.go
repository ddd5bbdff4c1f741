// Package orchestrator wires the rest of the engine together: it decides
// between reconcile and migrate based on local docs tree presence, and
// returns one action report per affected location.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/canonical/upload-charm-docs/internal/action"
	"github.com/canonical/upload-charm-docs/internal/config"
	"github.com/canonical/upload-charm-docs/internal/differ"
	"github.com/canonical/upload-charm-docs/internal/errs"
	"github.com/canonical/upload-charm-docs/internal/executor"
	"github.com/canonical/upload-charm-docs/internal/forum"
	"github.com/canonical/upload-charm-docs/internal/indexupdater"
	"github.com/canonical/upload-charm-docs/internal/migrator"
	"github.com/canonical/upload-charm-docs/internal/table"
	"github.com/canonical/upload-charm-docs/internal/validate"
	"github.com/canonical/upload-charm-docs/internal/vcs"
	"github.com/canonical/upload-charm-docs/internal/walker"
)

// UserInputs carries the CLI-configurable parts of a run.
type UserInputs struct {
	DryRun            bool
	DeletePages       bool
	BranchName        string
	CreateIfNotExists bool
}

// indexPlaceholderContent seeds a freshly created index topic until the
// next reconcile run populates it with the charm's actual documentation
// tree.
const indexPlaceholderContent = "Placeholder for the charm documentation index. Content will be populated on the next run."

// VCSHost is the subset of internal/vcs a migrate run needs; Host is the
// concrete implementation and this indirection exists purely so tests can
// stub it out.
type VCSHost interface {
	CommitAndPush(ctx context.Context, changedFiles []string, now time.Time) (branchName, commitSHA string, err error)
	OpenPullRequest(ctx context.Context, branchName, commitSHA, title, body string) (vcs.PullRequestResult, error)
}

// Run loads metadata.yaml at basePath, checks whether basePath/docs exists,
// and dispatches to the reconcile or migrate path. It returns one report
// per touched location, keyed by the report's location: a topic URL, or the
// table path for a group row (reconcile); each written file's docs-relative
// path plus one entry for the pull request URL (migrate).
func Run(ctx context.Context, basePath string, client forum.Client, vcsHost VCSHost, inputs UserInputs) (map[string]action.Report, error) {
	meta, err := config.LoadMetadata(filepath.Join(basePath, "metadata.yaml"), inputs.CreateIfNotExists)
	if err != nil {
		return nil, err
	}

	if meta.Docs == "" {
		indexURL, err := createIndex(ctx, client, meta.Name)
		if err != nil {
			return nil, err
		}
		return map[string]action.Report{
			indexURL: {Location: indexURL, Result: action.Success, Reason: "index topic created"},
		}, nil
	}

	docsRoot := filepath.Join(basePath, "docs")
	if _, statErr := os.Stat(docsRoot); statErr == nil {
		return reconcile(ctx, client, meta.Docs, docsRoot, inputs)
	} else if !os.IsNotExist(statErr) {
		return nil, errs.WrapServerError(fmt.Sprintf("failed to stat docs root %q", docsRoot), statErr)
	}

	return migrate(ctx, client, vcsHost, meta.Docs, docsRoot, inputs)
}

// createIndex creates a new index topic titled from the charm name, for a
// charm that has never been synced to the forum before.
func createIndex(ctx context.Context, client forum.Client, charmName string) (string, error) {
	title := titleFromCharmName(charmName)
	url, err := client.CreateTopic(ctx, title, indexPlaceholderContent)
	if err != nil {
		return "", errs.WrapServerError(fmt.Sprintf("index page creation failed for charm %q", charmName), err)
	}
	return url, nil
}

// titleFromCharmName renders a dash/underscore-separated charm name as a
// Title Case topic title, e.g. "my-charm" -> "My Charm".
func titleFromCharmName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func reconcile(ctx context.Context, client forum.Client, indexURL, docsRoot string, inputs UserInputs) (map[string]action.Report, error) {
	indexContent, err := client.RetrieveTopic(ctx, indexURL)
	if err != nil {
		return nil, errs.WrapServerError(fmt.Sprintf("failed to retrieve index topic %q", indexURL), err)
	}

	preamble, remoteRows, err := table.Parse(indexContent)
	if err != nil {
		return nil, err
	}
	if err := validate.Levels(remoteRows); err != nil {
		return nil, err
	}

	localRows, err := walker.Walk(docsRoot)
	if err != nil {
		return nil, err
	}
	walkedRows := make([]table.Row, len(localRows))
	for i, r := range localRows {
		walkedRows[i] = r.Row
	}
	if err := validate.Levels(walkedRows); err != nil {
		return nil, err
	}

	actions, err := differ.Diff(ctx, client, localRows, remoteRows)
	if err != nil {
		return nil, err
	}

	reports, resultRows, err := executor.Run(ctx, client, actions, executor.Config{
		DraftMode:   inputs.DryRun,
		DeletePages: inputs.DeletePages,
	})
	if err != nil {
		return nil, err
	}

	if _, err := indexupdater.Update(ctx, client, indexURL, preamble, resultRows, inputs.DryRun); err != nil {
		return nil, err
	}

	return reportsByLocation(reports), nil
}

func migrate(ctx context.Context, client forum.Client, vcsHost VCSHost, indexURL, docsRoot string, inputs UserInputs) (map[string]action.Report, error) {
	indexContent, err := client.RetrieveTopic(ctx, indexURL)
	if err != nil {
		return nil, errs.WrapServerError(fmt.Sprintf("failed to retrieve index topic %q", indexURL), err)
	}

	preamble, remoteRows, err := table.Parse(indexContent)
	if err != nil {
		return nil, err
	}
	if err := validate.Levels(remoteRows); err != nil {
		return nil, err
	}

	metas, err := migrator.Plan(preamble, remoteRows)
	if err != nil {
		return nil, err
	}

	reports, err := migrator.Execute(ctx, client, docsRoot, metas)
	if err != nil {
		return nil, err
	}

	changedFiles := make([]string, 0, len(metas))
	for _, m := range metas {
		changedFiles = append(changedFiles, m.Path)
	}

	branchName, commitSHA, err := vcsHost.CommitAndPush(ctx, changedFiles, time.Now())
	if err != nil {
		return nil, err
	}
	pr, err := vcsHost.OpenPullRequest(ctx, branchName, commitSHA, "Migrate documentation from forum", "")
	if err != nil {
		return nil, err
	}

	result := reportsByLocation(reports)
	result[pr.URL] = action.Report{Location: pr.URL, Result: action.Success, Reason: "pull request opened"}
	return result, nil
}

func reportsByLocation(reports []action.Report) map[string]action.Report {
	out := make(map[string]action.Report, len(reports))
	for _, r := range reports {
		out[r.Location] = r
	}
	return out
}
