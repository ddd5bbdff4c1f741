// Package vcs wraps the go-git plumbing needed by a migration run: opening
// the caller's working tree, committing the files the migrator wrote onto a
// dedicated branch, pushing it, and opening a pull request against the
// configured host.
package vcs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/canonical/upload-charm-docs/internal/errs"
)

// PullRequestResult is returned once a migration branch has been pushed and
// a pull request opened against it.
type PullRequestResult struct {
	BranchName string
	CommitSHA  string
	URL        string
}

// Host describes the commit identity, VCS-host API, and branch naming a
// migration run commits and pushes to.
type Host struct {
	RepoPath      string // local working tree, opened with git.PlainOpen
	BranchName    string // empty selects the generated default
	CommitMessage string
	AuthorName    string
	AuthorEmail   string

	// APIBaseURL, APIToken and Repo address the VCS host's REST API to open
	// the pull request, e.g. "https://api.github.com" and "owner/repo".
	APIBaseURL string
	APIToken   string
	Repo       string
	BaseBranch string

	AuthUsername string // HTTP basic/token username for the git push itself
	httpClient   *http.Client
}

// defaultBranchName generates "docsync/migrate-<unix timestamp>" when the
// caller did not configure one. now is injected so callers can make this
// deterministic in tests.
func defaultBranchName(now time.Time) string {
	return fmt.Sprintf("docsync/migrate-%d", now.Unix())
}

// CommitAndPush opens host.RepoPath, checks out (creating if needed) the
// configured or generated branch, stages every path in changedFiles, commits
// and pushes the branch. It returns the branch name and resulting commit SHA.
func (host *Host) CommitAndPush(ctx context.Context, changedFiles []string, now time.Time) (branchName, commitSHA string, err error) {
	repo, err := git.PlainOpen(host.RepoPath)
	if err != nil {
		return "", "", errs.WrapServerError("failed to open migration working tree", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", "", errs.WrapServerError("failed to obtain worktree", err)
	}

	branchName = host.BranchName
	if branchName == "" {
		branchName = defaultBranchName(now)
	}

	branchRef := plumbing.NewBranchReferenceName(branchName)
	checkoutErr := worktree.Checkout(&git.CheckoutOptions{Branch: branchRef, Create: true})
	if checkoutErr != nil {
		// Branch may already exist locally from a prior run; reuse it.
		checkoutErr = worktree.Checkout(&git.CheckoutOptions{Branch: branchRef, Force: true})
	}
	if checkoutErr != nil {
		return "", "", errs.WrapServerError(fmt.Sprintf("failed to checkout branch %q", branchName), checkoutErr)
	}

	for _, path := range changedFiles {
		if _, err := worktree.Add(path); err != nil {
			return "", "", errs.WrapServerError(fmt.Sprintf("failed to stage %q", path), err)
		}
	}

	message := host.CommitMessage
	if message == "" {
		message = "docsync: migrate documentation from forum"
	}

	commit, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  host.AuthorName,
			Email: host.AuthorEmail,
			When:  now,
		},
	})
	if err != nil {
		return "", "", errs.WrapServerError("failed to commit migrated files", err)
	}

	pushOptions := &git.PushOptions{RefSpecs: []config.RefSpec{
		config.RefSpec(fmt.Sprintf("%s:%s", branchRef, branchRef)),
	}}
	if host.APIToken != "" {
		pushOptions.Auth = &githttp.BasicAuth{Username: host.AuthUsername, Password: host.APIToken}
	}

	if err := repo.PushContext(ctx, pushOptions); err != nil && err != git.NoErrAlreadyUpToDate {
		return "", "", errs.WrapServerError(fmt.Sprintf("failed to push branch %q", branchName), err)
	}

	return branchName, commit.String(), nil
}

// pullRequestPayload is the minimal REST body a GitHub-shaped pull request
// API expects; no pull-request API client appears anywhere in the retrieved
// corpus, so this is a small, direct net/http call rather than an adopted
// library.
type pullRequestPayload struct {
	Title string `json:"title"`
	Head  string `json:"head"`
	Base  string `json:"base"`
	Body  string `json:"body"`
}

type pullRequestResponse struct {
	HTMLURL string `json:"html_url"`
}

// OpenPullRequest opens a pull request for branchName against host.BaseBranch
// through the configured VCS host's REST API.
func (host *Host) OpenPullRequest(ctx context.Context, branchName, commitSHA, title, body string) (PullRequestResult, error) {
	payload := pullRequestPayload{Title: title, Head: branchName, Base: host.BaseBranch, Body: body}
	buf, err := json.Marshal(payload)
	if err != nil {
		return PullRequestResult{}, errs.WrapServerError("failed to encode pull request payload", err)
	}

	url := fmt.Sprintf("%s/repos/%s/pulls", host.APIBaseURL, host.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return PullRequestResult{}, errs.WrapServerError("failed to build pull request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if host.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+host.APIToken)
	}

	client := host.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return PullRequestResult{}, errs.WrapServerError("failed to open pull request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return PullRequestResult{}, errs.NewClientError(fmt.Sprintf("pull request host returned status %d", resp.StatusCode))
	}

	var decoded pullRequestResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return PullRequestResult{}, errs.WrapServerError("failed to decode pull request response", err)
	}

	return PullRequestResult{BranchName: branchName, CommitSHA: commitSHA, URL: decoded.HTMLURL}, nil
}
