package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/canonical/upload-charm-docs/internal/config"
	"github.com/canonical/upload-charm-docs/internal/forum"
	"github.com/canonical/upload-charm-docs/internal/orchestrator"
	"github.com/canonical/upload-charm-docs/internal/vcs"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile local documentation with the forum, or migrate it back",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("dry-run", false, "compute and report actions without mutating the forum")
	runCmd.Flags().Bool("delete-pages", false, "delete forum topics for local-only removals")
	runCmd.Flags().Bool("create-if-not-exists", false, "create a new index topic when metadata.yaml has no docs field")
	runCmd.Flags().String("branch-name", "", "branch name for a migration pull request (default: generated)")
	runCmd.Flags().String("repo-path", ".", "path to the charm repository")
	runCmd.Flags().String("api-base-url", "", "VCS host API base URL, e.g. https://api.github.com")
	runCmd.Flags().String("repo", "", "VCS host repository, e.g. owner/repo")
	runCmd.Flags().String("base-branch", "main", "base branch a migration pull request targets")
	runCmd.Flags().String("api-token", "", "VCS host API token")

	viper.BindPFlag("run.dry_run", runCmd.Flags().Lookup("dry-run"))
	viper.BindPFlag("run.delete_pages", runCmd.Flags().Lookup("delete-pages"))
	viper.BindPFlag("run.branch_name", runCmd.Flags().Lookup("branch-name"))
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dryRun := cfg.Run.DryRun
	if cmd.Flags().Changed("dry-run") {
		dryRun = viper.GetBool("run.dry_run")
	}
	deletePages := cfg.Run.DeletePages
	if cmd.Flags().Changed("delete-pages") {
		deletePages = viper.GetBool("run.delete_pages")
	}
	branchName := cfg.Run.BranchName
	if cmd.Flags().Changed("branch-name") {
		branchName = viper.GetString("run.branch_name")
	}

	createIfNotExists, _ := cmd.Flags().GetBool("create-if-not-exists")
	repoPath, _ := cmd.Flags().GetString("repo-path")
	apiBaseURL, _ := cmd.Flags().GetString("api-base-url")
	repo, _ := cmd.Flags().GetString("repo")
	baseBranch, _ := cmd.Flags().GetString("base-branch")
	apiToken, _ := cmd.Flags().GetString("api-token")

	client, err := forum.NewHTTPClient(cfg.Discourse.Host, cfg.Discourse.APIUsername, cfg.Discourse.APIKey, cfg.Discourse.CategoryID)
	if err != nil {
		return err
	}

	vcsHost := &vcs.Host{
		RepoPath:     repoPath,
		BranchName:   branchName,
		APIBaseURL:   apiBaseURL,
		Repo:         repo,
		BaseBranch:   baseBranch,
		APIToken:     apiToken,
		AuthorName:   "docsync",
		AuthorEmail:  "docsync@users.noreply.github.com",
		AuthUsername: "docsync",
	}

	reports, err := orchestrator.Run(context.Background(), repoPath, client, vcsHost, orchestrator.UserInputs{
		DryRun:            dryRun,
		DeletePages:       deletePages,
		BranchName:        branchName,
		CreateIfNotExists: createIfNotExists,
	})
	if err != nil {
		return err
	}

	for location, report := range reports {
		fmt.Printf("%s\t%s\t%s\n", report.Result, location, report.Reason)
	}
	return nil
}
