package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/client"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/pkg/util/optional"
)

func newListCmd(app *cliApp) *cobra.Command {
	var (
		status   string
		page     int
		pageSize int
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List issues, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := client.NewListState()
			if status != "" {
				s, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				state.SetStatus(&s)
			}
			state.SetPageSize(pageSize)
			state.SetPage(page)

			for {
				result, err := app.api().List(cmd.Context(), state.Params())
				if err != nil {
					return err
				}
				state.Observe(result)
				if app.jsonOutput() {
					if err := writeJSON(cmd, result); err != nil {
						return err
					}
				} else {
					fmt.Fprint(cmd.OutOrStdout(), renderIssueTable(result))
				}
				if !all || !state.Next() {
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (open, in-progress, resolved)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", domain.DefaultPageSize, "Issues per page (max 100)")
	cmd.Flags().BoolVar(&all, "all", false, "Walk every page")
	return cmd
}

func newShowCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIssueID(args[0])
			if err != nil {
				return err
			}
			issue, err := app.api().Issue(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printIssue(app, cmd, issue)
		},
	}
}

func newCreateCmd(app *cliApp) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an issue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			issue, err := app.api().Create(cmd.Context(), client.CreateParams{Title: title, Description: description})
			if err != nil {
				return err
			}
			return printIssue(app, cmd, issue)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Issue title")
	cmd.Flags().StringVar(&description, "description", "", "Issue description")
	return cmd
}

func newEditCmd(app *cliApp) *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change title, description or status of an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIssueID(args[0])
			if err != nil {
				return err
			}
			var params client.UpdateParams
			if cmd.Flags().Changed("title") {
				params.Title = optional.Of(title)
			}
			if cmd.Flags().Changed("description") {
				params.Description = optional.Of(description)
			}
			if cmd.Flags().Changed("status") {
				s, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				params.Status = optional.Of(s)
			}
			if !params.Title.IsSet() && !params.Description.IsSet() && !params.Status.IsSet() {
				return errors.New("nothing to change: pass --title, --description or --status")
			}
			issue, err := app.api().Update(cmd.Context(), id, params)
			if err != nil {
				return err
			}
			return printIssue(app, cmd, issue)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New status (open, in-progress, resolved)")
	return cmd
}

func newResolveCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Mark an issue resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIssueID(args[0])
			if err != nil {
				return err
			}
			issue, err := app.api().Resolve(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printIssue(app, cmd, issue)
		},
	}
}

func newDeleteCmd(app *cliApp) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIssueID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Delete issue #%d? This cannot be undone. [y/N]: ", id)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			if err := app.api().Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSuccess(fmt.Sprintf("Deleted issue #%d", id)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newTokenCmd(app *cliApp) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token from AUTH_JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := app.settings.GetString("jwt-secret")
			if secret == "" {
				return errors.New("AUTH_JWT_SECRET is not set")
			}
			tokens := auth.NewTokenManager(secret, app.settings.GetInt("token-ttl-minutes"))
			token, expiresAt, err := tokens.GenerateToken(subject)
			if err != nil {
				return err
			}
			if app.jsonOutput() {
				return writeJSON(cmd, map[string]any{"token": token, "expiresAt": expiresAt})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "issuectl", "Token subject recorded as the actor of changes")
	return cmd
}

func parseIssueID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid issue id %q", raw)
	}
	return id, nil
}

func printIssue(app *cliApp, cmd *cobra.Command, issue *dto.IssueResponse) error {
	if app.jsonOutput() {
		return writeJSON(cmd, issue)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderIssue(issue))
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
