// Command issuectl is a terminal client for the issue tracker API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spec-kit/issue-tracker/internal/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(viper.New())
	if err := root.ExecuteContext(ctx); err != nil {
		printError(root.ErrOrStderr(), err)
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Settings resolve flag, then
// ISSUECTL_* environment variable, then default.
func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "issuectl",
		Short:         "Manage issues from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	v.SetEnvPrefix("ISSUECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("api-url", client.DefaultBaseURL)
	v.SetDefault("token", "")
	v.SetDefault("json", false)
	_ = v.BindEnv("jwt-secret", "AUTH_JWT_SECRET")
	_ = v.BindEnv("token-ttl-minutes", "AUTH_ACCESS_TOKEN_TTL_MINUTES")
	v.SetDefault("token-ttl-minutes", 60)

	root.PersistentFlags().String("api-url", client.DefaultBaseURL, "Issue tracker API base URL (env ISSUECTL_API_URL)")
	root.PersistentFlags().String("token", "", "Bearer token for write operations (env ISSUECTL_TOKEN)")
	root.PersistentFlags().Bool("json", false, "Output in JSON format")
	_ = v.BindPFlag("api-url", root.PersistentFlags().Lookup("api-url"))
	_ = v.BindPFlag("token", root.PersistentFlags().Lookup("token"))
	_ = v.BindPFlag("json", root.PersistentFlags().Lookup("json"))

	app := &cliApp{settings: v}
	root.AddCommand(
		newListCmd(app),
		newShowCmd(app),
		newCreateCmd(app),
		newEditCmd(app),
		newResolveCmd(app),
		newDeleteCmd(app),
		newTokenCmd(app),
	)
	return root
}

type cliApp struct {
	settings *viper.Viper
	queries  *client.IssueQueries
}

func (a *cliApp) api() *client.IssueQueries {
	if a.queries == nil {
		a.queries = client.NewIssueQueries(client.New(a.settings.GetString("api-url"), a.settings.GetString("token")))
	}
	return a.queries
}

func (a *cliApp) jsonOutput() bool {
	return a.settings.GetBool("json")
}

func printError(w io.Writer, err error) {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		fmt.Fprintln(w, renderError(err.Error()))
		return
	}
	fmt.Fprintln(w, renderError(apiErr.UserMessage()))
	fields := apiErr.FieldErrors()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, msg := range fields[name] {
			fmt.Fprintf(w, "  %s: %s\n", name, msg)
		}
	}
}
