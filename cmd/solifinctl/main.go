// Command solifinctl is the owner and moderator dashboard of the SOLIFIN
// publications API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"solifin/internal/client"
	"solifin/internal/dashboard"
	"solifin/internal/lifecycle"
	"solifin/internal/logging"
	"solifin/internal/middleware"
	"solifin/internal/schema"
)

const defaultAPIURL = "http://localhost:8080/api/v1"

type cliContext struct {
	Ctx       context.Context
	Cmd       *cobra.Command
	Args      []string
	Out       io.Writer
	Logger    *slog.Logger
	Client    *client.Client
	Actor     lifecycle.Actor
	Dashboard *dashboard.Dashboard
}

// flagOrEnv returns the flag value when set, else the environment variable,
// else the flag default.
func flagOrEnv(cmd *cobra.Command, flag, env string) string {
	v, _ := cmd.Flags().GetString(flag)
	if cmd.Flags().Changed(flag) {
		return v
	}
	if e := os.Getenv(env); e != "" {
		return e
	}
	return v
}

// actorFromToken reads the subject and role claims without verifying the
// signature; the server does that.
func actorFromToken(token string) lifecycle.Actor {
	if token == "" {
		return lifecycle.Actor{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return lifecycle.Actor{}
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	return lifecycle.Actor{UserID: sub, Admin: strings.EqualFold(role, middleware.RoleAdmin)}
}

func wrapClientMain(fn func(*cliContext) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		logger := logging.NewWithWriter(cmd.ErrOrStderr(), level, logging.FormatText)
		token := flagOrEnv(cmd, "token", "SOLIFIN_TOKEN")

		c := client.New(flagOrEnv(cmd, "api-url", "SOLIFIN_API_URL"), token)
		actor := actorFromToken(token)
		pageSize, _ := cmd.Flags().GetInt("page-size")

		ctx := &cliContext{
			Ctx:    cmd.Context(),
			Cmd:    cmd,
			Args:   args,
			Out:    cmd.OutOrStdout(),
			Logger: logger,
			Client: c,
			Actor:  actor,
		}
		if ctx.Ctx == nil {
			ctx.Ctx = context.Background()
		}
		ctx.Dashboard = dashboard.New(c, dashboard.Options{
			Registry: schema.NewRegistry(),
			Actor:    actor,
			PageSize: pageSize,
			Logger:   logger,
			Notifier: dashboard.NotifierFunc(func(n dashboard.Notice) {
				printNotice(cmd.ErrOrStderr(), n)
			}),
		})
		return fn(ctx)
	}
}

func printNotice(w io.Writer, n dashboard.Notice) {
	if n.Err != nil {
		fmt.Fprintf(w, "[%s] %s: %v\n", n.Level, n.Message, n.Err)
		return
	}
	fmt.Fprintf(w, "[%s] %s %s\n", n.Level, n.Message, n.PublicationID)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "solifinctl",
		Short:         "Manage SOLIFIN publications from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("api-url", defaultAPIURL, "API base URL (env SOLIFIN_API_URL)")
	rootCmd.PersistentFlags().String("token", "", "bearer token (env SOLIFIN_TOKEN)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level")
	rootCmd.PersistentFlags().Int("page-size", 6, "items per page")

	addPageCommands(rootCmd)
	addSubmitCommands(rootCmd)
	addTransitionCommands(rootCmd)
	addModerationCommands(rootCmd)
	addSchemaCommand(rootCmd)
	addTokenCommand(rootCmd)
	return rootCmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
