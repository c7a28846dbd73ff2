// Package main provides the fleet CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/richinex/fleet/agent"
	"github.com/richinex/fleet/cli"
	"github.com/richinex/fleet/config"
	"github.com/richinex/fleet/internal/logs"
	"github.com/richinex/fleet/llm"
	"github.com/richinex/fleet/storage"
	"github.com/richinex/fleet/tools"
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "fleet",
		Short: "Interactive coding assistant with filesystem tools",
		Long: `A CLI agent that lets a language model read, write, list, search and
delete files through a fixed tool set, running at most a bounded number of
model round trips per message.

Without a subcommand, fleet starts an interactive chat.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.BindFlags(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), v, verbose)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("provider", "p", "anthropic", "LLM provider ("+strings.Join(llm.ProviderNames(), ", ")+")")
	flags.String("model", "", "Model name (default: provider's default model)")
	flags.IntP("max-steps", "m", agent.DefaultMaxSteps, "Maximum model round trips per message")
	flags.Uint("retries", 2, "Retries for transient model failures")
	flags.String("base-url", "", "Alternative API endpoint (OpenAI-compatible servers, proxies)")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-file", "", "Also append JSON logs to this file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Show steps and token usage after each reply")

	rootCmd.AddCommand(chatCmd(v, &verbose))
	rootCmd.AddCommand(runCmd(v, &verbose))
	rootCmd.AddCommand(toolsCmd())

	return rootCmd
}

func chatCmd(v *viper.Viper, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), v, *verbose)
		},
	}
}

func runCmd(v *viper.Viper, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "run [task]",
		Short: "Execute a single task and print the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(v)
			if err != nil {
				return err
			}
			defer app.Close()
			return cli.RunOnce(cmd.Context(), app.agent, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr(), *verbose)
		},
	}
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.ListTools(cmd.OutOrStdout(), tools.NewRegistry(), verboseTools)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show tool parameters")

	return cmd
}

func runChat(ctx context.Context, v *viper.Viper, verbose bool) error {
	app, err := setup(v)
	if err != nil {
		return err
	}
	defer app.Close()

	session := cli.NewSession(app.agent, os.Stdin, os.Stdout, os.Stderr, cli.SessionOptions{
		Verbose: verbose,
		Logger:  app.logger,
	})
	return session.Run(ctx)
}

// application is the wired agent plus the resources it holds.
type application struct {
	agent  *agent.Agent
	logger *slog.Logger
	closer io.Closer
}

// Close releases the log file.
func (a *application) Close() {
	_ = a.closer.Close()
}

// setup wires settings, logging, provider, tools and store into an agent.
func setup(v *viper.Viper) (*application, error) {
	settings, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	baseLogger, closer, err := logs.New(logs.Options{Level: settings.Log.Level, File: settings.Log.File})
	if err != nil {
		return nil, err
	}
	logger := baseLogger.With("session", uuid.NewString())

	provider, err := cli.NewProvider(settings)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	logger.Info("provider ready", "provider", provider.Name(), "model", provider.Model(), "max_steps", settings.Agent.MaxSteps)

	a := agent.NewBuilder(cli.NewCompleter(provider, settings, logger)).
		Registry(tools.NewRegistry()).
		Store(storage.NewConversation()).
		SystemPrompt(settings.Agent.SystemPrompt).
		MaxSteps(settings.Agent.MaxSteps).
		Logger(logger).
		Build()

	return &application{agent: a, logger: logger, closer: closer}, nil
}
