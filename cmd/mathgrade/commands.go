package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/mathgrade"
	"github.com/njchilds90/mathgrade/internal/config"
	"github.com/njchilds90/mathgrade/internal/logging"
	"github.com/njchilds90/mathgrade/internal/server"
)

// errNotEquivalent makes `equiv` exit with status 1 without an error message.
var errNotEquivalent = errors.New("not equivalent")

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:   "mathgrade",
		Short: "Normalize and compare mathematical answers",
		Long: `mathgrade decides whether two plain-text or LaTeX expressions
denote the same mathematical object and prints canonical forms.
Limits are read from MATHGRADE_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	engine := func() *mathgrade.Normalizer {
		return mathgrade.New(mathgrade.WithConfig(cfg.Engine.Normalizer()))
	}

	normalizeCmd := &cobra.Command{
		Use:   "normalize [expression]",
		Short: "Print the canonical storage form of an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), engine().Normalize(cmd.Context(), args[0]))
			return nil
		},
	}

	var verbose bool
	equivCmd := &cobra.Command{
		Use:   "equiv [expected] [answer]",
		Short: "Exit 0 when two expressions are equivalent, 1 otherwise",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := engine().Compare(cmd.Context(), args[0], args[1])
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "%t (%s)\n", v.Equivalent, v.Tier)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), v.Equivalent)
			}
			if !v.Equivalent {
				return errNotEquivalent
			}
			return nil
		},
	}
	equivCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the tier that decided the verdict")

	latexCmd := &cobra.Command{
		Use:   "latex [expression]",
		Short: "Print the canonical form of an expression as LaTeX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), engine().SimplifiedLaTeX(cmd.Context(), args[0]))
			return nil
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logCfg := logging.DefaultConfig()
			if cfg.Logging.Development {
				logCfg = logging.DevelopmentConfig()
			}
			logCfg.Level = cfg.Logging.Level
			logger, err := logging.New(logCfg)
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			logger.Info("Initializing mathgrade server", zap.String("addr", cfg.Addr()))
			return server.New(cfg, logger).Run(ctx)
		},
	}

	rootCmd.AddCommand(normalizeCmd, equivCmd, latexCmd, serveCmd)
	rootCmd.SetContext(context.Background())
	return rootCmd
}
