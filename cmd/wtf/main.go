package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yanmxa/wtf/internal/config"
	"github.com/yanmxa/wtf/internal/log"
	"github.com/yanmxa/wtf/internal/permission"
	"github.com/yanmxa/wtf/internal/render"
	"github.com/yanmxa/wtf/internal/system"

	// Import providers for registration
	_ "github.com/yanmxa/wtf/internal/provider/anthropic"
	_ "github.com/yanmxa/wtf/internal/provider/google"
	_ "github.com/yanmxa/wtf/internal/provider/openai"
)

var version = "0.1.0"

var (
	legacyFlag        bool
	modelFlag         string
	providerFlag      string
	maxIterationsFlag int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = log.Sync()
	if err != nil {
		var shown shownError
		if !errors.As(err, &shown) {
			fmt.Fprintln(os.Stderr, render.ErrorLine(err.Error()))
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wtf [query...]",
	Short: "wtf - a terminal assistant that runs commands for you",
	Long: `wtf answers questions about your terminal and fixes problems by running
commands. Every command is checked against your allowlist and denylist;
anything else asks for confirmation first.

Examples:
  wtf why did my last command fail
  wtf undo that commit
  wtf --legacy how do I exit vim`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(config.DefaultPaths())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return cmd.Help()
		}

		a, err := newApp(config.DefaultPaths(), cmd.OutOrStdout(), cmd.InOrStdin())
		if err != nil {
			return err
		}
		defer a.close()

		if legacyFlag {
			return a.runLegacy(cmd.Context(), query)
		}
		return a.runAgent(cmd.Context(), query)
	},
}

func init() {
	rootCmd.Flags().BoolVar(&legacyFlag, "legacy", false, "Extract commands from a markdown answer instead of using tools")
	rootCmd.Flags().StringVar(&modelFlag, "model", "", "Override the configured model")
	rootCmd.Flags().StringVar(&providerFlag, "provider", "", "Override the configured provider (anthropic, openai, google)")
	rootCmd.Flags().IntVar(&maxIterationsFlag, "max-iterations", 0, "Override behavior.max_iterations")

	rootCmd.AddCommand(versionCmd)
}

// setup loads .env files, starts logging and writes first-run defaults.
func setup(paths config.Paths) error {
	// .env files are optional; the working directory wins over the config dir.
	_ = godotenv.Load()
	_ = godotenv.Load(paths.Env())

	if err := log.Init(paths.Dir); err != nil {
		return err
	}
	if _, err := config.EnsureDefault(paths); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if err := permission.NewStore(paths.Allowlist()).EnsureDefault(); err != nil {
		return fmt.Errorf("write default allowlist: %w", err)
	}
	if _, err := os.Stat(paths.Instructions()); os.IsNotExist(err) {
		_ = os.WriteFile(paths.Instructions(), []byte(system.DefaultInstructions), 0644)
	}
	return nil
}

// shownError marks an error already printed to the user.
type shownError struct{ error }

func (e shownError) Unwrap() error { return e.error }

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wtf version %s\n", version)
	},
}
