package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanmxa/wtf/internal/config"
	"github.com/yanmxa/wtf/internal/history"
	"github.com/yanmxa/wtf/internal/permission"
	"github.com/yanmxa/wtf/internal/render"
)

var (
	allowRemove  bool
	historyCount int
)

func init() {
	allowCmd.Flags().BoolVar(&allowRemove, "remove", false, "Remove the pattern from the allowlist")
	historyCmd.Flags().IntVarP(&historyCount, "number", "n", 10, "Number of entries to show")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	rootCmd.AddCommand(allowCmd)
	rootCmd.AddCommand(denyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

var allowCmd = &cobra.Command{
	Use:   "allow <pattern>",
	Short: "Add a command pattern to the allowlist",
	Long: `Add a command pattern to the allowlist. Commands matching an allowlist
pattern run without confirmation when behavior.auto_execute_allowlist is on.

A pattern matches the command itself or the command followed by arguments,
so "git status" also allows "git status --short".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := strings.TrimSpace(strings.Join(args, " "))
		store := permission.NewStore(config.DefaultPaths().Allowlist())
		out := cmd.OutOrStdout()

		if allowRemove {
			removed, err := store.RemoveFromAllowlist(pattern)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(out, "%q is not in the allowlist\n", pattern)
				return nil
			}
			fmt.Fprintln(out, render.SuccessStyle.Render(fmt.Sprintf("Removed %q from the allowlist", pattern)))
			return nil
		}

		added, err := store.AddToAllowlist(pattern)
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintf(out, "%q is already allowed\n", pattern)
			return nil
		}
		fmt.Fprintln(out, render.SuccessStyle.Render(fmt.Sprintf("Added %q to the allowlist", pattern)))
		return nil
	},
}

var denyCmd = &cobra.Command{
	Use:   "deny <pattern>",
	Short: "Add a command pattern to the denylist",
	Long:  "Add a command pattern to the denylist. Matching commands are never run and never prompted for.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := strings.TrimSpace(strings.Join(args, " "))
		added, err := permission.NewStore(config.DefaultPaths().Allowlist()).AddToDenylist(pattern)
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintf(cmd.OutOrStdout(), "%q is already denied\n", pattern)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.SuccessStyle.Render(fmt.Sprintf("Added %q to the denylist", pattern)))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent queries",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist := history.Open(config.DefaultPaths().History())
		defer hist.Close()

		entries, err := hist.Recent(historyCount)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No history yet.")
			return nil
		}
		for _, e := range entries {
			printHistoryEntry(cmd, e)
		}
		return nil
	},
}

func printHistoryEntry(cmd *cobra.Command, e history.Entry) {
	out := cmd.OutOrStdout()
	status := render.SuccessStyle.Render("✓")
	if e.ExitCode != 0 {
		status = render.ErrorStyle.Render("✗")
	}
	fmt.Fprintf(out, "%s %s %s\n", status,
		render.MetaStyle.Render(e.Timestamp.Local().Format("2006-01-02 15:04")),
		render.TitleStyle.Render(e.Query))
	for _, c := range e.Commands {
		fmt.Fprintln(out, "    "+render.CommandStyle.Render("$ "+c))
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or change settings",
	Long: `Read or change settings in config.yaml using dotted keys, for example:

  wtf config get behavior.max_iterations
  wtf config set api.provider openai`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a setting, or the whole configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewLoader(config.DefaultPaths()).Load()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		}
		v, err := config.Get(cfg, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.FormatValue(v))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// the project layer is not written back to the user file
		paths := config.DefaultPaths()
		cfg, err := config.NewLoaderWithOptions(paths, "").Load()
		if err != nil {
			return err
		}
		if err := config.Set(cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(paths, cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.SuccessStyle.Render(fmt.Sprintf("Set %s", args[0])))
		return nil
	},
}
