package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezBadminton/gobattle/core"
)

func scanCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Add new files of the library and forget deleted ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.sync(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, item := range report.Added {
				fmt.Fprintf(out, "+ %s\n", item)
			}
			for _, item := range report.Removed {
				fmt.Fprintf(out, "- %s\n", item)
			}
			fmt.Fprintf(out, "%d added, %d removed\n", len(report.Added), len(report.Removed))
			return nil
		},
	}
}

func ignoreCmd(flags *rootFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "ignore ITEM...",
		Short: "Take items out of the battle and discard their decisions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			for _, arg := range args {
				item := core.Item(arg)
				if dryRun {
					printDecisions(cmd, "Would discard", item, a.session.ListIgnoreDecisions(item))
					continue
				}
				removed, err := a.session.Ignore(cmd.Context(), item)
				if err != nil {
					return err
				}
				printDecisions(cmd, "Discarded", item, removed)
			}
			if !dryRun {
				fmt.Fprintf(out, "%d items ignored\n", len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Only list the decisions that would be discarded")

	return cmd
}

func unignoreCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unignore ITEM...",
		Short: "Put ignored items back into the battle",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, arg := range args {
				if err := a.session.Unignore(cmd.Context(), core.Item(arg)); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d items unignored\n", len(args))
			return nil
		},
	}
}

func resetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset ITEM...",
		Short: "Discard all decisions of items so they are compared again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, arg := range args {
				item := core.Item(arg)
				removed, err := a.session.Reset(cmd.Context(), item)
				if err != nil {
					return err
				}
				printDecisions(cmd, "Discarded", item, removed)
			}
			return nil
		},
	}
}

func printDecisions(cmd *cobra.Command, verb string, item core.Item, decisions []core.Decision) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d decisions of %s\n", verb, len(decisions), item)
	for _, d := range decisions {
		fmt.Fprintf(out, "  %s\n", d)
	}
}
