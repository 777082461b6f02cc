package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time
var version = "dev"

type rootFlags struct {
	configPath string
	root       string
	backend    string
	strategy   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "gobattle",
		Short: "Rank a media library by comparing two items at a time",
		Long: "gobattle ranks the files of a directory by asking which of two files is better.\n" +
			"Decisions are closed under transitivity so far fewer comparisons than pairs are needed.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path of the YAML configuration file")
	cmd.PersistentFlags().StringVarP(&flags.root, "root", "r", "", "Library directory, overrides library.root")
	cmd.PersistentFlags().StringVar(&flags.backend, "store", "", "Store backend: memory, badger or redis")
	cmd.PersistentFlags().StringVarP(&flags.strategy, "strategy", "s", "", "Strategy that picks the next pair")

	cmd.AddCommand(
		scanCmd(flags),
		rankCmd(flags),
		resultsCmd(flags),
		strategiesCmd(flags),
		ignoreCmd(flags),
		unignoreCmd(flags),
		resetCmd(flags),
	)

	return cmd
}
