package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ezBadminton/gobattle/core"
)

func strategiesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the strategies that pick the next pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			printStrategies(cmd.OutOrStdout(), core.StrategyNames(), cfg.Battle.Strategy)
			return nil
		},
	}
}

// Marks the active strategy with an asterisk
func printStrategies(w io.Writer, names []string, active string) {
	for _, name := range names {
		marker := " "
		if name == active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, name)
	}
}
