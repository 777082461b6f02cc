package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ezBadminton/gobattle/core"
)

func resultsCmd(flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Print the current ranking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			return writeResults(cmd.OutOrStdout(), format, a.session.Results(), a.session.Progress())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")

	return cmd
}

type resultList struct {
	Progress float64            `json:"progress" yaml:"progress"`
	Results  []core.ResultEntry `json:"results" yaml:"results"`
}

func writeResults(w io.Writer, format string, results []core.ResultEntry, progress float64) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(resultList{Progress: progress, Results: results}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resultList{Progress: progress, Results: results}); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		return writeResultsText(w, results, progress)
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeResultsText(w io.Writer, results []core.ResultEntry, progress float64) error {
	width := len("item")
	for _, r := range results {
		width = max(width, len(r.Item))
	}

	fmt.Fprintf(w, "%5s  %-*s  %4s  %6s\n", "place", width, "item", "wins", "losses")
	for _, r := range results {
		place := "-"
		if !r.Ignored {
			place = fmt.Sprint(r.Place)
		}
		fmt.Fprintf(w, "%5s  %-*s  %4d  %6d\n", place, width, r.Item, r.Wins, r.Losses)
	}
	_, err := fmt.Fprintf(w, "\n%.1f%% decided\n", progress*100)
	return err
}
