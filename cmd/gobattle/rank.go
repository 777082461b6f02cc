package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ezBadminton/gobattle/core"
	"github.com/ezBadminton/gobattle/internal/session"
)

const rankHelp = `  1      the first item wins
  2      the second item wins
  i1     ignore the first item
  i2     ignore the second item
  s      list the strategies
  s NAME switch to the strategy NAME
  q      quit`

func rankCmd(flags *rootFlags) *cobra.Command {
	var metricsFile string
	var noSync bool

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Compare pairs of items until the ranking is complete",
		Long:  "Shows two items at a time and asks which one is better.\n\n" + rankHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if !noSync {
				if _, err := a.sync(ctx); err != nil {
					return err
				}
			}

			in := cmd.InOrStdin()
			r := &ranker{
				session:     a.session,
				in:          bufio.NewScanner(in),
				out:         cmd.OutOrStdout(),
				interactive: isTerminal(in),
			}
			if err := r.run(ctx); err != nil {
				return err
			}

			return a.writeMetrics(metricsFile)
		},
	}

	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write the metrics of the run to this file")
	cmd.Flags().BoolVar(&noSync, "no-sync", false, "Do not scan the library before ranking")

	return cmd
}

// Reports whether the prompt reads from a terminal
func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Runs the comparison prompt on a session
type ranker struct {
	session *session.Session
	in      *bufio.Scanner
	out     io.Writer

	// Prompts and help are only printed for a terminal
	interactive bool
}

func (r *ranker) run(ctx context.Context) error {
	if r.interactive {
		fmt.Fprintf(r.out, "Strategy: %s\n%s\n", r.session.ActiveStrategy(), rankHelp)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pair, err := r.session.Next(ctx)
		if errors.Is(err, core.ErrBattleFinished) {
			fmt.Fprintln(r.out, "All pairs are decided.")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(r.out, "\n[%5.1f%%] 1) %s  2) %s\n", r.session.Progress()*100, pair.A, pair.B)

		quit, err := r.answer(ctx, pair)
		if err != nil || quit {
			return err
		}
	}
}

// Reads answers until one of them settles the pair.
// Returns true when the user quits.
func (r *ranker) answer(ctx context.Context, pair core.Pair) (bool, error) {
	for {
		if r.interactive {
			fmt.Fprint(r.out, "> ")
		}
		if !r.in.Scan() {
			return true, r.in.Err()
		}

		command, arg, _ := strings.Cut(strings.TrimSpace(r.in.Text()), " ")
		var err error
		switch command {
		case "1":
			_, err = r.session.Decide(ctx, pair.A, pair.B)
		case "2":
			_, err = r.session.Decide(ctx, pair.B, pair.A)
		case "i1":
			err = r.ignore(ctx, pair.A)
		case "i2":
			err = r.ignore(ctx, pair.B)
		case "s":
			if arg == "" {
				printStrategies(r.out, r.session.Strategies(), r.session.ActiveStrategy())
				continue
			}
			if err := r.session.UseStrategy(strings.TrimSpace(arg)); err != nil {
				fmt.Fprintln(r.out, err)
				continue
			}
			fmt.Fprintf(r.out, "Strategy: %s\n", r.session.ActiveStrategy())
		case "q":
			return true, nil
		default:
			fmt.Fprintln(r.out, rankHelp)
			continue
		}

		return false, err
	}
}

func (r *ranker) ignore(ctx context.Context, item core.Item) error {
	removed, err := r.session.Ignore(ctx, item)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Ignored %s, %d decisions discarded\n", item, len(removed))
	return nil
}
