package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Comcast/koala/tools/expect"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type expectResult struct {
	Filename string
	Outcomes []*expect.Outcome
	Err      error
}

func newExpectCmd() *cobra.Command {
	var (
		timeout     time.Duration
		concurrency int
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "expect SESSION...",
		Short: "Run test sessions",
		Long: `Run the cases in each session file (YAML or JSON) and report
which didn't stop the way they were expected to.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p := newPalette(cfg.Colorize(os.Stdout))

			results := make([]*expectResult, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, filename := range args {
				i, filename := i, filename
				g.Go(func() error {
					r := &expectResult{Filename: filename}
					results[i] = r
					s, err := expect.ReadSession(filename)
					if err != nil {
						r.Err = err
						return nil
					}
					if s.DefaultTimeout == 0 {
						s.DefaultTimeout = timeout
					}
					if s.Concurrency == 0 {
						s.Concurrency = concurrency
					}
					s.Verbose = s.Verbose || verbose
					r.Outcomes, r.Err = s.Run(ctx)
					return nil
				})
			}
			g.Wait()

			failed := 0
			for _, r := range results {
				if !r.print(cmd.OutOrStdout(), p) {
					failed++
				}
			}
			if 0 < failed {
				return errors.Errorf("%d of %d sessions failed", failed, len(results))
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.DurationVar(&timeout, "timeout", 10*time.Second, "default timeout per case")
	fs.IntVar(&concurrency, "concurrency", 4, "default cases to run at once per session")
	fs.BoolVarP(&verbose, "verbose", "v", false, "log each case")

	return cmd
}

// print reports r and whether it passed.
func (r *expectResult) print(w io.Writer, p *palette) bool {
	if r.Err != nil {
		if _, is := r.Err.(*expect.Failed); !is {
			fmt.Fprintf(w, "%s: %s\n", r.Filename, p.Error("%v", r.Err))
			return false
		}
	}
	passed := true
	for _, o := range r.Outcomes {
		if o == nil {
			continue
		}
		label := fmt.Sprintf("case %d", o.Case)
		if o.Doc != "" {
			label += " (" + o.Doc + ")"
		}
		if o.Ok() {
			fmt.Fprintf(w, "%s: %s %s\n", r.Filename, p.Ok("pass"), label)
			continue
		}
		passed = false
		fmt.Fprintf(w, "%s: %s %s\n", r.Filename, p.Error("FAIL"), label)
		for _, problem := range o.Problems {
			fmt.Fprintf(w, "    %s\n", problem)
		}
	}
	return passed
}
