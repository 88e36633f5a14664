package main

import (
	"fmt"

	"github.com/Comcast/koala/storage"
	"github.com/Comcast/koala/storage/bolt"
	"github.com/Comcast/koala/tools"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTraceCmd() *cobra.Command {
	var (
		program, format string
		remove          bool
	)

	cmd := &cobra.Command{
		Use:   "trace DB [PROGRAM_ID]",
		Short: "Show traces written by run --trace",
		Long: `With just a DB, list the ids of the programs that have traces.
Otherwise print (or with --rm, remove) the traces of the program, which is
given by id or by --program FILE.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := bolt.NewStorage(args[0])
			if err != nil {
				return err
			}
			if err = st.Open(ctx); err != nil {
				return err
			}
			defer st.Close(ctx)

			var pid string
			switch {
			case 1 < len(args):
				pid = args[1]
			case program != "":
				p, err := tools.LoadFile(program)
				if err != nil {
					return err
				}
				if pid, err = storage.ProgramId(p); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()

			if pid == "" {
				pids, err := st.Programs(ctx)
				if err != nil {
					return err
				}
				for _, pid := range pids {
					fmt.Fprintln(out, pid)
				}
				return nil
			}

			if remove {
				return st.RemProgram(ctx, pid)
			}

			ts, err := st.GetTraces(ctx, pid)
			if err != nil {
				return err
			}
			if len(ts) == 0 {
				return errors.Errorf("no traces for %s", pid)
			}
			bs, err := storage.Render(ts, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", bs)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&program, "program", "", "program file whose traces to show")
	fs.StringVar(&format, "format", "yaml", "yaml or json")
	fs.BoolVar(&remove, "rm", false, "remove the program's traces")

	return cmd
}
