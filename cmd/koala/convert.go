package main

import (
	"encoding/json"
	"fmt"

	"github.com/Comcast/koala/tools"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var (
		to     string
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a program between source text and YAML or JSON",
		Long: `Read a program (source text, or a YAML or JSON document, by
extension) with its includes expanded and write it in another form.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := tools.LoadFile(args[0])
			if err != nil {
				return err
			}

			var bs []byte
			switch to {
			case "koala", "source":
				bs = []byte(p.String())
			case "yaml":
				bs, err = p.Document()
			case "json":
				if pretty {
					bs, err = json.MarshalIndent(p, "", "  ")
				} else {
					bs, err = json.Marshal(p)
				}
			default:
				return errors.Errorf("unsupported format %q", to)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", bs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "yaml", "koala, yaml or json")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "indent JSON")

	return cmd
}
