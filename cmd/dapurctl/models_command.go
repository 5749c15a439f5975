package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newModelsCommand(ctx *commandContext) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the configured model candidates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, closer, err := ctx.gateway(cmd.Context())
			if err != nil {
				return err
			}
			defer closer.Close()

			out := cmd.OutOrStdout()
			if !remote {
				rows := make([][]string, 0, len(g.Candidates()))
				for _, c := range g.Candidates() {
					rows = append(rows, []string{strconv.Itoa(c.Priority), c.ID})
				}
				fmt.Fprintln(out, renderTable([]string{"Priority", "Model"}, rows, []columnAlignment{alignRight, alignLeft}))

				shapes := make([]string, 0, len(g.Shapes()))
				for _, s := range g.Shapes() {
					shapes = append(shapes, string(s))
				}
				if len(shapes) == 0 {
					shapes = []string{"none"}
				}
				fmt.Fprintf(out, "Shapes: %s\n", strings.Join(shapes, ", "))
				fmt.Fprintf(out, "Fingerprint: %s\n", g.Fingerprint())
				return nil
			}

			listers := g.Listers()
			if len(listers) == 0 {
				return errors.New("no configured shape can list remote models")
			}
			var rows [][]string
			for _, l := range listers {
				remoteModels, err := l.ListModels(cmd.Context())
				if err != nil {
					return err
				}
				for _, m := range remoteModels {
					rows = append(rows, []string{m.Name, m.DisplayName, strings.Join(m.Methods, ", ")})
				}
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No remote models visible to this key")
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"Model", "Display name", "Methods"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "List models visible to the configured API key")
	return cmd
}
