package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/windoze95/dapur-api/internal/ai"
)

const defaultProbePrompt = "Balas dengan satu kata: siap"

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var prompt string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Call every model candidate with every shape once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, closer, err := ctx.gateway(cmd.Context())
			if err != nil {
				return err
			}
			defer closer.Close()
			if !g.Available() {
				return errGatewayUnavailable
			}

			attempts := g.Probe(cmd.Context(), ai.GenerationRequest{
				Prompt:          prompt,
				MaxOutputTokens: 20,
				Temperature:     0,
			})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Model", "Shape", "Result", "Duration", "Detail"},
				probeRows(attempts),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))

			ok := 0
			for _, a := range attempts {
				if a.Err == nil {
					ok++
				}
			}
			fmt.Fprintf(out, "%d/%d attempts succeeded\n", ok, len(attempts))
			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", defaultProbePrompt, "Prompt sent to every candidate")
	return cmd
}

func probeRows(attempts []ai.Attempt) [][]string {
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		result, detail := "ok", a.Reply
		if a.Err != nil {
			result, detail = string(a.Kind), a.Err.Error()
		}
		rows = append(rows, []string{
			a.Model,
			string(a.Shape),
			result,
			a.Duration.Round(time.Millisecond).String(),
			truncate(strings.TrimSpace(detail), 60),
		})
	}
	return rows
}
