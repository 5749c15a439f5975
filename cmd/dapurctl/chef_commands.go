package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/windoze95/dapur-api/internal/service"
)

const defaultCLIUser = "dapurctl"

func newAskCommand(ctx *commandContext) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask Chef AI a cooking question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			g, closer, err := ctx.gateway(cmd.Context())
			if err != nil {
				return err
			}
			defer closer.Close()
			chats, err := ctx.conversations()
			if err != nil {
				return err
			}

			chef := service.NewChefService(cfg.Prompts, g, chats)
			answer := chef.Answer(cmd.Context(), strings.Join(args, " "), user)
			fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
			if answer.Model != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "(%s via %s)\n", answer.Outcome, answer.Model)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "(%s)\n", answer.Outcome)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", defaultCLIUser, "Conversation owner")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		user       string
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "search <request>",
		Short: "Find recipes for a free-text request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			g, closer, err := ctx.gateway(cmd.Context())
			if err != nil {
				return err
			}
			defer closer.Close()
			chats, err := ctx.conversations()
			if err != nil {
				return err
			}

			search := service.NewRecipeSearchService(cfg.Prompts, g, ctx.buildSource(cfg.EnvVars), chats, cfg.EnvVars.RecipeTimeout)
			recipes := search.Search(cmd.Context(), strings.Join(args, " "), user, maxResults)

			out := cmd.OutOrStdout()
			if len(recipes) == 0 {
				fmt.Fprintln(out, "No recipes found")
				return nil
			}
			rows := make([][]string, 0, len(recipes))
			for _, r := range recipes {
				rows = append(rows, []string{
					strconv.Itoa(r.ID),
					truncate(r.Title, 50),
					strconv.FormatFloat(r.Rating, 'f', 1, 64),
					strconv.Itoa(r.NutritionSummary().Calories),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Rating", "Kcal"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", defaultCLIUser, "Conversation owner")
	cmd.Flags().IntVarP(&maxResults, "max", "n", service.DefaultMaxResults, "Maximum number of recipes")
	return cmd
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		user     string
		clearLog bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear a Chef AI conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chats, err := ctx.conversations()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if clearLog {
				if chats.Clear(user) {
					fmt.Fprintf(out, "Cleared history for %s\n", user)
				} else {
					fmt.Fprintf(out, "No history for %s\n", user)
				}
				return nil
			}

			history := chats.History(user)
			if len(history) == 0 {
				fmt.Fprintf(out, "No history for %s\n", user)
				return nil
			}
			const stampLayout = "2006-01-02 15:04"
			rows := make([][]string, 0, len(history))
			for _, m := range history {
				rows = append(rows, []string{
					m.Timestamp.Local().Format(stampLayout),
					string(m.Role),
					truncate(m.Text, 80),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Time", "Role", "Message"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", defaultCLIUser, "Conversation owner")
	cmd.Flags().BoolVar(&clearLog, "clear", false, "Delete the conversation instead of printing it")
	return cmd
}
