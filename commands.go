package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/subscription-bot/server/internal/dialogue/actions"
	"github.com/subscription-bot/server/internal/dialogue/graph"
	"github.com/subscription-bot/server/internal/records"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Check a dialogue document for undefined states and unknown actions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "fsm_config.yaml"
			if v, ok := os.LookupEnv("FSM_CONFIG"); ok {
				path = v
			}
			if len(args) == 1 {
				path = args[0]
			}

			g, err := graph.Load(path)
			if err != nil {
				return err
			}
			problems := graph.Problems(g)
			if err := actions.NewRegistry(actions.Deps{}).Validate(g); err != nil {
				problems = append(problems, err.Error())
			}
			out := cmd.OutOrStdout()
			if len(problems) == 0 {
				fmt.Fprintf(out, "%s: %d states, ok\n", path, len(g.Nodes))
				return nil
			}
			for _, p := range problems {
				fmt.Fprintln(out, p)
			}
			return fmt.Errorf("%s: %d problem(s)", path, len(problems))
		},
	}
}

func newLastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last <user-id>",
		Short: "Print the latest stored submission of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(records.NormalizeID(args[0]), 10, 64)
			if err != nil {
				return fmt.Errorf("user id must be a number: %w", err)
			}
			var cfg records.Config
			if err := envconfig.Process("", &cfg); err != nil {
				return err
			}

			rec, err := records.New(cfg).FindLast(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if rec == nil {
				fmt.Fprintf(out, "no submissions for %d\n", id)
				return nil
			}
			headers := records.DefaultSchema.Headers()
			for i, v := range records.DefaultSchema.Row(*rec) {
				fmt.Fprintf(out, "%s: %v\n", headers[i], v)
			}
			return nil
		},
	}
}
