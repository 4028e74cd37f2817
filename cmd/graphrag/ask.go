package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	graphrag "github.com/OiherR/TFG-UNIBASQ"
)

func newAskCmd(a *app) *cobra.Command {
	var maxRetries int
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question and print the query and answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := graphrag.New(cmd.Context(), clientOptions(a.cfg, a.logger)...)
			if err != nil {
				return err
			}
			defer client.Close()

			res := client.Ask(cmd.Context(), strings.Join(args, " "), maxRetries)
			return printResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&maxRetries, "max-retries", -1, "Retry bound (default: synthesis.max_retries)")
	return cmd
}

// errUnanswered makes the process exit non-zero without repeating the error text.
var errUnanswered = errors.New("question not answered")

func printResult(w io.Writer, res graphrag.AskResult) error {
	if res.Query != nil {
		fmt.Fprintf(w, "SPARQL:\n%s\n\n", *res.Query)
	}
	if res.OK() {
		fmt.Fprintln(w, *res.Answer)
		return nil
	}
	if res.Error != nil {
		fmt.Fprintf(w, "ERROR: %s\n", *res.Error)
	}
	return errUnanswered
}
