package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewUndoCommand cria o comando que desfaz a última operação
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Reverse the most recent operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := rootOpts.client().Undo(cmd.Context())
			if err != nil {
				return requestError("failed to undo", err)
			}
			return rootOpts.output(cmd.OutOrStdout(), op, func(w io.Writer) {
				fmt.Fprintf(w, "Undone: %s\n", op.Description)
			})
		},
	}
}

// NewHistoryCommand cria o comando que lista as operações recentes
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent operations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := rootOpts.client().RecentOperations(cmd.Context(), n)
			if err != nil {
				return requestError("failed to fetch history", err)
			}
			return rootOpts.output(cmd.OutOrStdout(), ops, func(w io.Writer) {
				renderOperations(w, ops)
			})
		},
	}

	cmd.Flags().IntVarP(&n, "number", "n", 0, "how many operations to show (0 uses the server default)")

	return cmd
}

// NewStatsCommand cria o comando de estatísticas
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show inventory statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := rootOpts.client().Statistics(cmd.Context())
			if err != nil {
				return requestError("failed to fetch statistics", err)
			}
			return rootOpts.output(cmd.OutOrStdout(), stats, func(w io.Writer) {
				renderStatistics(w, stats)
			})
		},
	}
}
