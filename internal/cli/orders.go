package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewOrdersCommand agrupa os comandos da fila de pedidos
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order", "o"},
		Short:   "Manage the FIFO order queue",
	}

	cmd.AddCommand(
		newOrdersListCommand(rootOpts),
		newOrdersAddCommand(rootOpts),
		newOrdersProcessCommand(rootOpts),
	)

	return cmd
}

func newOrdersListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending orders in fulfillment order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := rootOpts.client().ListOrders(cmd.Context())
			if err != nil {
				return requestError("failed to list orders", err)
			}
			return rootOpts.output(cmd.OutOrStdout(), orders, func(w io.Writer) {
				renderOrders(w, orders)
			})
		},
	}
}

func newOrdersAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id> <quantity>",
		Short: "Enqueue an order; stock is checked only when it is processed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0])
			if err != nil {
				return err
			}
			quantity, err := parseInt("quantity", args[1])
			if err != nil {
				return err
			}
			order, err := rootOpts.client().EnqueueOrder(cmd.Context(), productID, quantity)
			if err != nil {
				return requestError("failed to enqueue order", err)
			}
			return rootOpts.output(cmd.OutOrStdout(), order, func(w io.Writer) {
				fmt.Fprintf(w, "Enqueued order %d: %d x product %d\n", order.OrderID, order.Quantity, order.ProductID)
			})
		},
	}
}

func newOrdersProcessCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Fulfill the oldest pending order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := rootOpts.client().ProcessOrder(cmd.Context())
			if err != nil {
				return requestError("failed to process order", err)
			}
			return rootOpts.output(cmd.OutOrStdout(), result, func(w io.Writer) {
				renderFulfillment(w, result)
			})
		},
	}
}
