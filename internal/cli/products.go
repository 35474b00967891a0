package cli

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/matheusmosca/inventory-engine/internal/api"
)

// NewProductsCommand agrupa os comandos do catálogo
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "p"},
		Short:   "Manage the product catalog",
	}

	cmd.AddCommand(
		newProductsListCommand(rootOpts),
		newProductsGetCommand(rootOpts),
		newProductsAddCommand(rootOpts),
		newProductsDeleteCommand(rootOpts),
		newProductsSearchCommand(rootOpts),
		newProductsPriceCommand(rootOpts),
		newProductsQuantityCommand(rootOpts),
		newProductsUpdateCommand(rootOpts),
	)

	return cmd
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, WrapExitError(ExitCommandError, fmt.Sprintf("invalid price %q", raw), nil)
	}
	return price, nil
}

func newProductsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all products ordered by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := rootOpts.client().ListProducts(cmd.Context())
			if err != nil {
				return requestError("failed to list products", err)
			}
			return rootOpts.output(cmd.OutOrStdout(), products, func(w io.Writer) {
				renderProducts(w, products)
			})
		},
	}
}

func newProductsGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			product, err := rootOpts.client().GetProduct(cmd.Context(), id)
			if err != nil {
				return requestError("failed to get product", err)
			}
			return rootOpts.output(cmd.OutOrStdout(), product, func(w io.Writer) {
				renderProducts(w, []api.ProductResponse{product})
			})
		},
	}
}

type addProductOptions struct {
	name     string
	category string
	price    string
	quantity int
}

func newProductsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &addProductOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product to the catalog",
		Long: `Add a product to the catalog. The engine assigns the id.

Examples:
  inventory products add --name Widget --category Tools --price 9.99 --quantity 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := parsePrice(opts.price)
			if err != nil {
				return err
			}
			product, err := rootOpts.client().CreateProduct(cmd.Context(), api.CreateProductRequest{
				Name:     opts.name,
				Category: opts.category,
				Price:    price,
				Quantity: opts.quantity,
			})
			if err != nil {
				return requestError("failed to add product", err)
			}
			return rootOpts.output(cmd.OutOrStdout(), product, func(w io.Writer) {
				renderProducts(w, []api.ProductResponse{product})
			})
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "product name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.category, "category", "", "product category")
	cmd.Flags().StringVar(&opts.price, "price", "0", "unit price")
	cmd.Flags().IntVar(&opts.quantity, "quantity", 0, "units in stock")

	return cmd
}

func newProductsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product (undoable)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			product, err := rootOpts.client().DeleteProduct(cmd.Context(), id)
			if err != nil {
				return requestError("failed to delete product", err)
			}
			return rootOpts.output(cmd.OutOrStdout(), product, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted product %d (%s)\n", product.ProductID, product.Name)
			})
		},
	}
}

func newProductsSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Search products by case-insensitive name substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := rootOpts.client().SearchProducts(cmd.Context(), args[0])
			if err != nil {
				return requestError("failed to search products", err)
			}
			return rootOpts.output(cmd.OutOrStdout(), products, func(w io.Writer) {
				renderProducts(w, products)
			})
		},
	}
}

func newProductsPriceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "price <id> <price>",
		Short: "Change a product's price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			price, err := parsePrice(args[1])
			if err != nil {
				return err
			}
			previous, err := rootOpts.client().UpdatePrice(cmd.Context(), id, price)
			if err != nil {
				return requestError("failed to update price", err)
			}
			out := map[string]any{"product_id": id, "previous_price": previous, "price": price.InexactFloat64()}
			return rootOpts.output(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintf(w, "Price of product %d changed from %.2f to %s\n", id, previous, price.StringFixed(2))
			})
		},
	}
}

func newProductsQuantityCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quantity <id> <quantity>",
		Short: "Set a product's stock quantity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			quantity, err := parseInt("quantity", args[1])
			if err != nil {
				return err
			}
			previous, err := rootOpts.client().UpdateQuantity(cmd.Context(), id, quantity)
			if err != nil {
				return requestError("failed to update quantity", err)
			}
			out := map[string]any{"product_id": id, "previous_quantity": previous, "quantity": quantity}
			return rootOpts.output(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintf(w, "Quantity of product %d changed from %d to %d\n", id, previous, quantity)
			})
		},
	}
}

func newProductsUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var price string
	var quantity int

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change price and quantity together (two undo steps)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := parsePrice(price)
			if err != nil {
				return err
			}
			product, err := rootOpts.client().UpdateProduct(cmd.Context(), id, p, quantity)
			if err != nil {
				return requestError("failed to update product", err)
			}
			return rootOpts.output(cmd.OutOrStdout(), product, func(w io.Writer) {
				renderProducts(w, []api.ProductResponse{product})
			})
		},
	}

	cmd.Flags().StringVar(&price, "price", "", "new unit price (required)")
	_ = cmd.MarkFlagRequired("price")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "new stock quantity (required)")
	_ = cmd.MarkFlagRequired("quantity")

	return cmd
}
