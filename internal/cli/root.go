// Package cli implementa o binário inventory: o servidor HTTP e os comandos
// de operador que falam com ele.
package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matheusmosca/inventory-engine/internal/client"
)

// RootOptions são as flags globais de todos os comandos
type RootOptions struct {
	Server string
	Format string // "text" | "json"
}

// ValidFormats são os formatos de saída aceitos
var ValidFormats = []string{"text", "json"}

// NewRootCommand cria o comando raiz
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "In-memory inventory engine",
		Long:  "Serves the inventory engine over HTTP and operates a running instance: products, orders, undo history and statistics.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return WrapExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.Server, "server", "s", "http://localhost:8080", "inventory service base URL")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))
	cmd.AddCommand(NewUndoCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

func (o *RootOptions) client() *client.Client {
	return client.New(o.Server)
}

// output escreve v em JSON ou delega para o renderizador de texto
func (o *RootOptions) output(w io.Writer, v any, text func(io.Writer)) error {
	if o.Format == "json" {
		return writeJSON(w, v)
	}
	text(w)
	return nil
}

// requestError classifica o erro de uma chamada ao servidor
func requestError(action string, err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return WrapExitError(ExitFailure, action, apiErr)
	}
	return WrapExitError(ExitCommandError, action, err)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid id %q", raw), nil)
	}
	return id, nil
}

func parseInt(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid %s %q", name, raw), nil)
	}
	return n, nil
}
