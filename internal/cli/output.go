package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/matheusmosca/inventory-engine/internal/api"
)

// Exit codes dos comandos
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // o servidor recusou a operação
	ExitCommandError = 2 // argumentos inválidos ou servidor inacessível
)

// ExitError carrega o exit code junto com o erro
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError embrulha err com um exit code
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extrai o exit code; erros comuns viram ExitFailure
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

const timeLayout = "2006-01-02 15:04:05"

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderProducts(w io.Writer, products []api.ProductResponse) {
	if len(products) == 0 {
		fmt.Fprintln(w, "no products")
		return
	}

	fmt.Fprintf(w, "%-4s %-20s %-12s %10s %6s\n", "ID", "NAME", "CATEGORY", "PRICE", "QTY")
	for _, p := range products {
		fmt.Fprintf(w, "%-4d %-20s %-12s %10.2f %6d\n", p.ProductID, p.Name, orDash(p.Category), p.Price, p.Quantity)
	}
}

func renderOrders(w io.Writer, orders []api.OrderResponse) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "no pending orders")
		return
	}

	fmt.Fprintf(w, "%-6s %-20s %6s %12s\n", "ORDER", "PRODUCT", "QTY", "EST. TOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%-6d %-20s %6d %12.2f\n", o.OrderID, orDash(o.ProductName), o.Quantity, o.TotalPrice)
	}
}

func renderFulfillment(w io.Writer, f api.FulfillmentResponse) {
	fmt.Fprintf(w, "Processed order %d: %d x %s @ %.2f = %.2f\n",
		f.OrderID, f.Quantity, f.ProductName, f.UnitPrice, f.TotalPrice)
}

func renderOperations(w io.Writer, ops []api.OperationResponse) {
	if len(ops) == 0 {
		fmt.Fprintln(w, "no operations recorded")
		return
	}

	fmt.Fprintf(w, "%-5s %-16s %-19s %s\n", "SEQ", "TYPE", "TIME", "DESCRIPTION")
	for _, op := range ops {
		fmt.Fprintf(w, "%-5d %-16s %-19s %s\n", op.Sequence, op.Type, op.Timestamp.UTC().Format(timeLayout), op.Description)
	}
}

func renderStatistics(w io.Writer, s api.StatisticsResponse) {
	fmt.Fprintf(w, "%-16s %d\n", "Total products:", s.TotalProducts)
	fmt.Fprintf(w, "%-16s %d\n", "Total quantity:", s.TotalQuantity)
	fmt.Fprintf(w, "%-16s %.2f\n", "Total value:", s.TotalValue)
	fmt.Fprintf(w, "%-16s %d\n", "Categories:", s.Categories)
	fmt.Fprintf(w, "%-16s %d\n", "Pending orders:", s.PendingOrders)
}
