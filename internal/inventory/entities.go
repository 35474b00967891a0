package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product representa um item do catálogo
type Product struct {
	ID       int64           `json:"product_id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Value retorna price * quantity
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// sameAs compara todos os campos; decimal não pode ser comparado com ==.
func (p Product) sameAs(other Product) bool {
	return p.ID == other.ID &&
		p.Name == other.Name &&
		p.Category == other.Category &&
		p.Price.Equal(other.Price) &&
		p.Quantity == other.Quantity
}

// Order representa um pedido pendente na fila
type Order struct {
	ID        int64     `json:"order_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingOrder é a projeção de um pedido pendente para exibição, com o preço atual do produto.
// ProductName fica vazio e TotalPrice zero quando o produto já foi removido.
type PendingOrder struct {
	Order
	ProductName string          `json:"product_name"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// Fulfillment é o resultado do atendimento de um pedido
type Fulfillment struct {
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// OperationKind representa os tipos de operação reversível
type OperationKind string

const (
	OpAddProduct     OperationKind = "add_product"
	OpDeleteProduct  OperationKind = "delete_product"
	OpUpdatePrice    OperationKind = "update_price"
	OpUpdateQuantity OperationKind = "update_quantity"
	OpEnqueueOrder   OperationKind = "enqueue_order"
	OpProcessOrder   OperationKind = "process_order"
)

// Operation é um registro do log de undo.
//
// Sequence é a posição LIFO (crescente, nunca reutilizada). O payload guarda o estado
// necessário para reverter exatamente a operação e nunca é alterado depois do push.
type Operation struct {
	ID          uuid.UUID     `json:"id"`
	Sequence    uint64        `json:"sequence"`
	Kind        OperationKind `json:"type"`
	Timestamp   time.Time     `json:"timestamp"`
	Description string        `json:"description"`

	payload payload
}

// payload é o estado específico de cada kind para o undo.
type payload interface {
	kind() OperationKind
}

type addProductPayload struct {
	product Product
}

type deleteProductPayload struct {
	product Product
}

type updatePricePayload struct {
	productID int64
	previous  decimal.Decimal
	next      decimal.Decimal
}

type updateQuantityPayload struct {
	productID int64
	previous  int
	next      int
}

type enqueueOrderPayload struct {
	order Order
}

type processOrderPayload struct {
	order Order
}

func (addProductPayload) kind() OperationKind     { return OpAddProduct }
func (deleteProductPayload) kind() OperationKind  { return OpDeleteProduct }
func (updatePricePayload) kind() OperationKind    { return OpUpdatePrice }
func (updateQuantityPayload) kind() OperationKind { return OpUpdateQuantity }
func (enqueueOrderPayload) kind() OperationKind   { return OpEnqueueOrder }
func (processOrderPayload) kind() OperationKind   { return OpProcessOrder }

// Statistics é a visão agregada de catálogo + fila
type Statistics struct {
	TotalProducts int             `json:"total_products"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
	Categories    int             `json:"categories"`
	PendingOrders int             `json:"pending_orders"`
}
