package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/matheusmosca/inventory-engine/internal/inventory"
)

// CreateProductRequest representa a requisição para criar um produto
type CreateProductRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// UpdatePriceRequest representa a requisição para alterar o preço
type UpdatePriceRequest struct {
	Price *decimal.Decimal `json:"price" binding:"required"`
}

// UpdateQuantityRequest representa a requisição para alterar a quantidade
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// UpdateProductRequest representa a requisição composta (preço + quantidade)
type UpdateProductRequest struct {
	Price    *decimal.Decimal `json:"price" binding:"required"`
	Quantity *int             `json:"quantity" binding:"required"`
}

// EnqueueOrderRequest representa a requisição para enfileirar um pedido
type EnqueueOrderRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// ProductResponse é o produto no formato do contrato HTTP; dinheiro vai como número JSON.
type ProductResponse struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderResponse é um pedido pendente com o total estimado pelo preço atual
type OrderResponse struct {
	OrderID     int64     `json:"order_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	TotalPrice  float64   `json:"total_price"`
	CreatedAt   time.Time `json:"created_at"`
}

// EnqueuedOrderResponse é o pedido recém-enfileirado
type EnqueuedOrderResponse struct {
	OrderID   int64     `json:"order_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// FulfillmentResponse é o resultado do atendimento de um pedido
type FulfillmentResponse struct {
	OrderID     int64   `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// OperationResponse é um registro do log de operações
type OperationResponse struct {
	ID          string    `json:"id"`
	Sequence    uint64    `json:"sequence"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// StatisticsResponse são os agregados do inventário
type StatisticsResponse struct {
	TotalProducts int     `json:"total_products"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
	Categories    int     `json:"categories"`
	PendingOrders int     `json:"pending_orders"`
}

func newProductResponse(p inventory.Product) ProductResponse {
	return ProductResponse{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price.InexactFloat64(),
		Quantity:  p.Quantity,
	}
}

func newProductResponses(products []inventory.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}
	return out
}

func newOrderResponse(o inventory.PendingOrder) OrderResponse {
	return OrderResponse{
		OrderID:     o.ID,
		ProductID:   o.ProductID,
		ProductName: o.ProductName,
		Quantity:    o.Quantity,
		TotalPrice:  o.TotalPrice.InexactFloat64(),
		CreatedAt:   o.CreatedAt,
	}
}

func newEnqueuedOrderResponse(o inventory.Order) EnqueuedOrderResponse {
	return EnqueuedOrderResponse{
		OrderID:   o.ID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		CreatedAt: o.CreatedAt,
	}
}

func newFulfillmentResponse(f inventory.Fulfillment) FulfillmentResponse {
	return FulfillmentResponse{
		OrderID:     f.OrderID,
		ProductID:   f.ProductID,
		ProductName: f.ProductName,
		Quantity:    f.Quantity,
		UnitPrice:   f.UnitPrice.InexactFloat64(),
		TotalPrice:  f.TotalPrice.InexactFloat64(),
	}
}

func newOperationResponse(op inventory.Operation) OperationResponse {
	return OperationResponse{
		ID:          op.ID.String(),
		Sequence:    op.Sequence,
		Type:        string(op.Kind),
		Description: op.Description,
		Timestamp:   op.Timestamp,
	}
}

func newStatisticsResponse(s inventory.Statistics) StatisticsResponse {
	return StatisticsResponse{
		TotalProducts: s.TotalProducts,
		TotalQuantity: s.TotalQuantity,
		TotalValue:    s.TotalValue.InexactFloat64(),
		Categories:    s.Categories,
		PendingOrders: s.PendingOrders,
	}
}
