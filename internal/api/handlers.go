package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/matheusmosca/inventory-engine/internal/inventory"
)

// InventoryUseCase define a interface do engine consumida pelos handlers
type InventoryUseCase interface {
	AddProduct(ctx context.Context, name, category string, price decimal.Decimal, quantity int) (inventory.Product, error)
	DeleteProduct(ctx context.Context, id int64) (inventory.Product, error)
	GetProduct(ctx context.Context, id int64) (inventory.Product, error)
	ListProducts(ctx context.Context) []inventory.Product
	SearchProducts(ctx context.Context, name string) []inventory.Product
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (decimal.Decimal, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (int, error)
	UpdateProduct(ctx context.Context, id int64, price decimal.Decimal, quantity int) (inventory.Product, error)
	EnqueueOrder(ctx context.Context, productID int64, quantity int) (inventory.Order, error)
	ProcessOrder(ctx context.Context) (inventory.Fulfillment, error)
	ListPendingOrders(ctx context.Context) []inventory.PendingOrder
	Undo(ctx context.Context) (inventory.Operation, error)
	RecentOperations(ctx context.Context, n int) []inventory.Operation
	Statistics(ctx context.Context) inventory.Statistics
}

// InventoryHandler contém os handlers HTTP do inventário
type InventoryHandler struct {
	useCase       InventoryUseCase
	logger        *zap.Logger
	recentDefault int
}

// NewInventoryHandler cria uma nova instância de InventoryHandler.
// recentDefault é o n usado em /api/operations/recent quando a query não informa.
func NewInventoryHandler(useCase InventoryUseCase, logger *zap.Logger, recentDefault int) *InventoryHandler {
	return &InventoryHandler{
		useCase:       useCase,
		logger:        logger,
		recentDefault: recentDefault,
	}
}

// ListProducts lista todos os produtos
func (h *InventoryHandler) ListProducts(c *gin.Context) {
	products := h.useCase.ListProducts(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "products": newProductResponses(products)})
}

// GetProduct busca um produto pelo id
func (h *InventoryHandler) GetProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.useCase.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": newProductResponse(product)})
}

// CreateProduct cria um produto
func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if !h.bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("product.name", req.Name),
		attribute.String("product.category", req.Category),
	)

	product, err := h.useCase.AddProduct(ctx, req.Name, req.Category, req.Price, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "product": newProductResponse(product)})
}

// DeleteProduct remove um produto
func (h *InventoryHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.useCase.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": newProductResponse(product)})
}

// UpdatePrice altera o preço de um produto
func (h *InventoryHandler) UpdatePrice(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	var req UpdatePriceRequest
	if !h.bind(c, &req) {
		return
	}

	previous, err := h.useCase.UpdatePrice(c.Request.Context(), id, *req.Price)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "previous_price": previous.InexactFloat64()})
}

// UpdateQuantity altera a quantidade de um produto
func (h *InventoryHandler) UpdateQuantity(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if !h.bind(c, &req) {
		return
	}

	previous, err := h.useCase.UpdateQuantity(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "previous_quantity": previous})
}

// UpdateProduct altera preço e quantidade (dois registros de undo)
func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	var req UpdateProductRequest
	if !h.bind(c, &req) {
		return
	}

	product, err := h.useCase.UpdateProduct(c.Request.Context(), id, *req.Price, *req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": newProductResponse(product)})
}

// SearchProducts busca produtos por substring do nome
func (h *InventoryHandler) SearchProducts(c *gin.Context) {
	products := h.useCase.SearchProducts(c.Request.Context(), c.Query("name"))
	c.JSON(http.StatusOK, gin.H{"success": true, "products": newProductResponses(products)})
}

// ListOrders lista os pedidos pendentes em ordem FIFO
func (h *InventoryHandler) ListOrders(c *gin.Context) {
	pending := h.useCase.ListPendingOrders(c.Request.Context())

	orders := make([]OrderResponse, 0, len(pending))
	for _, o := range pending {
		orders = append(orders, newOrderResponse(o))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// EnqueueOrder enfileira um pedido
func (h *InventoryHandler) EnqueueOrder(c *gin.Context) {
	var req EnqueueOrderRequest
	if !h.bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("product_id", req.ProductID),
		attribute.Int("quantity", req.Quantity),
	)

	order, err := h.useCase.EnqueueOrder(ctx, req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "order": newEnqueuedOrderResponse(order)})
}

// ProcessOrder atende o próximo pedido da fila
func (h *InventoryHandler) ProcessOrder(c *gin.Context) {
	result, err := h.useCase.ProcessOrder(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": newFulfillmentResponse(result)})
}

// Undo desfaz a última operação
func (h *InventoryHandler) Undo(c *gin.Context) {
	op, err := h.useCase.Undo(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"description": op.Description,
		"operation":   newOperationResponse(op),
	})
}

// RecentOperations lista as n operações mais recentes
func (h *InventoryHandler) RecentOperations(c *gin.Context) {
	n := h.recentDefault
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(c, &inventory.Error{Kind: inventory.KindInvalidInput, Message: "n must be an integer"})
			return
		}
		n = parsed
	}

	ops := h.useCase.RecentOperations(c.Request.Context(), n)
	out := make([]OperationResponse, 0, len(ops))
	for _, op := range ops {
		out = append(out, newOperationResponse(op))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "operations": out})
}

// Statistics retorna os agregados do inventário
func (h *InventoryHandler) Statistics(c *gin.Context) {
	stats := h.useCase.Statistics(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "statistics": newStatisticsResponse(stats)})
}

// HealthCheck é o endpoint de health check
func (h *InventoryHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *InventoryHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.respondError(c, &inventory.Error{Kind: inventory.KindInvalidInput, Message: err.Error()})
		return false
	}
	return true
}

func (h *InventoryHandler) productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.respondError(c, &inventory.Error{Kind: inventory.KindInvalidInput, Message: "product id must be an integer"})
		return 0, false
	}
	trace.SpanFromContext(c.Request.Context()).SetAttributes(attribute.Int64("product_id", id))
	return id, true
}

func (h *InventoryHandler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("unexpected error", zap.String("path", c.FullPath()), zap.Error(err))
	}

	span := trace.SpanFromContext(c.Request.Context())
	span.RecordError(err)

	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// statusFor mapeia o Kind do erro para o status HTTP
func statusFor(err error) int {
	var e *inventory.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}

	switch e.Kind {
	case inventory.KindInvalidInput:
		return http.StatusBadRequest
	case inventory.KindNotFound:
		return http.StatusNotFound
	case inventory.KindInsufficientStock:
		return http.StatusUnprocessableEntity
	case inventory.KindEmptyQueue, inventory.KindEmptyLog, inventory.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
