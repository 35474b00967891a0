package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "inventory-engine"

// Engine é a fachada que serializa todas as mutações sobre Catalog + OrderQueue + OperationLog.
//
// Uma mutação (checagem, alteração e push do registro de undo) acontece inteira sob o lock
// exclusivo. Leituras usam o lock compartilhado: rodam em paralelo entre si, mas nunca
// enxergam uma mutação pela metade.
type Engine struct {
	mu      sync.RWMutex
	catalog *Catalog
	queue   *OrderQueue
	log     *OperationLog

	logger *zap.Logger
	tracer trace.Tracer
	meter  metric.Meter
	clock  func() time.Time

	historyLimit int

	operationsCounter metric.Int64Counter
	failuresCounter   metric.Int64Counter
	undoCounter       metric.Int64Counter
}

// Option configura o Engine
type Option func(*Engine)

// WithLogger define o logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTracer define o tracer usado nos spans de cada caso de uso
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// WithMeter define o meter dos contadores de operação
func WithMeter(meter metric.Meter) Option {
	return func(e *Engine) {
		e.meter = meter
	}
}

// WithClock substitui o relógio (timestamps de pedidos e registros)
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithHistoryLimit limita quantos registros de undo ficam retidos (n <= 0: sem limite).
func WithHistoryLimit(n int) Option {
	return func(e *Engine) {
		e.historyLimit = n
	}
}

// New cria uma nova instância de Engine com estado vazio
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: zap.NewNop(),
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.catalog = NewCatalog()
	e.queue = NewOrderQueue()
	e.log = NewOperationLog(e.historyLimit)
	e.initMetrics()

	return e
}

func (e *Engine) initMetrics() {
	var err error

	e.operationsCounter, err = e.meter.Int64Counter("inventory.operations",
		metric.WithDescription("Successful mutating operations, by kind"))
	if err != nil {
		e.logger.Warn("failed to create operations counter", zap.Error(err))
		e.operationsCounter = noop.Int64Counter{}
	}

	e.failuresCounter, err = e.meter.Int64Counter("inventory.operation_failures",
		metric.WithDescription("Failed operations, by operation and error kind"))
	if err != nil {
		e.logger.Warn("failed to create failures counter", zap.Error(err))
		e.failuresCounter = noop.Int64Counter{}
	}

	e.undoCounter, err = e.meter.Int64Counter("inventory.undo",
		metric.WithDescription("Reversed operations, by kind"))
	if err != nil {
		e.logger.Warn("failed to create undo counter", zap.Error(err))
		e.undoCounter = noop.Int64Counter{}
	}
}

// AddProduct cria um produto e registra o undo correspondente
func (e *Engine) AddProduct(ctx context.Context, name, category string, price decimal.Decimal, quantity int) (Product, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.add_product")
	defer span.End()

	e.logger.Info("➡️ [ADD PRODUCT]",
		zap.String("name", name), zap.String("category", category),
		zap.String("price", price.String()), zap.Int("quantity", quantity))

	e.mu.Lock()
	defer e.mu.Unlock()

	product, err := e.catalog.Add(name, category, price, quantity)
	if err != nil {
		return Product{}, e.fail(ctx, span, "ADD PRODUCT", err)
	}

	e.record(ctx, addProductPayload{product: product},
		fmt.Sprintf("Added product %q (id %d, %d @ %s)", product.Name, product.ID, product.Quantity, product.Price.StringFixed(2)))

	span.SetAttributes(attribute.Int64("product_id", product.ID))
	e.logger.Info("✅ [ADD PRODUCT] Success", zap.Int64("product_id", product.ID))
	return product, nil
}

// DeleteProduct remove um produto definitivamente. Pedidos pendentes que o referenciam
// continuam na fila e serão descartados no atendimento.
func (e *Engine) DeleteProduct(ctx context.Context, id int64) (Product, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.delete_product")
	defer span.End()
	span.SetAttributes(attribute.Int64("product_id", id))

	e.logger.Info("➡️ [DELETE PRODUCT]", zap.Int64("product_id", id))

	e.mu.Lock()
	defer e.mu.Unlock()

	product, err := e.catalog.Delete(id)
	if err != nil {
		return Product{}, e.fail(ctx, span, "DELETE PRODUCT", err)
	}

	e.record(ctx, deleteProductPayload{product: product},
		fmt.Sprintf("Deleted product %q (id %d)", product.Name, product.ID))

	e.logger.Info("✅ [DELETE PRODUCT] Success", zap.Int64("product_id", id))
	return product, nil
}

// UpdatePrice altera o preço e retorna o preço anterior
func (e *Engine) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (decimal.Decimal, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.update_price")
	defer span.End()
	span.SetAttributes(attribute.Int64("product_id", id))

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.updatePriceLocked(ctx, span, id, price)
}

func (e *Engine) updatePriceLocked(ctx context.Context, span trace.Span, id int64, price decimal.Decimal) (decimal.Decimal, error) {
	e.logger.Info("➡️ [UPDATE PRICE]", zap.Int64("product_id", id), zap.String("price", price.String()))

	previous, err := e.catalog.SetPrice(id, price)
	if err != nil {
		return decimal.Zero, e.fail(ctx, span, "UPDATE PRICE", err)
	}

	product, _ := e.catalog.Get(id)
	e.record(ctx, updatePricePayload{productID: id, previous: previous, next: price},
		fmt.Sprintf("Updated price of %q (id %d) from %s to %s",
			product.Name, id, previous.StringFixed(2), price.StringFixed(2)))

	e.logger.Info("✅ [UPDATE PRICE] Success", zap.Int64("product_id", id))
	return previous, nil
}

// UpdateQuantity altera a quantidade e retorna a quantidade anterior
func (e *Engine) UpdateQuantity(ctx context.Context, id int64, quantity int) (int, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.update_quantity")
	defer span.End()
	span.SetAttributes(attribute.Int64("product_id", id))

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.updateQuantityLocked(ctx, span, id, quantity)
}

func (e *Engine) updateQuantityLocked(ctx context.Context, span trace.Span, id int64, quantity int) (int, error) {
	e.logger.Info("➡️ [UPDATE QUANTITY]", zap.Int64("product_id", id), zap.Int("quantity", quantity))

	previous, err := e.catalog.SetQuantity(id, quantity)
	if err != nil {
		return 0, e.fail(ctx, span, "UPDATE QUANTITY", err)
	}

	product, _ := e.catalog.Get(id)
	e.record(ctx, updateQuantityPayload{productID: id, previous: previous, next: quantity},
		fmt.Sprintf("Updated quantity of %q (id %d) from %d to %d", product.Name, id, previous, quantity))

	e.logger.Info("✅ [UPDATE QUANTITY] Success", zap.Int64("product_id", id))
	return previous, nil
}

// UpdateProduct aplica preço e depois quantidade como duas operações separadas,
// cada uma com o seu registro de undo. As entradas são validadas antes, então uma
// quantidade inválida não deixa o preço aplicado pela metade.
func (e *Engine) UpdateProduct(ctx context.Context, id int64, price decimal.Decimal, quantity int) (Product, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.update_product")
	defer span.End()
	span.SetAttributes(attribute.Int64("product_id", id))

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.catalog.Get(id); err != nil {
		return Product{}, e.fail(ctx, span, "UPDATE PRODUCT", err)
	}
	if price.IsNegative() {
		return Product{}, e.fail(ctx, span, "UPDATE PRODUCT",
			newError(KindInvalidInput, "price must not be negative, got %s", price.String()))
	}
	if err := validateQuantity(quantity); err != nil {
		return Product{}, e.fail(ctx, span, "UPDATE PRODUCT", err)
	}

	if _, err := e.updatePriceLocked(ctx, span, id, price); err != nil {
		return Product{}, err
	}
	if _, err := e.updateQuantityLocked(ctx, span, id, quantity); err != nil {
		return Product{}, err
	}

	return e.catalog.Get(id)
}

// EnqueueOrder coloca um pedido no fim da fila. O estoque só é verificado no atendimento.
func (e *Engine) EnqueueOrder(ctx context.Context, productID int64, quantity int) (Order, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.enqueue_order")
	defer span.End()
	span.SetAttributes(attribute.Int64("product_id", productID), attribute.Int("quantity", quantity))

	e.logger.Info("➡️ [ENQUEUE ORDER]", zap.Int64("product_id", productID), zap.Int("quantity", quantity))

	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		return Order{}, e.fail(ctx, span, "ENQUEUE ORDER",
			newError(KindInvalidInput, "order quantity must be positive, got %d", quantity))
	}
	product, err := e.catalog.Get(productID)
	if err != nil {
		return Order{}, e.fail(ctx, span, "ENQUEUE ORDER", err)
	}

	order, err := e.queue.Enqueue(productID, quantity, e.clock())
	if err != nil {
		return Order{}, e.fail(ctx, span, "ENQUEUE ORDER", err)
	}

	e.record(ctx, enqueueOrderPayload{order: order},
		fmt.Sprintf("Enqueued order %d: %d x %q", order.ID, order.Quantity, product.Name))

	span.SetAttributes(attribute.Int64("order_id", order.ID))
	e.logger.Info("✅ [ENQUEUE ORDER] Success", zap.Int64("order_id", order.ID))
	return order, nil
}

// ProcessOrder atende o primeiro pedido da fila.
//
// Falhas:
//   - EmptyQueue se a fila está vazia;
//   - InsufficientStock se o estoque atual não cobre o pedido (o pedido fica na fila);
//   - NotFound se o produto foi removido depois do enqueue (o pedido é descartado).
//
// O total usa o preço vigente no momento do atendimento.
func (e *Engine) ProcessOrder(ctx context.Context) (Fulfillment, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.process_order")
	defer span.End()

	e.logger.Info("➡️ [PROCESS ORDER]")

	e.mu.Lock()
	defer e.mu.Unlock()

	order, err := e.queue.Peek()
	if err != nil {
		return Fulfillment{}, e.fail(ctx, span, "PROCESS ORDER", err)
	}
	span.SetAttributes(attribute.Int64("order_id", order.ID), attribute.Int64("product_id", order.ProductID))

	if _, err := e.catalog.Get(order.ProductID); err != nil {
		// Produto removido depois do enqueue: o pedido nunca poderá ser atendido.
		_, _ = e.queue.Dequeue()
		e.logger.Warn("🗑️ [PROCESS ORDER] Discarding order for deleted product",
			zap.Int64("order_id", order.ID), zap.Int64("product_id", order.ProductID))
		return Fulfillment{}, e.fail(ctx, span, "PROCESS ORDER",
			newError(KindNotFound, "order %d discarded: product %d no longer exists", order.ID, order.ProductID))
	}

	product, err := e.catalog.DecrementQuantity(order.ProductID, order.Quantity)
	if err != nil {
		return Fulfillment{}, e.fail(ctx, span, "PROCESS ORDER", err)
	}
	_, _ = e.queue.Dequeue()

	result := Fulfillment{
		OrderID:     order.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    order.Quantity,
		UnitPrice:   product.Price,
		TotalPrice:  product.Price.Mul(decimal.NewFromInt(int64(order.Quantity))),
	}

	e.record(ctx, processOrderPayload{order: order},
		fmt.Sprintf("Processed order %d: %d x %q for %s",
			order.ID, order.Quantity, product.Name, result.TotalPrice.StringFixed(2)))

	e.logger.Info("✅ [PROCESS ORDER] Success",
		zap.Int64("order_id", order.ID), zap.String("total_price", result.TotalPrice.String()))
	return result, nil
}

// Undo reverte a operação mais recente e retorna o registro consumido.
//
// Se o alvo não está mais no estado registrado o undo falha com Conflict e nada muda,
// nem o estado nem o log.
func (e *Engine) Undo(ctx context.Context) (Operation, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.undo")
	defer span.End()

	e.logger.Info("↩️ [UNDO]")

	e.mu.Lock()
	defer e.mu.Unlock()

	op, err := e.log.Peek()
	if err != nil {
		return Operation{}, e.fail(ctx, span, "UNDO", err)
	}
	span.SetAttributes(
		attribute.String("operation.kind", string(op.Kind)),
		attribute.Int64("operation.sequence", int64(op.Sequence)),
	)

	if err := e.revert(op); err != nil {
		return Operation{}, e.fail(ctx, span, "UNDO", err)
	}
	_, _ = e.log.Pop()

	e.undoCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(op.Kind))))
	e.logger.Info("♻️ [UNDO] Success",
		zap.String("kind", string(op.Kind)), zap.Uint64("sequence", op.Sequence))
	return op, nil
}

// revert aplica o inverso de op. Toda checagem acontece antes de qualquer alteração.
func (e *Engine) revert(op Operation) error {
	switch p := op.payload.(type) {
	case addProductPayload:
		current, err := e.catalog.Get(p.product.ID)
		if err != nil {
			return newError(KindConflict, "cannot undo add: product %d no longer exists", p.product.ID)
		}
		if !current.sameAs(p.product) {
			return newError(KindConflict, "cannot undo add: product %d was modified", p.product.ID)
		}
		_, err = e.catalog.Delete(p.product.ID)
		return err

	case deleteProductPayload:
		return e.catalog.Restore(p.product)

	case updatePricePayload:
		current, err := e.catalog.Get(p.productID)
		if err != nil {
			return newError(KindConflict, "cannot undo price update: product %d no longer exists", p.productID)
		}
		if !current.Price.Equal(p.next) {
			return newError(KindConflict, "cannot undo price update: product %d price changed", p.productID)
		}
		_, err = e.catalog.SetPrice(p.productID, p.previous)
		return err

	case updateQuantityPayload:
		current, err := e.catalog.Get(p.productID)
		if err != nil {
			return newError(KindConflict, "cannot undo quantity update: product %d no longer exists", p.productID)
		}
		if current.Quantity != p.next {
			return newError(KindConflict, "cannot undo quantity update: product %d quantity changed", p.productID)
		}
		_, err = e.catalog.SetQuantity(p.productID, p.previous)
		return err

	case enqueueOrderPayload:
		_, err := e.queue.Remove(p.order.ID)
		return err

	case processOrderPayload:
		if _, err := e.catalog.Get(p.order.ProductID); err != nil {
			return newError(KindConflict, "cannot undo processing of order %d: product %d no longer exists",
				p.order.ID, p.order.ProductID)
		}
		if err := e.catalog.IncrementQuantity(p.order.ProductID, p.order.Quantity); err != nil {
			return err
		}
		e.queue.PushFront(p.order)
		return nil

	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

// GetProduct busca um produto pelo id
func (e *Engine) GetProduct(ctx context.Context, id int64) (Product, error) {
	_, span := e.tracer.Start(ctx, "inventory.get_product")
	defer span.End()

	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.catalog.Get(id)
}

// ListProducts retorna os produtos em ordem crescente de id
func (e *Engine) ListProducts(ctx context.Context) []Product {
	_, span := e.tracer.Start(ctx, "inventory.list_products")
	defer span.End()

	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.catalog.List()
}

// SearchProducts busca produtos por substring do nome, sem diferenciar maiúsculas
func (e *Engine) SearchProducts(ctx context.Context, name string) []Product {
	_, span := e.tracer.Start(ctx, "inventory.search_products")
	defer span.End()
	span.SetAttributes(attribute.String("query", name))

	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.catalog.SearchByName(name)
}

// ListPendingOrders retorna a fila em ordem FIFO, com nome e total estimado pelo preço atual
func (e *Engine) ListPendingOrders(ctx context.Context) []PendingOrder {
	_, span := e.tracer.Start(ctx, "inventory.list_pending_orders")
	defer span.End()

	e.mu.RLock()
	defer e.mu.RUnlock()

	orders := e.queue.List()
	out := make([]PendingOrder, 0, len(orders))
	for _, o := range orders {
		pending := PendingOrder{Order: o, TotalPrice: decimal.Zero}
		if p, err := e.catalog.Get(o.ProductID); err == nil {
			pending.ProductName = p.Name
			pending.TotalPrice = p.Price.Mul(decimal.NewFromInt(int64(o.Quantity)))
		}
		out = append(out, pending)
	}
	return out
}

// RecentOperations retorna os n registros mais recentes, do mais novo para o mais antigo
func (e *Engine) RecentOperations(ctx context.Context, n int) []Operation {
	_, span := e.tracer.Start(ctx, "inventory.recent_operations")
	defer span.End()

	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.log.Recent(n)
}

// Statistics calcula os agregados sobre o estado atual
func (e *Engine) Statistics(ctx context.Context) Statistics {
	_, span := e.tracer.Start(ctx, "inventory.statistics")
	defer span.End()

	e.mu.RLock()
	defer e.mu.RUnlock()

	return computeStatistics(e.catalog, e.queue)
}

// record empilha o registro de undo. Deve ser chamado com o lock exclusivo.
func (e *Engine) record(ctx context.Context, p payload, description string) Operation {
	op := e.log.Push(Operation{
		ID:          uuid.New(),
		Kind:        p.kind(),
		Timestamp:   e.clock(),
		Description: description,
		payload:     p,
	})
	e.operationsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(op.Kind))))
	return op
}

func (e *Engine) fail(ctx context.Context, span trace.Span, operation string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	e.failuresCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("kind", string(KindOf(err))),
	))
	e.logger.Warn(fmt.Sprintf("❌ [%s] FAILED", operation), zap.Error(err))
	return err
}
