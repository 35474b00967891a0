package inventory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return fixedNow }),
	}
	return New(append(base, opts...)...)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type snapshot struct {
	products []Product
	orders   []Order
}

func takeSnapshot(e *Engine) snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return snapshot{products: e.catalog.List(), orders: e.queue.List()}
}

func TestEngine_ExampleScenario(t *testing.T) {
	// Arrange
	ctx := context.Background()
	e := newTestEngine(t)

	// Act
	product, err := e.AddProduct(ctx, "Widget", "Tools", price("9.99"), 100)
	require.NoError(t, err)
	order, err := e.EnqueueOrder(ctx, product.ID, 5)
	require.NoError(t, err)
	result, err := e.ProcessOrder(ctx)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, int64(1), product.ID)
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, "Widget", result.ProductName)
	assert.Equal(t, 5, result.Quantity)
	assert.Equal(t, "49.95", result.TotalPrice.StringFixed(2))

	current, err := e.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 95, current.Quantity)

	undone, err := e.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, OpProcessOrder, undone.Kind)

	pending := e.ListPendingOrders(ctx)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].ID)
	current, _ = e.GetProduct(ctx, product.ID)
	assert.Equal(t, 100, current.Quantity)
}

func TestEngine_ProcessOrderForDeletedProductDiscardsOrder(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	product, _ := e.AddProduct(ctx, "Widget", "Tools", price("9.99"), 100)
	_, err := e.EnqueueOrder(ctx, product.ID, 5)
	require.NoError(t, err)
	_, err = e.DeleteProduct(ctx, product.ID)
	require.NoError(t, err)
	recordsBefore := len(e.RecentOperations(ctx, 100))

	_, err = e.ProcessOrder(ctx)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, e.ListPendingOrders(ctx))
	assert.Len(t, e.RecentOperations(ctx, 100), recordsBefore, "failed processing must not push a record")

	_, err = e.ProcessOrder(ctx)
	assert.ErrorIs(t, err, ErrEmptyQueue)
}

func TestEngine_UndoIsExactInverse(t *testing.T) {
	ctx := context.Background()

	// Cada caso monta um estado inicial e aplica uma única mutação; o undo deve
	// devolver exatamente o snapshot anterior à mutação.
	tests := []struct {
		name   string
		kind   OperationKind
		setup  func(t *testing.T, e *Engine)
		mutate func(t *testing.T, e *Engine)
	}{
		{
			name:  "add product",
			kind:  OpAddProduct,
			setup: func(t *testing.T, e *Engine) { mustAdd(t, e, "Existing", "A", "1.00", 1) },
			mutate: func(t *testing.T, e *Engine) {
				_, err := e.AddProduct(ctx, "Widget", "Tools", price("9.99"), 100)
				require.NoError(t, err)
			},
		},
		{
			name: "delete product",
			kind: OpDeleteProduct,
			setup: func(t *testing.T, e *Engine) {
				mustAdd(t, e, "First", "A", "1.00", 1)
				mustAdd(t, e, "Second", "B", "2.50", 20)
				mustAdd(t, e, "Third", "", "3.00", 0)
			},
			mutate: func(t *testing.T, e *Engine) {
				_, err := e.DeleteProduct(ctx, 2)
				require.NoError(t, err)
			},
		},
		{
			name:  "update price",
			kind:  OpUpdatePrice,
			setup: func(t *testing.T, e *Engine) { mustAdd(t, e, "Widget", "Tools", "9.99", 10) },
			mutate: func(t *testing.T, e *Engine) {
				_, err := e.UpdatePrice(ctx, 1, price("12.00"))
				require.NoError(t, err)
			},
		},
		{
			name:  "update quantity",
			kind:  OpUpdateQuantity,
			setup: func(t *testing.T, e *Engine) { mustAdd(t, e, "Widget", "Tools", "9.99", 10) },
			mutate: func(t *testing.T, e *Engine) {
				_, err := e.UpdateQuantity(ctx, 1, 0)
				require.NoError(t, err)
			},
		},
		{
			name: "enqueue order",
			kind: OpEnqueueOrder,
			setup: func(t *testing.T, e *Engine) {
				mustAdd(t, e, "Widget", "Tools", "9.99", 10)
				_, err := e.EnqueueOrder(ctx, 1, 1)
				require.NoError(t, err)
			},
			mutate: func(t *testing.T, e *Engine) {
				_, err := e.EnqueueOrder(ctx, 1, 2)
				require.NoError(t, err)
			},
		},
		{
			name: "process order",
			kind: OpProcessOrder,
			setup: func(t *testing.T, e *Engine) {
				mustAdd(t, e, "Widget", "Tools", "9.99", 10)
				_, _ = e.EnqueueOrder(ctx, 1, 4)
				_, _ = e.EnqueueOrder(ctx, 1, 3)
			},
			mutate: func(t *testing.T, e *Engine) {
				_, err := e.ProcessOrder(ctx)
				require.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			tt.setup(t, e)
			before := takeSnapshot(e)
			logBefore := e.RecentOperations(ctx, 100)

			tt.mutate(t, e)
			require.NotEqual(t, before, takeSnapshot(e))

			undone, err := e.Undo(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, undone.Kind)
			assert.Equal(t, before, takeSnapshot(e))
			assert.Equal(t, logBefore, e.RecentOperations(ctx, 100))
		})
	}
}

func mustAdd(t *testing.T, e *Engine, name, category, p string, quantity int) Product {
	t.Helper()
	product, err := e.AddProduct(context.Background(), name, category, price(p), quantity)
	require.NoError(t, err)
	return product
}

func TestEngine_UndoWholeHistoryRestoresEmptyState(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	empty := takeSnapshot(e)

	p := mustAdd(t, e, "Widget", "Tools", "9.99", 10)
	_, _ = e.UpdatePrice(ctx, p.ID, price("5.00"))
	_, _ = e.EnqueueOrder(ctx, p.ID, 2)
	_, _ = e.ProcessOrder(ctx)
	_, _ = e.UpdateQuantity(ctx, p.ID, 50)
	_, _ = e.DeleteProduct(ctx, p.ID)

	for i := 0; i < 6; i++ {
		_, err := e.Undo(ctx)
		require.NoError(t, err, "undo #%d", i+1)
	}

	assert.Equal(t, empty, takeSnapshot(e))
	_, err := e.Undo(ctx)
	assert.ErrorIs(t, err, ErrEmptyLog)
}

func TestEngine_UndoDeleteKeepsOriginalID(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	original := mustAdd(t, e, "Widget", "Tools", "9.99", 10)
	_, err := e.DeleteProduct(ctx, original.ID)
	require.NoError(t, err)

	_, err = e.Undo(ctx)
	require.NoError(t, err)

	restored, err := e.GetProduct(ctx, original.ID)
	require.NoError(t, err)
	assert.True(t, restored.sameAs(original))

	next := mustAdd(t, e, "Gadget", "", "1.00", 1)
	assert.Equal(t, int64(2), next.ID)
}

func TestEngine_UndoEnqueueOfDiscardedOrderConflicts(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	p := mustAdd(t, e, "Widget", "Tools", "9.99", 10)
	_, _ = e.EnqueueOrder(ctx, p.ID, 1)
	_, _ = e.DeleteProduct(ctx, p.ID)
	_, err := e.ProcessOrder(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	// undo do delete funciona
	_, err = e.Undo(ctx)
	require.NoError(t, err)
	before := takeSnapshot(e)

	_, err = e.Undo(ctx)

	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, before, takeSnapshot(e))
	top := e.RecentOperations(ctx, 1)
	require.Len(t, top, 1)
	assert.Equal(t, OpEnqueueOrder, top[0].Kind)

	// o pedido descartado nunca volta, então o log fica travado nesse registro
	opsBefore := e.RecentOperations(ctx, 100)
	for i := 0; i < 3; i++ {
		_, err = e.Undo(ctx)
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, opsBefore, e.RecentOperations(ctx, 100))
	assert.Len(t, opsBefore, 2)
}

func TestEngine_FIFOProcessing(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	a := mustAdd(t, e, "A", "", "1.00", 10)
	b := mustAdd(t, e, "B", "", "2.00", 10)
	c := mustAdd(t, e, "C", "", "3.00", 10)

	for _, p := range []Product{a, b, c} {
		_, err := e.EnqueueOrder(ctx, p.ID, 1)
		require.NoError(t, err)
	}

	for _, want := range []string{"A", "B", "C"} {
		result, err := e.ProcessOrder(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, result.ProductName)
	}
}

func TestEngine_InsufficientStockLeavesOrderQueued(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	p := mustAdd(t, e, "Widget", "Tools", "9.99", 3)
	order, _ := e.EnqueueOrder(ctx, p.ID, 5)
	before := takeSnapshot(e)
	recordsBefore := e.RecentOperations(ctx, 100)

	_, err := e.ProcessOrder(ctx)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, before, takeSnapshot(e))
	assert.Equal(t, recordsBefore, e.RecentOperations(ctx, 100))

	pending := e.ListPendingOrders(ctx)
	require.Len(t, pending, 1)
	assert.Equal(t, order.ID, pending[0].ID)

	// com estoque reposto o mesmo pedido é atendido
	_, err = e.UpdateQuantity(ctx, p.ID, 5)
	require.NoError(t, err)
	result, err := e.ProcessOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, order.ID, result.OrderID)
	current, _ := e.GetProduct(ctx, p.ID)
	assert.Equal(t, 0, current.Quantity)
}

func TestEngine_PriceIsTakenAtFulfillment(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	p := mustAdd(t, e, "Widget", "Tools", "9.99", 10)
	_, _ = e.EnqueueOrder(ctx, p.ID, 2)

	_, err := e.UpdatePrice(ctx, p.ID, price("20.00"))
	require.NoError(t, err)
	pending := e.ListPendingOrders(ctx)
	require.Len(t, pending, 1)
	assert.Equal(t, "40.00", pending[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "Widget", pending[0].ProductName)

	result, err := e.ProcessOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "40.00", result.TotalPrice.StringFixed(2))
}

func TestEngine_FailedMutationsPushNoRecord(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	p := mustAdd(t, e, "Widget", "Tools", "9.99", 10)
	before := takeSnapshot(e)

	_, err := e.AddProduct(ctx, "", "Tools", price("1.00"), 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.AddProduct(ctx, "Bad", "Tools", price("-1.00"), 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.DeleteProduct(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.UpdatePrice(ctx, p.ID, price("-0.01"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.UpdateQuantity(ctx, 99, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.EnqueueOrder(ctx, 99, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.EnqueueOrder(ctx, p.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.ProcessOrder(ctx)
	assert.ErrorIs(t, err, ErrEmptyQueue)

	assert.Equal(t, before, takeSnapshot(e))
	ops := e.RecentOperations(ctx, 100)
	require.Len(t, ops, 1)
	assert.Equal(t, OpAddProduct, ops[0].Kind)
}

func TestEngine_UpdateProductPushesTwoRecords(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	p := mustAdd(t, e, "Widget", "Tools", "9.99", 10)

	t.Run("Success", func(t *testing.T) {
		updated, err := e.UpdateProduct(ctx, p.ID, price("4.50"), 7)
		require.NoError(t, err)
		assert.Equal(t, "4.50", updated.Price.StringFixed(2))
		assert.Equal(t, 7, updated.Quantity)

		ops := e.RecentOperations(ctx, 2)
		require.Len(t, ops, 2)
		assert.Equal(t, OpUpdateQuantity, ops[0].Kind)
		assert.Equal(t, OpUpdatePrice, ops[1].Kind)

		// undo granular: primeiro a quantidade, depois o preço
		_, err = e.Undo(ctx)
		require.NoError(t, err)
		current, _ := e.GetProduct(ctx, p.ID)
		assert.Equal(t, 10, current.Quantity)
		assert.Equal(t, "4.50", current.Price.StringFixed(2))

		_, err = e.Undo(ctx)
		require.NoError(t, err)
		current, _ = e.GetProduct(ctx, p.ID)
		assert.Equal(t, "9.99", current.Price.StringFixed(2))
	})

	t.Run("Fail on invalid quantity applies nothing", func(t *testing.T) {
		before := takeSnapshot(e)
		opsBefore := e.RecentOperations(ctx, 100)

		_, err := e.UpdateProduct(ctx, p.ID, price("1.00"), -1)

		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, before, takeSnapshot(e))
		assert.Equal(t, opsBefore, e.RecentOperations(ctx, 100))
	})

	t.Run("Fail on quantity above max applies nothing", func(t *testing.T) {
		before := takeSnapshot(e)

		_, err := e.UpdateProduct(ctx, p.ID, price("1.00"), MaxQuantity+1)

		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, before, takeSnapshot(e))
	})

	t.Run("Fail on unknown product", func(t *testing.T) {
		_, err := e.UpdateProduct(ctx, 404, price("1.00"), 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestEngine_RecentOperations(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	p := mustAdd(t, e, "Widget", "Tools", "9.99", 10)
	_, _ = e.UpdatePrice(ctx, p.ID, price("12.50"))

	ops := e.RecentOperations(ctx, 10)

	require.Len(t, ops, 2)
	assert.Equal(t, OpUpdatePrice, ops[0].Kind)
	assert.Equal(t, `Updated price of "Widget" (id 1) from 9.99 to 12.50`, ops[0].Description)
	assert.Equal(t, uint64(2), ops[0].Sequence)
	assert.Equal(t, fixedNow, ops[0].Timestamp)
	assert.NotEqual(t, ops[0].ID, ops[1].ID)
	assert.Equal(t, OpAddProduct, ops[1].Kind)

	// leitura não destrutiva
	assert.Len(t, e.RecentOperations(ctx, 10), 2)
}

func TestEngine_HistoryLimitStillUndoesLatest(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, WithHistoryLimit(2))
	p := mustAdd(t, e, "Widget", "Tools", "9.99", 10)
	_, _ = e.UpdateQuantity(ctx, p.ID, 9)
	_, _ = e.UpdateQuantity(ctx, p.ID, 8)

	assert.Len(t, e.RecentOperations(ctx, 10), 2)

	_, err := e.Undo(ctx)
	require.NoError(t, err)
	_, err = e.Undo(ctx)
	require.NoError(t, err)
	_, err = e.Undo(ctx)
	assert.ErrorIs(t, err, ErrEmptyLog)

	current, _ := e.GetProduct(ctx, p.ID)
	assert.Equal(t, 10, current.Quantity)
}

func TestEngine_StatisticsFollowMutations(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	a := mustAdd(t, e, "Widget", "Tools", "9.99", 100)
	_ = mustAdd(t, e, "Apple", "Food", "0.50", 10)
	_, _ = e.EnqueueOrder(ctx, a.ID, 5)

	stats := e.Statistics(ctx)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, int64(110), stats.TotalQuantity)
	assert.Equal(t, "1004.00", stats.TotalValue.StringFixed(2))
	assert.Equal(t, 2, stats.Categories)
	assert.Equal(t, 1, stats.PendingOrders)

	_, err := e.ProcessOrder(ctx)
	require.NoError(t, err)

	stats = e.Statistics(ctx)
	assert.Equal(t, int64(105), stats.TotalQuantity)
	assert.Equal(t, "954.05", stats.TotalValue.StringFixed(2))
	assert.Equal(t, 0, stats.PendingOrders)
}

func TestEngine_ListProductsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	mustAdd(t, e, "Widget", "Tools", "9.99", 10)
	mustAdd(t, e, "Gadget", "Tools", "19.99", 1)

	assert.Equal(t, e.ListProducts(ctx), e.ListProducts(ctx))
}

func TestEngine_ConcurrentMutationsStayConsistent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	p := mustAdd(t, e, "Widget", "Tools", "1.00", 50)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = e.AddProduct(ctx, fmt.Sprintf("P%d", i), "Bulk", price("2.00"), 3)
			_, _ = e.EnqueueOrder(ctx, p.ID, 3)
			_, _ = e.ProcessOrder(ctx)
			_ = e.Statistics(ctx)
			_ = e.ListProducts(ctx)
		}(i)
	}
	wg.Wait()

	// Drena o que sobrou; só pode falhar por falta de estoque.
	for {
		_, err := e.ProcessOrder(ctx)
		if err != nil {
			assert.True(t, KindOf(err) == KindEmptyQueue || KindOf(err) == KindInsufficientStock)
			break
		}
	}

	stats := e.Statistics(ctx)
	var quantity int64
	value := decimal.Zero
	for _, product := range e.ListProducts(ctx) {
		assert.GreaterOrEqual(t, product.Quantity, 0)
		quantity += int64(product.Quantity)
		value = value.Add(product.Value())
	}
	assert.Equal(t, workers+1, stats.TotalProducts)
	assert.Equal(t, quantity, stats.TotalQuantity)
	assert.True(t, value.Equal(stats.TotalValue))

	widget, _ := e.GetProduct(ctx, p.ID)
	assert.Equal(t, 2, widget.Quantity, "16 orders of 3 fit in 50")
}

func TestEngine_RecordsMetricsAndSpans(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	e := newTestEngine(t, WithMeter(mp.Meter("test")), WithTracer(tp.Tracer("test")))
	mustAdd(t, e, "Widget", "Tools", "9.99", 10)
	_, _ = e.DeleteProduct(ctx, 99)
	_, _ = e.Undo(ctx)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, m.Name)
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), totals["inventory.operations"])
	assert.Equal(t, int64(1), totals["inventory.operation_failures"])
	assert.Equal(t, int64(1), totals["inventory.undo"])

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"inventory.add_product", "inventory.delete_product", "inventory.undo"}, names)
}
