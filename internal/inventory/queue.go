package inventory

import "time"

// OrderQueue é a fila FIFO de pedidos pendentes.
//
// Como o Catalog, não é segura para uso concorrente; o Engine faz a serialização.
type OrderQueue struct {
	orders []Order
	nextID int64
}

// NewOrderQueue cria uma fila vazia; o primeiro pedido recebe id 1.
func NewOrderQueue() *OrderQueue {
	return &OrderQueue{nextID: 1}
}

// Enqueue adiciona um pedido no fim da fila. A existência do produto é checada pelo Engine.
func (q *OrderQueue) Enqueue(productID int64, quantity int, now time.Time) (Order, error) {
	if quantity <= 0 {
		return Order{}, newError(KindInvalidInput, "order quantity must be positive, got %d", quantity)
	}
	o := Order{
		ID:        q.nextID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
	}
	q.nextID++
	q.orders = append(q.orders, o)
	return o, nil
}

// Peek retorna o primeiro pedido sem removê-lo
func (q *OrderQueue) Peek() (Order, error) {
	if len(q.orders) == 0 {
		return Order{}, newError(KindEmptyQueue, "no pending orders")
	}
	return q.orders[0], nil
}

// Dequeue remove e retorna o primeiro pedido
func (q *OrderQueue) Dequeue() (Order, error) {
	o, err := q.Peek()
	if err != nil {
		return Order{}, err
	}
	q.orders[0] = Order{}
	q.orders = q.orders[1:]
	return o, nil
}

// PushFront devolve um pedido para a frente da fila (undo de atendimento).
func (q *OrderQueue) PushFront(o Order) {
	q.orders = append([]Order{o}, q.orders...)
}

// Remove tira um pedido pendente pelo id. Falha com Conflict se ele não estiver mais na fila.
func (q *OrderQueue) Remove(orderID int64) (Order, error) {
	for i, o := range q.orders {
		if o.ID == orderID {
			q.orders = append(q.orders[:i], q.orders[i+1:]...)
			return o, nil
		}
	}
	return Order{}, newError(KindConflict, "order %d is no longer pending", orderID)
}

// List retorna os pedidos pendentes em ordem FIFO
func (q *OrderQueue) List() []Order {
	out := make([]Order, len(q.orders))
	copy(out, q.orders)
	return out
}

// Len retorna o número de pedidos pendentes
func (q *OrderQueue) Len() int {
	return len(q.orders)
}
