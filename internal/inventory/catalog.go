package inventory

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
	"golang.org/x/text/cases"
)

// MaxQuantity é o maior estoque aceito por produto. Com esse teto a soma de
// Statistics.TotalQuantity cabe em int64 para qualquer catálogo que caiba em memória.
const MaxQuantity = 1_000_000_000

// Catalog guarda os produtos indexados por id.
//
// Catalog não é seguro para uso concorrente: o Engine serializa o acesso.
// Todos os métodos de leitura retornam cópias, nunca ponteiros internos.
type Catalog struct {
	products *btree.Map[int64, *Product]
	nextID   int64
}

// NewCatalog cria um catálogo vazio; o primeiro id atribuído é 1.
func NewCatalog() *Catalog {
	return &Catalog{
		products: btree.NewMap[int64, *Product](32),
		nextID:   1,
	}
}

func validateProductFields(name string, price decimal.Decimal, quantity int) error {
	if strings.TrimSpace(name) == "" {
		return newError(KindInvalidInput, "product name must not be empty")
	}
	if price.IsNegative() {
		return newError(KindInvalidInput, "price must not be negative, got %s", price.String())
	}
	return validateQuantity(quantity)
}

func validateQuantity(quantity int) error {
	if quantity < 0 {
		return newError(KindInvalidInput, "quantity must not be negative, got %d", quantity)
	}
	if quantity > MaxQuantity {
		return newError(KindInvalidInput, "quantity must not exceed %d, got %d", MaxQuantity, quantity)
	}
	return nil
}

// Add cria um produto com o próximo id livre. Ids são monotônicos e nunca reutilizados.
func (c *Catalog) Add(name, category string, price decimal.Decimal, quantity int) (Product, error) {
	if err := validateProductFields(name, price, quantity); err != nil {
		return Product{}, err
	}

	p := &Product{
		ID:       c.nextID,
		Name:     name,
		Category: category,
		Price:    price,
		Quantity: quantity,
	}
	c.nextID++
	c.products.Set(p.ID, p)
	return *p, nil
}

// Restore reinsere um produto com o id original (undo de delete). O id veio de Add,
// então já está abaixo de nextID.
func (c *Catalog) Restore(p Product) error {
	if _, ok := c.products.Get(p.ID); ok {
		return newError(KindConflict, "product %d already exists", p.ID)
	}
	restored := p
	c.products.Set(restored.ID, &restored)
	return nil
}

// Delete remove o produto definitivamente e o retorna.
func (c *Catalog) Delete(id int64) (Product, error) {
	p, ok := c.products.Delete(id)
	if !ok {
		return Product{}, notFoundProduct(id)
	}
	return *p, nil
}

// Get busca um produto pelo id
func (c *Catalog) Get(id int64) (Product, error) {
	p, ok := c.products.Get(id)
	if !ok {
		return Product{}, notFoundProduct(id)
	}
	return *p, nil
}

// List retorna todos os produtos em ordem crescente de id
func (c *Catalog) List() []Product {
	out := make([]Product, 0, c.products.Len())
	c.products.Scan(func(_ int64, p *Product) bool {
		out = append(out, *p)
		return true
	})
	return out
}

// SearchByName retorna os produtos cujo nome contém substr, sem diferenciar maiúsculas.
// substr vazio casa com todos. A ordem é a mesma de List.
func (c *Catalog) SearchByName(substr string) []Product {
	fold := cases.Fold()
	needle := fold.String(substr)

	out := make([]Product, 0)
	c.products.Scan(func(_ int64, p *Product) bool {
		if strings.Contains(fold.String(p.Name), needle) {
			out = append(out, *p)
		}
		return true
	})
	return out
}

// SetPrice altera o preço e retorna o valor anterior
func (c *Catalog) SetPrice(id int64, price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, newError(KindInvalidInput, "price must not be negative, got %s", price.String())
	}
	p, ok := c.products.Get(id)
	if !ok {
		return decimal.Zero, notFoundProduct(id)
	}
	previous := p.Price
	p.Price = price
	return previous, nil
}

// SetQuantity altera a quantidade e retorna o valor anterior
func (c *Catalog) SetQuantity(id int64, quantity int) (int, error) {
	if err := validateQuantity(quantity); err != nil {
		return 0, err
	}
	p, ok := c.products.Get(id)
	if !ok {
		return 0, notFoundProduct(id)
	}
	previous := p.Quantity
	p.Quantity = quantity
	return previous, nil
}

// DecrementQuantity baixa o estoque. A checagem e a baixa acontecem na mesma chamada.
func (c *Catalog) DecrementQuantity(id int64, amount int) (Product, error) {
	if amount <= 0 {
		return Product{}, newError(KindInvalidInput, "decrement amount must be positive, got %d", amount)
	}
	p, ok := c.products.Get(id)
	if !ok {
		return Product{}, notFoundProduct(id)
	}
	if p.Quantity < amount {
		return Product{}, newError(KindInsufficientStock,
			"insufficient stock for product %d: requested %d, available %d", id, amount, p.Quantity)
	}
	p.Quantity -= amount
	return *p, nil
}

// IncrementQuantity devolve estoque (undo de atendimento).
func (c *Catalog) IncrementQuantity(id int64, amount int) error {
	p, ok := c.products.Get(id)
	if !ok {
		return notFoundProduct(id)
	}
	if amount < 0 || amount > MaxQuantity-p.Quantity {
		return newError(KindInvalidInput, "cannot add %d units to product %d: stock would exceed %d", amount, id, MaxQuantity)
	}
	p.Quantity += amount
	return nil
}

// Len retorna o número de produtos
func (c *Catalog) Len() int {
	return c.products.Len()
}

func notFoundProduct(id int64) *Error {
	return newError(KindNotFound, "product %d not found", id)
}
