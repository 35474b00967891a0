// Package client é o cliente HTTP tipado do serviço de inventário.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/matheusmosca/inventory-engine/internal/api"
)

// APIError é uma resposta {success:false, error} do servidor
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// Client fala com a API HTTP do inventário
type Client struct {
	http *resty.Client
}

// New cria um cliente para baseURL (ex.: http://localhost:8080)
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// do executa a requisição e decodifica result em caso de sucesso.
func (c *Client) do(ctx context.Context, method, path string, body any, query map[string]string, result any) error {
	var apiErr errorBody

	req := c.http.R().SetContext(ctx).SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = resp.Status()
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return nil
}

func productPath(id int64) string {
	return "/api/products/" + strconv.FormatInt(id, 10)
}

// ListProducts lista todos os produtos
func (c *Client) ListProducts(ctx context.Context) ([]api.ProductResponse, error) {
	var out struct {
		Products []api.ProductResponse `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// SearchProducts busca produtos por substring do nome
func (c *Client) SearchProducts(ctx context.Context, name string) ([]api.ProductResponse, error) {
	var out struct {
		Products []api.ProductResponse `json:"products"`
	}
	query := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodGet, "/api/products/search", nil, query, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// GetProduct busca um produto pelo id
func (c *Client) GetProduct(ctx context.Context, id int64) (api.ProductResponse, error) {
	var out struct {
		Product api.ProductResponse `json:"product"`
	}
	err := c.do(ctx, http.MethodGet, productPath(id), nil, nil, &out)
	return out.Product, err
}

// CreateProduct cria um produto
func (c *Client) CreateProduct(ctx context.Context, req api.CreateProductRequest) (api.ProductResponse, error) {
	var out struct {
		Product api.ProductResponse `json:"product"`
	}
	err := c.do(ctx, http.MethodPost, "/api/products", req, nil, &out)
	return out.Product, err
}

// DeleteProduct remove um produto e retorna o produto removido
func (c *Client) DeleteProduct(ctx context.Context, id int64) (api.ProductResponse, error) {
	var out struct {
		Product api.ProductResponse `json:"product"`
	}
	err := c.do(ctx, http.MethodDelete, productPath(id), nil, nil, &out)
	return out.Product, err
}

// UpdatePrice altera o preço e retorna o preço anterior
func (c *Client) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (float64, error) {
	var out struct {
		PreviousPrice float64 `json:"previous_price"`
	}
	err := c.do(ctx, http.MethodPut, productPath(id)+"/price", api.UpdatePriceRequest{Price: &price}, nil, &out)
	return out.PreviousPrice, err
}

// UpdateQuantity altera a quantidade e retorna a quantidade anterior
func (c *Client) UpdateQuantity(ctx context.Context, id int64, quantity int) (int, error) {
	var out struct {
		PreviousQuantity int `json:"previous_quantity"`
	}
	err := c.do(ctx, http.MethodPut, productPath(id)+"/quantity", api.UpdateQuantityRequest{Quantity: &quantity}, nil, &out)
	return out.PreviousQuantity, err
}

// UpdateProduct altera preço e quantidade em uma chamada
func (c *Client) UpdateProduct(ctx context.Context, id int64, price decimal.Decimal, quantity int) (api.ProductResponse, error) {
	var out struct {
		Product api.ProductResponse `json:"product"`
	}
	body := api.UpdateProductRequest{Price: &price, Quantity: &quantity}
	err := c.do(ctx, http.MethodPut, productPath(id), body, nil, &out)
	return out.Product, err
}

// ListOrders lista os pedidos pendentes
func (c *Client) ListOrders(ctx context.Context) ([]api.OrderResponse, error) {
	var out struct {
		Orders []api.OrderResponse `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// EnqueueOrder enfileira um pedido
func (c *Client) EnqueueOrder(ctx context.Context, productID int64, quantity int) (api.EnqueuedOrderResponse, error) {
	var out struct {
		Order api.EnqueuedOrderResponse `json:"order"`
	}
	body := api.EnqueueOrderRequest{ProductID: productID, Quantity: quantity}
	err := c.do(ctx, http.MethodPost, "/api/orders", body, nil, &out)
	return out.Order, err
}

// ProcessOrder atende o próximo pedido
func (c *Client) ProcessOrder(ctx context.Context) (api.FulfillmentResponse, error) {
	var out struct {
		Order api.FulfillmentResponse `json:"order"`
	}
	err := c.do(ctx, http.MethodPost, "/api/orders/process", nil, nil, &out)
	return out.Order, err
}

// Undo desfaz a última operação e retorna o registro revertido
func (c *Client) Undo(ctx context.Context) (api.OperationResponse, error) {
	var out struct {
		Operation api.OperationResponse `json:"operation"`
	}
	err := c.do(ctx, http.MethodPost, "/api/operations/undo", nil, nil, &out)
	return out.Operation, err
}

// RecentOperations lista as n operações mais recentes; n <= 0 usa o padrão do servidor
func (c *Client) RecentOperations(ctx context.Context, n int) ([]api.OperationResponse, error) {
	var out struct {
		Operations []api.OperationResponse `json:"operations"`
	}
	var query map[string]string
	if n > 0 {
		query = map[string]string{"n": strconv.Itoa(n)}
	}
	if err := c.do(ctx, http.MethodGet, "/api/operations/recent", nil, query, &out); err != nil {
		return nil, err
	}
	return out.Operations, nil
}

// Statistics busca os agregados do inventário
func (c *Client) Statistics(ctx context.Context) (api.StatisticsResponse, error) {
	var out struct {
		Statistics api.StatisticsResponse `json:"statistics"`
	}
	err := c.do(ctx, http.MethodGet, "/api/statistics", nil, nil, &out)
	return out.Statistics, err
}
