package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"restbar/internal/apperrors"
	"restbar/internal/models"
	"restbar/internal/policy"
	"restbar/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type stubOrderService struct {
	createFn       func(*services.CreateOrderRequest) (*models.Order, error)
	updateStatusFn func(string, string) (*models.Order, error)
}

func (s *stubOrderService) CreateOrder(req *services.CreateOrderRequest) (*models.Order, error) {
	return s.createFn(req)
}
func (s *stubOrderService) GetByID(id string) (*models.Order, error) {
	return nil, apperrors.NotFound("order not found")
}
func (s *stubOrderService) GetAll() ([]models.Order, error) { return nil, nil }
func (s *stubOrderService) UpdateStatus(orderID, newStatus string) (*models.Order, error) {
	return s.updateStatusFn(orderID, newStatus)
}
func (s *stubOrderService) UpdateItemStatus(orderID, itemID, newStatus string) (*models.OrderItem, error) {
	return nil, apperrors.NotFound("order item not found")
}
func (s *stubOrderService) UpdateItems(orderID string, items []services.OrderItemInput) error {
	return nil
}

type stubPaymentService struct {
	addPaymentFn func(string, decimal.Decimal, string) (*models.Payment, error)
}

func (s *stubPaymentService) AddPayment(orderID string, amount decimal.Decimal, method string) (*models.Payment, error) {
	return s.addPaymentFn(orderID, amount, method)
}
func (s *stubPaymentService) SplitOrder(orderID string, splits []services.SplitInput) ([]models.SplitAccount, error) {
	return nil, nil
}

func setupOrderRouter(orders services.OrderService, payments services.PaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewOrderHandler(orders, payments)

	api := router.Group("/api")
	api.POST("/orders", Require(policy.OrdersCreate), handler.Create)
	api.PATCH("/orders/:id/status", Require(policy.OrdersStatus), handler.UpdateStatus)
	api.POST("/orders/:id/payments", Require(policy.Payments), handler.AddPayment)
	return router
}

func TestCreateOrderEndpoint(t *testing.T) {
	orders := &stubOrderService{
		createFn: func(req *services.CreateOrderRequest) (*models.Order, error) {
			if req.CreatedBy != "waiter-1" || req.CreatorRole != "WAITER" {
				t.Errorf("staff context not forwarded: %q / %q", req.CreatedBy, req.CreatorRole)
			}
			return &models.Order{ID: "order-1", Type: req.Type, Status: string(models.OrderPending)}, nil
		},
	}
	router := setupOrderRouter(orders, &stubPaymentService{})

	body := `{"type":"TAKEAWAY","items":[{"product_id":"p1","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Staff-Role", "WAITER")
	req.Header.Set("X-Staff-Id", "waiter-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", w.Code, w.Body.String())
	}
	var created models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if created.ID != "order-1" {
		t.Errorf("id = %s, want order-1", created.ID)
	}
}

func TestCreateOrderEndpointForbiddenRole(t *testing.T) {
	router := setupOrderRouter(&stubOrderService{}, &stubPaymentService{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Staff-Role", "KITCHEN")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestCreateOrderEndpointRejectsBadJSON(t *testing.T) {
	router := setupOrderRouter(&stubOrderService{}, &stubPaymentService{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Staff-Role", "WAITER")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUpdateStatusEndpointMapsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperrors.Validation("unknown order status"), http.StatusBadRequest},
		{"not found", apperrors.NotFound("order not found"), http.StatusNotFound},
		{"conflict", apperrors.Conflict("order status changed concurrently"), http.StatusConflict},
		{"storage", apperrors.Storage("write failed", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &stubOrderService{
				updateStatusFn: func(string, string) (*models.Order, error) { return nil, tt.err },
			}
			router := setupOrderRouter(orders, &stubPaymentService{})

			req := httptest.NewRequest(http.MethodPatch, "/api/orders/order-1/status", strings.NewReader(`{"status":"READY"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Staff-Role", "KITCHEN")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAddPaymentEndpointRejectsOverpayment(t *testing.T) {
	payments := &stubPaymentService{
		addPaymentFn: func(orderID string, amount decimal.Decimal, method string) (*models.Payment, error) {
			return nil, apperrors.Validation("payment of 10.00 exceeds remaining balance 0.00")
		},
	}
	router := setupOrderRouter(&stubOrderService{}, payments)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/order-1/payments", strings.NewReader(`{"amount":"10.00","method":"CASH"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Staff-Role", "CASHIER")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !strings.Contains(resp["message"], "exceeds remaining balance") {
		t.Errorf("message = %q, want the balance error", resp["message"])
	}
}
