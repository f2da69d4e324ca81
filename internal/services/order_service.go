package services

import (
	"errors"

	"restbar/internal/apperrors"
	"restbar/internal/events"
	"restbar/internal/models"
	"restbar/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Notes     string `json:"notes"`
}

type SplitItemInput struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	Price     decimal.Decimal `json:"price"`
}

type SplitInput struct {
	AccountID string           `json:"account_id" binding:"required"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	Items     []SplitItemInput `json:"items"`
}

type CreateOrderRequest struct {
	Type          string           `json:"type"`
	TableID       *string          `json:"table_id"`
	CustomerID    *string          `json:"customer_id"`
	Items         []OrderItemInput `json:"items" binding:"required"`
	Notes         string           `json:"notes"`
	PaymentMethod string           `json:"payment_method"`
	SplitAccounts []SplitInput     `json:"split_accounts"`

	// Filled by the handler from the authenticated staff context.
	CreatedBy   string `json:"-"`
	CreatorRole string `json:"-"`
}

type OrderService interface {
	CreateOrder(req *CreateOrderRequest) (*models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetAll() ([]models.Order, error)
	UpdateStatus(orderID, newStatus string) (*models.Order, error)
	UpdateItemStatus(orderID, itemID, newStatus string) (*models.OrderItem, error)
	UpdateItems(orderID string, items []OrderItemInput) error
}

type orderService struct {
	orderRepo repository.OrderRepository
	itemRepo  repository.OrderItemRepository
	tableRepo repository.TableRepository
	payRepo   repository.PaymentRepository
	splitRepo repository.SplitAccountRepository
	catalog   CatalogService
	bus       events.Publisher
	taxRate   decimal.Decimal
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	tableRepo repository.TableRepository,
	payRepo repository.PaymentRepository,
	splitRepo repository.SplitAccountRepository,
	catalog CatalogService,
	bus events.Publisher,
	taxRate float64,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		tableRepo: tableRepo,
		payRepo:   payRepo,
		splitRepo: splitRepo,
		catalog:   catalog,
		bus:       bus,
		taxRate:   decimal.NewFromFloat(taxRate),
	}
}

func (s *orderService) CreateOrder(req *CreateOrderRequest) (*models.Order, error) {
	if req.Type != "" && !models.ValidOrderType(req.Type) {
		return nil, apperrors.Newf(apperrors.KindValidation, "unknown order type %q", req.Type)
	}
	if req.Type == string(models.OrderTable) && (req.TableID == nil || *req.TableID == "") {
		return nil, apperrors.Validation("table orders require a table_id")
	}
	if len(req.Items) == 0 {
		return nil, apperrors.Validation("order needs at least one item")
	}
	if req.PaymentMethod != "" && !models.ValidPaymentMethod(req.PaymentMethod) {
		return nil, apperrors.Newf(apperrors.KindValidation, "unknown payment method %q", req.PaymentMethod)
	}

	items, subtotal, hasKitchen, hasBar, err := s.resolveItems(req.Items)
	if err != nil {
		return nil, err
	}

	orderType := req.Type
	if orderType == "" {
		orderType = deriveOrderType(hasKitchen, hasBar, req.CreatorRole)
	}

	tax := subtotal.Mul(s.taxRate).Round(2)
	total := subtotal.Add(tax)

	// Validate the requested splits against the computed total before any
	// write; the ledger re-checks under lock when creating them.
	if len(req.SplitAccounts) > 0 {
		sum := decimal.Zero
		for _, split := range req.SplitAccounts {
			sum = sum.Add(split.Subtotal)
		}
		if sum.Sub(total).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
			return nil, apperrors.Newf(apperrors.KindValidation,
				"split subtotals %s do not add up to order total %s", sum.StringFixed(2), total.StringFixed(2))
		}
	}

	// Table orders gate on the table state machine: only a LIBRE table can
	// be taken. The CAS keeps two waiters from seating the same table.
	if orderType == string(models.OrderTable) {
		affected, err := s.tableRepo.Occupy(*req.TableID, req.CreatedBy, nowFunc())
		if err != nil {
			return nil, apperrors.Storage("failed to occupy table", err)
		}
		if affected == 0 {
			if _, err := s.tableRepo.GetByID(*req.TableID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NotFound("table not found")
				}
				return nil, apperrors.Storage("failed to load table", err)
			}
			return nil, apperrors.Conflict("table is already occupied")
		}
	}

	order := &models.Order{
		Type:          orderType,
		Status:        string(models.OrderPending),
		PaymentStatus: string(models.PaymentPending),
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		Notes:         req.Notes,
		CustomerID:    req.CustomerID,
		CreatedBy:     req.CreatedBy,
		Items:         items,
	}
	if orderType == string(models.OrderTable) {
		order.TableID = req.TableID
	}

	// From here on the table may already be OCCUPIED; a failure is surfaced
	// as a storage error and committed sub-steps are not unwound.
	if err := s.orderRepo.CreateGraph(order); err != nil {
		return nil, apperrors.Storage("failed to persist order", err)
	}

	if req.PaymentMethod != "" {
		payment := &models.Payment{
			OrderID: order.ID,
			Amount:  total,
			Method:  req.PaymentMethod,
			Status:  string(models.PaymentStatePending),
		}
		if err := s.payRepo.CreatePending(payment); err != nil {
			return nil, apperrors.Storage("failed to create pending payment", err)
		}
	}

	if len(req.SplitAccounts) > 0 {
		splits := make([]models.SplitAccount, 0, len(req.SplitAccounts))
		for _, in := range req.SplitAccounts {
			split := models.SplitAccount{
				AccountID: in.AccountID,
				Subtotal:  in.Subtotal,
			}
			for _, item := range in.Items {
				split.Items = append(split.Items, models.SplitItem{
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
					Price:     item.Price,
				})
			}
			splits = append(splits, split)
		}
		if _, err := s.splitRepo.CreateForOrder(order.ID, splits); err != nil {
			if apperrors.KindOf(err) == apperrors.KindValidation {
				return nil, err
			}
			return nil, apperrors.Storage("failed to create split accounts", err)
		}
	}

	created, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, apperrors.Storage("failed to reload order", err)
	}

	s.bus.Publish(events.OrderNew, created)
	if created.TableID != nil {
		s.publishTable(*created.TableID)
	}
	return created, nil
}

func (s *orderService) GetByID(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, apperrors.Storage("failed to load order", err)
	}
	return order, nil
}

func (s *orderService) GetAll() ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll()
	if err != nil {
		return nil, apperrors.Storage("failed to list orders", err)
	}
	return orders, nil
}

func (s *orderService) UpdateStatus(orderID, newStatus string) (*models.Order, error) {
	if !models.ValidOrderStatus(newStatus) {
		return nil, apperrors.Newf(apperrors.KindValidation, "unknown order status %q", newStatus)
	}

	order, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(models.OrderStatus(order.Status), models.OrderStatus(newStatus)) {
		return nil, apperrors.Newf(apperrors.KindValidation,
			"order cannot move from %s to %s", order.Status, newStatus)
	}

	affected, err := s.orderRepo.AdvanceStatus(orderID, []string{order.Status}, newStatus)
	if err != nil {
		return nil, apperrors.Storage("failed to update order status", err)
	}
	if affected == 0 {
		return nil, apperrors.Conflict("order status changed concurrently")
	}

	// An order cannot be READY while containing unready items: entering
	// READY top-down drags every unfinished item along.
	if newStatus == string(models.OrderReady) {
		err := s.itemRepo.BulkAdvance(orderID,
			[]string{string(models.ItemPending), string(models.ItemPreparing)},
			string(models.ItemReady))
		if err != nil {
			return nil, apperrors.Storage("failed to advance order items", err)
		}
	}

	// Delivering the last open order of a table moves the table to billing.
	if newStatus == string(models.OrderDelivered) && order.TableID != nil {
		open, err := s.orderRepo.CountOpenOnTable(*order.TableID, orderID)
		if err != nil {
			return nil, apperrors.Storage("failed to count table orders", err)
		}
		if open == 0 {
			_, err := s.tableRepo.AdvanceStatus(*order.TableID,
				[]string{string(models.TableOccupied), string(models.TableOrdering)},
				string(models.TableBilling))
			if err != nil {
				return nil, apperrors.Storage("failed to advance table status", err)
			}
			s.publishTable(*order.TableID)
		}
	}

	updated, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, apperrors.Storage("failed to reload order", err)
	}
	s.bus.Publish(events.OrderUpdate, updated)
	return updated, nil
}

func (s *orderService) UpdateItemStatus(orderID, itemID, newStatus string) (*models.OrderItem, error) {
	if !models.ValidItemStatus(newStatus) {
		return nil, apperrors.Newf(apperrors.KindValidation, "unknown item status %q", newStatus)
	}

	item, err := s.itemRepo.GetByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order item not found")
		}
		return nil, apperrors.Storage("failed to load order item", err)
	}
	if item.OrderID != orderID {
		return nil, apperrors.NotFound("order item not found")
	}

	if err := s.itemRepo.UpdateStatus(itemID, newStatus); err != nil {
		return nil, apperrors.Storage("failed to update item status", err)
	}
	item.Status = newStatus

	// Bottom-up cascade: the last item reaching READY promotes the order.
	items, err := s.itemRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, apperrors.Storage("failed to load order items", err)
	}
	if AllItemsReady(items) {
		_, err := s.orderRepo.AdvanceStatus(orderID,
			[]string{string(models.OrderPending), string(models.OrderPreparing)},
			string(models.OrderReady))
		if err != nil {
			return nil, apperrors.Storage("failed to promote order", err)
		}
	}

	updated, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, apperrors.Storage("failed to reload order", err)
	}
	s.bus.Publish(events.OrderUpdate, updated)
	return item, nil
}

func (s *orderService) UpdateItems(orderID string, inputs []OrderItemInput) error {
	if len(inputs) == 0 {
		return apperrors.Validation("order needs at least one item")
	}

	items, subtotal, _, _, err := s.resolveItems(inputs)
	if err != nil {
		return err
	}
	tax := subtotal.Mul(s.taxRate).Round(2)
	total := subtotal.Add(tax)

	// Replacement is a pre-dispatch correction; the ledger re-checks that
	// the order is still PENDING under a row lock and rewrites the totals in
	// the same transaction, so a concurrent transition cannot be overwritten.
	if err := s.itemRepo.ReplaceForOrder(orderID, items, subtotal, tax, total); err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.KindNotFound, apperrors.KindConflict:
			return err
		}
		return apperrors.Storage("failed to replace order items", err)
	}

	updated, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return apperrors.Storage("failed to reload order", err)
	}
	s.bus.Publish(events.OrderUpdate, updated)
	return nil
}

// resolveItems snapshots catalog prices into order items and accumulates the
// subtotal, rejecting anything not currently sellable.
func (s *orderService) resolveItems(inputs []OrderItemInput) ([]models.OrderItem, decimal.Decimal, bool, bool, error) {
	items := make([]models.OrderItem, 0, len(inputs))
	subtotal := decimal.Zero
	hasKitchen, hasBar := false, false

	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, decimal.Zero, false, false,
				apperrors.Validation("item quantity must be positive")
		}

		product, err := s.catalog.GetProduct(in.ProductID)
		if err != nil {
			return nil, decimal.Zero, false, false, err
		}
		if !product.Active {
			return nil, decimal.Zero, false, false,
				apperrors.Newf(apperrors.KindUnavailable, "product %s is not available", product.Name)
		}
		if in.Quantity > product.Stock {
			return nil, decimal.Zero, false, false,
				apperrors.Newf(apperrors.KindInsufficientStock,
					"insufficient stock for %s: requested %d, available %d", product.Name, in.Quantity, product.Stock)
		}

		station := StationFor(product.CategoryName)
		if station == string(models.StationBar) {
			hasBar = true
		} else {
			hasKitchen = true
		}

		item := models.OrderItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Price:     product.Price,
			Station:   station,
			Status:    string(models.ItemPending),
			Notes:     in.Notes,
		}
		item.Subtotal = item.LineTotal()
		subtotal = subtotal.Add(item.Subtotal)
		items = append(items, item)
	}
	return items, subtotal, hasKitchen, hasBar, nil
}

// deriveOrderType applies the routing rule for requests that do not name a
// type: single-station orders go to that station; mixed orders go to the
// creator's station, defaulting to the bar.
func deriveOrderType(hasKitchen, hasBar bool, creatorRole string) string {
	if hasKitchen && hasBar {
		if creatorRole == string(models.RoleKitchen) {
			return string(models.OrderKitchen)
		}
		return string(models.OrderBar)
	}
	if hasKitchen {
		return string(models.OrderKitchen)
	}
	return string(models.OrderBar)
}

func (s *orderService) publishTable(tableID string) {
	table, err := s.tableRepo.GetByID(tableID)
	if err != nil {
		return
	}
	s.bus.Publish(events.TableUpdate, table)
}
