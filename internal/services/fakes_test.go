package services

import (
	"sort"
	"sync"
	"time"

	"restbar/internal/apperrors"
	"restbar/internal/events"
	"restbar/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeStore is the shared in-memory ledger behind the fake repositories.
type fakeStore struct {
	mu       sync.Mutex
	orders   map[string]*models.Order
	items    map[string]*models.OrderItem
	tables   map[string]*models.Table
	accounts map[string]*models.Account
	payments map[string][]models.Payment
	splits   map[string][]models.SplitAccount

	// beforeReplace runs before ReplaceForOrder takes the store lock, so a
	// test can interleave a concurrent write ahead of the replacement.
	beforeReplace func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   make(map[string]*models.Order),
		items:    make(map[string]*models.OrderItem),
		tables:   make(map[string]*models.Table),
		accounts: make(map[string]*models.Account),
		payments: make(map[string][]models.Payment),
		splits:   make(map[string][]models.SplitAccount),
	}
}

func (s *fakeStore) addTable(table *models.Table) *models.Table {
	if table.ID == "" {
		table.ID = uuid.New().String()
	}
	s.tables[table.ID] = table
	return table
}

func (s *fakeStore) itemsForOrder(orderID string) []models.OrderItem {
	var out []models.OrderItem
	for _, item := range s.items {
		if item.OrderID == orderID {
			copied := *item
			copied.Subtotal = copied.LineTotal()
			out = append(out, copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- order repository ---

type fakeOrderRepo struct{ s *fakeStore }

func (r *fakeOrderRepo) CreateGraph(order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
		item := order.Items[i]
		r.s.items[item.ID] = &item
	}
	stored := *order
	stored.Items = nil
	r.s.orders[order.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) GetByID(id string) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	copied.Items = r.s.itemsForOrder(id)
	copied.Payments = append([]models.Payment(nil), r.s.payments[id]...)
	copied.SplitAccounts = append([]models.SplitAccount(nil), r.s.splits[id]...)
	if copied.TableID != nil {
		if table, ok := r.s.tables[*copied.TableID]; ok {
			t := *table
			copied.Table = &t
		}
	}
	return &copied, nil
}

func (r *fakeOrderRepo) GetAll() ([]models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Order
	for id := range r.s.orders {
		copied := *r.s.orders[id]
		copied.Items = r.s.itemsForOrder(id)
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeOrderRepo) AdvanceStatus(id string, from []string, to string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return 0, nil
	}
	for _, f := range from {
		if order.Status == f {
			order.Status = to
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeOrderRepo) CountOpenOnTable(tableID, excludeOrderID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, order := range r.s.orders {
		if order.ID == excludeOrderID || order.TableID == nil || *order.TableID != tableID {
			continue
		}
		if order.Status != string(models.OrderDelivered) && order.Status != string(models.OrderCancelled) {
			count++
		}
	}
	return count, nil
}

// --- order item repository ---

type fakeItemRepo struct{ s *fakeStore }

func (r *fakeItemRepo) GetByID(id string) (*models.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeItemRepo) GetByOrderID(orderID string) ([]models.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.itemsForOrder(orderID), nil
}

func (r *fakeItemRepo) UpdateStatus(id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Status = status
	return nil
}

func (r *fakeItemRepo) BulkAdvance(orderID string, from []string, to string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, item := range r.s.items {
		if item.OrderID != orderID {
			continue
		}
		for _, f := range from {
			if item.Status == f {
				item.Status = to
				break
			}
		}
	}
	return nil
}

func (r *fakeItemRepo) ReplaceForOrder(orderID string, items []models.OrderItem, subtotal, tax, total decimal.Decimal) error {
	if r.s.beforeReplace != nil {
		r.s.beforeReplace()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[orderID]
	if !ok {
		return apperrors.NotFound("order not found")
	}
	if order.Status != string(models.OrderPending) {
		return apperrors.Conflict("order items can only be replaced while the order is pending")
	}
	for id, item := range r.s.items {
		if item.OrderID == orderID {
			delete(r.s.items, id)
		}
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		items[i].OrderID = orderID
		item := items[i]
		r.s.items[item.ID] = &item
	}
	order.Subtotal = subtotal
	order.Tax = tax
	order.Total = total
	return nil
}

// --- table repository ---

type fakeTableRepo struct{ s *fakeStore }

func (r *fakeTableRepo) Create(table *models.Table) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.addTable(table)
	return nil
}

func (r *fakeTableRepo) GetByID(id string) (*models.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	table, ok := r.s.tables[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *table
	copied.Accounts = nil
	for _, account := range r.s.accounts {
		if account.TableID != nil && *account.TableID == id {
			copied.Accounts = append(copied.Accounts, *account)
		}
	}
	return &copied, nil
}

func (r *fakeTableRepo) GetAll() ([]models.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Table
	for _, table := range r.s.tables {
		out = append(out, *table)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *fakeTableRepo) Update(table *models.Table) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *table
	r.s.tables[table.ID] = &copied
	return nil
}

func (r *fakeTableRepo) Occupy(id, waiterID string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	table, ok := r.s.tables[id]
	if !ok || table.Status != string(models.TableFree) {
		return 0, nil
	}
	table.Status = string(models.TableOccupied)
	table.WaiterID = &waiterID
	table.OccupiedAt = &at
	return 1, nil
}

func (r *fakeTableRepo) AdvanceStatus(id string, from []string, to string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	table, ok := r.s.tables[id]
	if !ok {
		return 0, nil
	}
	for _, f := range from {
		if table.Status == f {
			table.Status = to
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeTableRepo) SetStatus(id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if table, ok := r.s.tables[id]; ok {
		table.Status = status
	}
	return nil
}

func (r *fakeTableRepo) UpdatePosition(id string, x, y float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if table, ok := r.s.tables[id]; ok {
		table.X = x
		table.Y = y
	}
	return nil
}

func (r *fakeTableRepo) Deactivate(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if table, ok := r.s.tables[id]; ok {
		table.Active = false
	}
	return nil
}

// --- account repository ---

type fakeAccountRepo struct{ s *fakeStore }

func (r *fakeAccountRepo) GetByID(id string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	account, ok := r.s.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) OpenForTable(tableID string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	table, ok := r.s.tables[tableID]
	if !ok {
		return nil, apperrors.NotFound("table not found")
	}
	if table.Status != string(models.TableOccupied) {
		return nil, apperrors.Conflict("table is not occupied")
	}
	for _, account := range r.s.accounts {
		if account.TableID != nil && *account.TableID == tableID && account.Status == string(models.AccountActive) {
			return nil, apperrors.Conflict("table already has an open account")
		}
	}
	account := &models.Account{
		ID:       uuid.New().String(),
		Type:     string(models.AccountShared),
		Status:   string(models.AccountActive),
		TableID:  &tableID,
		OpenedAt: time.Now(),
	}
	r.s.accounts[account.ID] = account
	table.Status = string(models.TableOrdering)
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) CloseForTable(tableID string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, account := range r.s.accounts {
		if account.TableID != nil && *account.TableID == tableID && account.Status == string(models.AccountActive) {
			now := time.Now()
			account.Status = string(models.AccountClosed)
			account.ClosedAt = &now
			if table, ok := r.s.tables[tableID]; ok {
				table.Status = string(models.TableFree)
				table.WaiterID = nil
				table.OccupiedAt = nil
			}
			copied := *account
			return &copied, nil
		}
	}
	return nil, apperrors.Conflict("table has no open account")
}

// --- payment repository ---

type fakePaymentRepo struct{ s *fakeStore }

func (r *fakePaymentRepo) CreatePending(payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	r.s.payments[payment.OrderID] = append(r.s.payments[payment.OrderID], *payment)
	return nil
}

func (r *fakePaymentRepo) GetByOrderID(orderID string) ([]models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]models.Payment(nil), r.s.payments[orderID]...), nil
}

func (r *fakePaymentRepo) sumCompletedLocked(orderID string) decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.s.payments[orderID] {
		if p.Status == string(models.PaymentStateCompleted) {
			total = total.Add(p.Amount)
		}
	}
	return total
}

func (r *fakePaymentRepo) Settle(orderID string, amount decimal.Decimal, method string) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[orderID]
	if !ok {
		return nil, apperrors.NotFound("order not found")
	}
	paid := r.sumCompletedLocked(orderID)
	remaining := order.Total.Sub(paid)
	if amount.GreaterThan(remaining) {
		return nil, apperrors.Newf(apperrors.KindValidation,
			"payment of %s exceeds remaining balance %s", amount.StringFixed(2), remaining.StringFixed(2))
	}
	payment := models.Payment{
		ID:      uuid.New().String(),
		OrderID: orderID,
		Amount:  amount,
		Method:  method,
		Status:  string(models.PaymentStateCompleted),
	}
	r.s.payments[orderID] = append(r.s.payments[orderID], payment)
	if paid.Add(amount).GreaterThanOrEqual(order.Total) {
		order.PaymentStatus = string(models.PaymentPaid)
	} else {
		order.PaymentStatus = string(models.PaymentPartial)
	}
	return &payment, nil
}

// --- split account repository ---

type fakeSplitRepo struct{ s *fakeStore }

func (r *fakeSplitRepo) CreateForOrder(orderID string, splits []models.SplitAccount) ([]models.SplitAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[orderID]
	if !ok {
		return nil, apperrors.NotFound("order not found")
	}
	sum := decimal.Zero
	for _, split := range splits {
		sum = sum.Add(split.Subtotal)
	}
	if sum.Sub(order.Total).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
		return nil, apperrors.Newf(apperrors.KindValidation,
			"split subtotals %s do not add up to order total %s", sum.StringFixed(2), order.Total.StringFixed(2))
	}
	for i := range splits {
		splits[i].ID = uuid.New().String()
		splits[i].OrderID = orderID
		splits[i].Status = string(models.SplitPending)
	}
	r.s.splits[orderID] = append(r.s.splits[orderID], splits...)
	return splits, nil
}

// --- catalog and bus ---

type fakeCatalog struct {
	products map[string]*CatalogProduct
}

func (c *fakeCatalog) GetProduct(id string) (*CatalogProduct, error) {
	product, ok := c.products[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.KindNotFound, "product %s not found", id)
	}
	copied := *product
	return &copied, nil
}

type fakeBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *fakeBus) Publish(eventType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events.Event{Type: eventType, Payload: payload})
}

func (b *fakeBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}
