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

type PaymentService interface {
	AddPayment(orderID string, amount decimal.Decimal, method string) (*models.Payment, error)
	SplitOrder(orderID string, splits []SplitInput) ([]models.SplitAccount, error)
}

type paymentService struct {
	orderRepo   repository.OrderRepository
	payRepo     repository.PaymentRepository
	splitRepo   repository.SplitAccountRepository
	accountRepo repository.AccountRepository
	bus         events.Publisher
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	payRepo repository.PaymentRepository,
	splitRepo repository.SplitAccountRepository,
	accountRepo repository.AccountRepository,
	bus events.Publisher,
) PaymentService {
	return &paymentService{
		orderRepo:   orderRepo,
		payRepo:     payRepo,
		splitRepo:   splitRepo,
		accountRepo: accountRepo,
		bus:         bus,
	}
}

func (s *paymentService) AddPayment(orderID string, amount decimal.Decimal, method string) (*models.Payment, error) {
	if !amount.IsPositive() {
		return nil, apperrors.Validation("payment amount must be positive")
	}
	if !models.ValidPaymentMethod(method) {
		return nil, apperrors.Newf(apperrors.KindValidation, "unknown payment method %q", method)
	}

	// The ledger re-validates the balance under a row lock; concurrent
	// payments on the same order serialize there.
	payment, err := s.payRepo.Settle(orderID, amount, method)
	if err != nil {
		return nil, err
	}

	s.publishOrder(orderID)
	return payment, nil
}

func (s *paymentService) SplitOrder(orderID string, inputs []SplitInput) ([]models.SplitAccount, error) {
	if len(inputs) == 0 {
		return nil, apperrors.Validation("at least one split is required")
	}

	splits := make([]models.SplitAccount, 0, len(inputs))
	for _, in := range inputs {
		if in.AccountID == "" {
			return nil, apperrors.Validation("every split needs an account_id")
		}
		if !in.Subtotal.IsPositive() {
			return nil, apperrors.Validation("split subtotal must be positive")
		}
		if _, err := s.accountRepo.GetByID(in.AccountID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Newf(apperrors.KindNotFound, "account %s not found", in.AccountID)
			}
			return nil, apperrors.Storage("failed to load account", err)
		}

		split := models.SplitAccount{
			AccountID: in.AccountID,
			Subtotal:  in.Subtotal,
		}
		// Each slice snapshots its own lines, decoupled from the order items.
		for _, item := range in.Items {
			split.Items = append(split.Items, models.SplitItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			})
		}
		splits = append(splits, split)
	}

	created, err := s.splitRepo.CreateForOrder(orderID, splits)
	if err != nil {
		return nil, err
	}

	s.publishOrder(orderID)
	return created, nil
}

func (s *paymentService) publishOrder(orderID string) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return
	}
	s.bus.Publish(events.OrderUpdate, order)
}
