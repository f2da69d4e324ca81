package services

import (
	"errors"
	"strings"
	"time"

	"restbar/internal/apperrors"
	"restbar/internal/models"
	"restbar/internal/redis"
	"restbar/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogProduct is what the order path needs to know about a product:
// current price, sellability and routing category.
type CatalogProduct struct {
	ID           string
	Name         string
	Price        decimal.Decimal
	Active       bool
	Stock        int
	CategoryName string
}

type CatalogService interface {
	GetProduct(id string) (*CatalogProduct, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	cache       *redis.Client
	cacheTTL    time.Duration
}

// NewCatalogService builds the catalog gateway. cache may be nil; lookups
// then always hit the ledger.
func NewCatalogService(productRepo repository.ProductRepository, cache *redis.Client, cacheTTL time.Duration) CatalogService {
	return &catalogService{productRepo: productRepo, cache: cache, cacheTTL: cacheTTL}
}

func (s *catalogService) GetProduct(id string) (*CatalogProduct, error) {
	if s.cache != nil {
		if product, err := s.cache.GetProduct(id); err == nil {
			return toCatalogProduct(product), nil
		}
	}

	product, err := s.productRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "product %s not found", id)
		}
		return nil, apperrors.Storage("failed to load product", err)
	}

	if s.cache != nil {
		// Cache failures only cost a future lookup.
		_ = s.cache.SetProduct(product, s.cacheTTL)
	}
	return toCatalogProduct(product), nil
}

func toCatalogProduct(p *models.Product) *CatalogProduct {
	cp := &CatalogProduct{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price,
		Active: p.Active,
		Stock:  p.Stock,
	}
	if p.Category != nil {
		cp.CategoryName = p.Category.Name
	}
	return cp
}

// StationFor routes an item by its product category: drink categories go to
// the bar, everything else to the kitchen.
func StationFor(categoryName string) string {
	name := strings.ToLower(categoryName)
	if strings.Contains(name, "bebida") || strings.Contains(name, "drink") {
		return string(models.StationBar)
	}
	return string(models.StationKitchen)
}
