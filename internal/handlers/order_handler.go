package handlers

import (
	"net/http"

	"restbar/internal/apperrors"
	"restbar/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	orderService   services.OrderService
	paymentService services.PaymentService
}

func NewOrderHandler(orderService services.OrderService, paymentService services.PaymentService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		paymentService: paymentService,
	}
}

func (h *OrderHandler) GetAll(c *gin.Context) {
	orders, err := h.orderService.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	order, err := h.orderService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request format"})
		return
	}
	req.CreatedBy = staffID(c)
	req.CreatorRole = staffRole(c)

	order, err := h.orderService.CreateOrder(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request format"})
		return
	}

	order, err := h.orderService.UpdateStatus(c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateItems(c *gin.Context) {
	var req struct {
		Items []services.OrderItemInput `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request format"})
		return
	}

	if err := h.orderService.UpdateItems(c.Param("id"), req.Items); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order items replaced"})
}

func (h *OrderHandler) UpdateItemStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request format"})
		return
	}

	item, err := h.orderService.UpdateItemStatus(c.Param("id"), c.Param("itemId"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *OrderHandler) AddPayment(c *gin.Context) {
	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
		Method string          `json:"method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request format"})
		return
	}

	payment, err := h.paymentService.AddPayment(c.Param("id"), req.Amount, req.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *OrderHandler) Split(c *gin.Context) {
	var req struct {
		Splits []services.SplitInput `json:"splits" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request format"})
		return
	}

	splits, err := h.paymentService.SplitOrder(c.Param("id"), req.Splits)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, splits)
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.Status(err), gin.H{"message": apperrors.Message(err)})
}
