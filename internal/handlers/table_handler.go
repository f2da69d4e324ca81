package handlers

import (
	"net/http"

	"restbar/internal/models"
	"restbar/internal/services"

	"github.com/gin-gonic/gin"
)

type TableHandler struct {
	tableService services.TableService
}

func NewTableHandler(tableService services.TableService) *TableHandler {
	return &TableHandler{tableService: tableService}
}

func (h *TableHandler) GetAll(c *gin.Context) {
	tables, err := h.tableService.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *TableHandler) GetByID(c *gin.Context) {
	table, err := h.tableService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *TableHandler) Create(c *gin.Context) {
	var req struct {
		Number   int     `json:"number" binding:"required"`
		Capacity int     `json:"capacity"`
		ZoneID   string  `json:"zone_id"`
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request format"})
		return
	}

	table, err := h.tableService.Create(&models.Table{
		Number:   req.Number,
		Capacity: req.Capacity,
		ZoneID:   req.ZoneID,
		X:        req.X,
		Y:        req.Y,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (h *TableHandler) Update(c *gin.Context) {
	table, err := h.tableService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Number   *int     `json:"number"`
		Capacity *int     `json:"capacity"`
		ZoneID   *string  `json:"zone_id"`
		X        *float64 `json:"x"`
		Y        *float64 `json:"y"`
		Active   *bool    `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request format"})
		return
	}

	if req.Number != nil {
		table.Number = *req.Number
	}
	if req.Capacity != nil {
		table.Capacity = *req.Capacity
	}
	if req.ZoneID != nil {
		table.ZoneID = *req.ZoneID
	}
	if req.X != nil {
		table.X = *req.X
	}
	if req.Y != nil {
		table.Y = *req.Y
	}
	if req.Active != nil {
		table.Active = *req.Active
	}

	updated, err := h.tableService.Update(table)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TableHandler) UpdatePosition(c *gin.Context) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request format"})
		return
	}

	table, err := h.tableService.UpdatePosition(c.Param("id"), req.X, req.Y)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *TableHandler) Deactivate(c *gin.Context) {
	table, err := h.tableService.Deactivate(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *TableHandler) Occupy(c *gin.Context) {
	table, err := h.tableService.Occupy(c.Param("id"), staffID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *TableHandler) OpenAccount(c *gin.Context) {
	account, err := h.tableService.OpenAccount(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *TableHandler) CloseAccount(c *gin.Context) {
	account, err := h.tableService.CloseAccount(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *TableHandler) OverrideStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request format"})
		return
	}

	table, err := h.tableService.OverrideStatus(c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}
