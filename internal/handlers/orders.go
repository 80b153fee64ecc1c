package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/nikolayk812/storefront/internal/domain"
	"go.uber.org/zap"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// CreateOrder handles POST /api/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid request body",
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Total == nil {
		badRequest(c, "total", "total is required")
		return
	}

	if field, ok := req.outOfRangeAmount(); ok {
		badRequest(c, field, "is out of range")
		return
	}

	order := req.toDomain()
	order.UserID = auth.UserID(c)

	if raw := c.GetHeader(IdempotencyKeyHeader); raw != "" {
		key, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, IdempotencyKeyHeader, "must be a UUID")
			return
		}
		order.IdempotencyKey = &key
	}

	result, created, err := h.orders.SubmitOrder(c.Request.Context(), order)
	if err != nil {
		h.handleError(c, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}

	c.JSON(status, mapOrderToResponse(result, h.currency))
}

// GetOrder handles GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapOrderWithItemsToResponse(order, h.currency))
}

// DeleteOrder handles DELETE /api/orders/:id
func (h *Handlers) DeleteOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(c.Request.Context(), orderID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseOrderID(c *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		badRequest(c, "id", "order id must be a positive integer")
		return 0, false
	}
	return orderID, true
}

// ListOrders handles GET /api/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	filter, field, err := parseOrderFilter(c)
	if err != nil {
		badRequest(c, field, err.Error())
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, mapOrderToResponse(order, h.currency))
	}

	c.JSON(http.StatusOK, resp)
}

// parseOrderFilter reads status (repeated or comma separated),
// created_after, created_before (RFC 3339), limit and offset.
func parseOrderFilter(c *gin.Context) (domain.OrderFilter, string, error) {
	var filter domain.OrderFilter

	for _, raw := range c.QueryArray("status") {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s == "" {
				continue
			}
			status, err := domain.ToOrderStatus(s)
			if err != nil {
				return filter, "status", err
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	var createdAt domain.TimeRange
	for param, dst := range map[string]**time.Time{
		"created_after":  &createdAt.After,
		"created_before": &createdAt.Before,
	} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, param, err
		}
		*dst = &t
	}
	if createdAt.After != nil || createdAt.Before != nil {
		filter.CreatedAt = &createdAt
	}

	for param, dst := range map[string]*int{
		"limit":  &filter.Limit,
		"offset": &filter.Offset,
	} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, param, err
		}
		*dst = n
	}

	return filter, "", nil
}
