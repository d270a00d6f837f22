package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"personabot-backend/internal/domains/ledger"
	"personabot-backend/internal/shared/response"
)

// LedgerHandler xử lý HTTP requests cho ledger domain
type LedgerHandler struct {
	service ledger.LedgerService
}

func NewLedgerHandler(service ledger.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// Show xử lý GET /ledger/:user_id
func (h *LedgerHandler) Show(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	tokens, err := h.service.Show(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ledger.BalanceResp{UserID: userID, Tokens: tokens})
}

// Set xử lý PUT /ledger/:user_id
func (h *LedgerHandler) Set(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req ledger.SetTokensReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	tokens, err := h.service.Set(c.Request.Context(), userID, req.Tokens)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ledger.BalanceResp{UserID: userID, Tokens: tokens})
}

// Add xử lý POST /ledger/:user_id/add
func (h *LedgerHandler) Add(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req ledger.AddTokensReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tokens, err := h.service.Add(c.Request.Context(), userID, req.Delta)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ledger.BalanceResp{UserID: userID, Tokens: tokens})
}

// Spend xử lý POST /ledger/:user_id/spend
func (h *LedgerHandler) Spend(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req ledger.SpendTokensReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tokens, err := h.service.Spend(c.Request.Context(), userID, req.Cost)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ledger.BalanceResp{UserID: userID, Tokens: tokens})
}

// List xử lý GET /ledger?limit=&offset=&search=
func (h *LedgerHandler) List(c *gin.Context) {
	if search := c.Query("search"); search != "" {
		resp, err := h.service.Search(c.Request.Context(), search)
		if err != nil {
			h.handleError(c, err)
			return
		}
		response.Success(c, http.StatusOK, resp)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, resp, &response.Meta{
		Limit:  limit,
		Offset: offset,
	})
}

// RecordOrder xử lý POST /orders
func (h *LedgerHandler) RecordOrder(c *gin.Context) {
	var req ledger.RecordOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.service.RecordOrder(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/orders/"+resp.ID)
	response.Success(c, http.StatusCreated, resp)
}

// GetOrder xử lý GET /orders/:id
func (h *LedgerHandler) GetOrder(c *gin.Context) {
	resp, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ListOrders xử lý GET /users/:user_id/orders
func (h *LedgerHandler) ListOrders(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	resp, err := h.service.ListOrdersByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

func (h *LedgerHandler) parseUserID(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		response.BadRequest(c, "invalid user id")
		return 0, false
	}
	return userID, true
}

func (h *LedgerHandler) handleError(c *gin.Context, err error) {
	switch ledger.GetHTTPStatusCode(err) {
	case http.StatusBadRequest:
		response.BadRequest(c, err.Error())
	case http.StatusNotFound:
		response.NotFound(c, err.Error())
	case http.StatusUnprocessableEntity:
		response.UnprocessableEntity(c, err.Error())
	default:
		response.InternalServerError(c, "internal server error")
	}
}
