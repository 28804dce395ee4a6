package handler

import (
	"context"
	"net/http"

	"buyinbuyout/internal/service"
	"buyinbuyout/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PurchaseRequestHandler struct {
	requests service.PurchaseRequestService
	items    service.ItemService
	log      logrus.FieldLogger
}

func NewPurchaseRequestHandler(requests service.PurchaseRequestService, items service.ItemService, log logrus.FieldLogger) *PurchaseRequestHandler {
	return &PurchaseRequestHandler{requests: requests, items: items, log: log}
}

// HistoryPage is one page of approval history for a purchase request
type HistoryPage struct {
	History []service.ApprovalHistoryResponse `json:"history"`
	Total   int64                             `json:"total"`
	Page    int                               `json:"page"`
	Limit   int                               `json:"limit"`
}

// RegisterRoutes binds /requests; every route requires a bearer token
func (h *PurchaseRequestHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	requests := router.Group("/requests", requireAuth)
	{
		requests.GET("", h.ListMine)
		requests.POST("", h.Create)
		requests.GET("/reports/summary", h.Summary)
		requests.POST("/createItem", h.CreateItem)
		requests.GET("/:id", h.GetMine)
		requests.PATCH("/:id", h.UpdateMine)
		requests.POST("/:id/submit", h.Submit)
		requests.POST("/:id/approve", h.Approve)
		requests.POST("/:id/reject", h.Reject)
		requests.GET("/:id/history", h.History)
	}
}

// ListMine handles GET /requests
// @Summary      List my purchase requests
// @Description  Newest first
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   service.PurchaseRequestResponse
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /requests [get]
func (h *PurchaseRequestHandler) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.requests.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, "requests.list", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetMine handles GET /requests/:id
// @Summary      Get one of my purchase requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Purchase request ID"
// @Success      200  {object}  service.PurchaseRequestResponse
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /requests/{id} [get]
func (h *PurchaseRequestHandler) GetMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	pr, err := h.requests.GetMine(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, "requests.get", err)
		return
	}
	c.JSON(http.StatusOK, pr)
}

// Create handles POST /requests
// @Summary      Create a purchase request
// @Description  Starts in DRAFT. When item is set the item must exist and is linked to the new request.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePurchaseRequestDTO  true  "Purchase request"
// @Success      201      {object}  service.PurchaseRequestResponse
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /requests [post]
func (h *PurchaseRequestHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req service.CreatePurchaseRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidPayload)
		return
	}

	pr, err := h.requests.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, "requests.create", err)
		return
	}
	c.JSON(http.StatusCreated, pr)
}

// UpdateMine handles PATCH /requests/:id
// @Summary      Update one of my purchase requests
// @Description  Empty fields are left unchanged
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                               true  "Purchase request ID"
// @Param        payload  body      service.UpdatePurchaseRequestDTO  true  "Fields to change"
// @Success      200      {object}  service.PurchaseRequestResponse
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /requests/{id} [patch]
func (h *PurchaseRequestHandler) UpdateMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req service.UpdatePurchaseRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidPayload)
		return
	}

	pr, err := h.requests.UpdateMine(c.Request.Context(), id, userID, req)
	if err != nil {
		respondError(c, h.log, "requests.update", err)
		return
	}
	c.JSON(http.StatusOK, pr)
}

// Submit handles POST /requests/:id/submit
// @Summary      Submit a purchase request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Purchase request ID"
// @Success      200  {object}  service.PurchaseRequestResponse
// @Failure      404  {object}  response.Response
// @Router       /requests/{id}/submit [post]
func (h *PurchaseRequestHandler) Submit(c *gin.Context) {
	h.transition(c, "requests.submit", h.requests.Submit)
}

// Approve handles POST /requests/:id/approve
// @Summary      Approve a purchase request
// @Description  Approvers only. Appends an approval history entry.
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Purchase request ID"
// @Success      200  {object}  service.PurchaseRequestResponse
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /requests/{id}/approve [post]
func (h *PurchaseRequestHandler) Approve(c *gin.Context) {
	h.transition(c, "requests.approve", h.requests.Approve)
}

// Reject handles POST /requests/:id/reject
// @Summary      Reject a purchase request
// @Description  Approvers only. Appends an approval history entry.
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Purchase request ID"
// @Success      200  {object}  service.PurchaseRequestResponse
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /requests/{id}/reject [post]
func (h *PurchaseRequestHandler) Reject(c *gin.Context) {
	h.transition(c, "requests.reject", h.requests.Reject)
}

func (h *PurchaseRequestHandler) transition(c *gin.Context, op string, apply func(ctx context.Context, id, callerID uint) (*service.PurchaseRequestResponse, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	pr, err := apply(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusOK, pr)
}

// History handles GET /requests/:id/history
// @Summary      Approval history
// @Description  Visible to the owner of the request and to approvers
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      int  true   "Purchase request ID"
// @Param        page   query     int  false  "Page number"     default(1)
// @Param        limit  query     int  false  "Items per page"  default(20)
// @Success      200    {object}  HistoryPage
// @Failure      404    {object}  response.Response
// @Router       /requests/{id}/history [get]
func (h *PurchaseRequestHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	page := pagination.Parse(c)

	entries, total, err := h.requests.History(c.Request.Context(), id, userID, page)
	if err != nil {
		respondError(c, h.log, "requests.history", err)
		return
	}

	c.JSON(http.StatusOK, HistoryPage{
		History: entries,
		Total:   total,
		Page:    page.Page,
		Limit:   page.Limit,
	})
}

// Summary handles GET /requests/reports/summary
// @Summary      Count purchase requests per status
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64
// @Router       /requests/reports/summary [get]
func (h *PurchaseRequestHandler) Summary(c *gin.Context) {
	summary, err := h.requests.Summary(c.Request.Context())
	if err != nil {
		respondError(c, h.log, "requests.summary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// CreateItem handles POST /requests/createItem
// @Summary      Create an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateItemRequest  true  "Item"
// @Success      200      {object}  service.ItemResponse
// @Failure      400      {object}  response.Response
// @Router       /requests/createItem [post]
func (h *PurchaseRequestHandler) CreateItem(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgInvalidPayload)
		return
	}

	item, err := h.items.CreateItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, "items.create", err)
		return
	}
	c.JSON(http.StatusOK, item)
}
