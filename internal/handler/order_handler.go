package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stitchlink/internal/domain/order"
	"stitchlink/internal/services"
	"stitchlink/internal/transport/httpdto"
)

type OrderHandler struct {
	service *services.OrderService
}

func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) Request(c *gin.Context) {
	actor, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.RequestOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	o, err := h.service.Request(c.Request.Context(), actor, services.RequestOrderInput{
		TailorID:          req.TailorID,
		GarmentType:       req.GarmentType,
		FabricOption:      req.FabricOption,
		MeasurementMethod: req.MeasurementMethod,
		Measurements:      req.Measurements,
		Address:           req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromOrder(o)))
}

func (h *OrderHandler) Quote(c *gin.Context) {
	actor, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	orderID, err := parseOrderID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid order id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.QuoteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	in := services.QuoteInput{
		Price:        req.Price,
		DeliveryDays: req.DeliveryDays,
		Note:         req.Note,
	}
	if req.ExpectedDeliveryDate != "" {
		expected, perr := time.Parse(time.RFC3339, req.ExpectedDeliveryDate)
		if perr != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid expected_delivery_date", "INVALID_REQUEST"))
			return
		}
		in.ExpectedDeliveryDate = expected
	}

	o, err := h.service.Quote(c.Request.Context(), actor, orderID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromOrder(o)))
}

func (h *OrderHandler) Accept(c *gin.Context) {
	actor, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	orderID, err := parseOrderID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid order id", "INVALID_REQUEST"))
		return
	}

	o, err := h.service.Accept(c.Request.Context(), actor, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromOrder(o)))
}

func (h *OrderHandler) Advance(c *gin.Context) {
	actor, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	orderID, err := parseOrderID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid order id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.AdvanceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	o, err := h.service.Advance(c.Request.Context(), actor, orderID, order.Status(req.Status), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromOrder(o)))
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	actor, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	orderID, err := parseOrderID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid order id", "INVALID_REQUEST"))
		return
	}

	o, err := h.service.GetByID(c.Request.Context(), actor, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromOrder(o)))
}

func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	orders, total, err := h.service.ListForActor(c.Request.Context(), actor, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListOrdersResponse{
		Orders: httpdto.FromOrderSlice(orders),
		Total:  total,
	}))
}

func parseOrderID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
