package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stitchlink/internal/services"
	"stitchlink/internal/transport/httpdto"
)

type ReviewHandler struct {
	service *services.ReviewService
}

func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) Submit(c *gin.Context) {
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

	var req httpdto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), actor, orderID, services.SubmitReviewInput{
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadySubmitted {
		status = http.StatusOK
	}
	c.JSON(status, httpdto.NewSuccessResponse(httpdto.SubmitReviewResponse{
		Review:           httpdto.FromReview(result.Review),
		AlreadySubmitted: result.AlreadySubmitted,
	}))
}

func (h *ReviewHandler) ListForTailor(c *gin.Context) {
	tailorID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid tailor id", "INVALID_REQUEST"))
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	reviews, total, err := h.service.ListForTailor(c.Request.Context(), uint(tailorID), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListReviewsResponse{
		Reviews: httpdto.FromReviewSlice(reviews),
		Total:   total,
	}))
}
