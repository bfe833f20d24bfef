package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stitchlink/internal/domain/chat"
	"stitchlink/internal/services"
	"stitchlink/internal/storage"
	"stitchlink/internal/transport/httpdto"
)

const maxAttachmentBytes = 10 << 20

type ChatHandler struct {
	service *services.ChatService
	store   *storage.Client
}

func NewChatHandler(service *services.ChatService, store *storage.Client) *ChatHandler {
	return &ChatHandler{service: service, store: store}
}

func (h *ChatHandler) Ensure(c *gin.Context) {
	actor, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	if actor.Role != chat.RoleCustomer {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("only customers open conversations", "FORBIDDEN"))
		return
	}

	var req httpdto.EnsureConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	conv, err := h.service.Ensure(c.Request.Context(), services.EnsureInput{
		CustomerID:   actor.UserID,
		CustomerName: req.CustomerName,
		TailorID:     req.TailorID,
		TailorUserID: req.TailorUserID,
		OrderID:      req.OrderID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromConversation(conv)))
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	actor, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conversationID, err := parseConversationID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), actor, conversationID, services.SendMessageInput{
		Text:           req.Text,
		AttachmentURL:  req.AttachmentURL,
		AttachmentKind: req.AttachmentKind,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromMessage(msg)))
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	actor, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conversationID, err := parseConversationID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), actor, conversationID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("marked read"))
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	actor, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conversationID, err := parseConversationID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	// before= pages backwards through history; the default after= path is
	// the polling read.
	if raw := c.Query("before"); raw != "" {
		before, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid before timestamp", "INVALID_REQUEST"))
			return
		}
		messages, lerr := h.service.ListMessagesBefore(c.Request.Context(), actor, conversationID, before, limit)
		if lerr != nil {
			respondError(c, lerr)
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListMessagesResponse{
			Messages: httpdto.FromMessageSlice(messages),
		}))
		return
	}

	var after time.Time
	if raw := c.Query("after"); raw != "" {
		after, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid after timestamp", "INVALID_REQUEST"))
			return
		}
	}

	messages, err := h.service.ListMessagesSince(c.Request.Context(), actor, conversationID, after, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListMessagesResponse{
		Messages: httpdto.FromMessageSlice(messages),
	}))
}

func (h *ChatHandler) List(c *gin.Context) {
	actor, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	conversations, total, err := h.service.ListConversations(c.Request.Context(), actor, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListConversationsResponse{
		Conversations: httpdto.FromConversationSlice(conversations),
		Total:         total,
	}))
}

func (h *ChatHandler) GetByID(c *gin.Context) {
	actor, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conversationID, err := parseConversationID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}

	conv, err := h.service.GetByID(c.Request.Context(), actor, conversationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromConversation(conv)))
}

// UploadAttachment stores a raw request body in object storage and returns
// the URL to reference from a later SendMessage call.
func (h *ChatHandler) UploadAttachment(c *gin.Context) {
	if _, ok := services.IdentityFromContext(c.Request.Context()); !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("attachment storage is not configured", "STORAGE_UNAVAILABLE"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAttachmentBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("could not read attachment body", "INVALID_REQUEST"))
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("attachment body is empty", "INVALID_REQUEST"))
		return
	}
	if len(data) > maxAttachmentBytes {
		c.JSON(http.StatusRequestEntityTooLarge, httpdto.NewErrorResponse("attachment exceeds size limit", "TOO_LARGE"))
		return
	}

	url, kind, err := h.store.Store(c.Request.Context(), data, c.ContentType())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.AttachmentResponse{
		URL:  url,
		Kind: kind,
	}))
}

func parseConversationID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}
