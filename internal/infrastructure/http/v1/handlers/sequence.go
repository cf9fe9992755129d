package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"smartshop/internal/core/apperror"
	"smartshop/internal/domain/sequence"
	"smartshop/internal/infrastructure/http/v1/dto"
)

// SequenceHandler serves /sequences.
type SequenceHandler struct {
	*BaseHandler
	service *sequence.Service
}

// NewSequenceHandler creates a new sequence handler.
func NewSequenceHandler(base *BaseHandler, service *sequence.Service) *SequenceHandler {
	return &SequenceHandler{BaseHandler: base, service: service}
}

// List handles GET /sequences.
func (h *SequenceHandler) List(c *gin.Context) {
	configs, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSequences(configs), "Sequences retrieved successfully.")
}

// Next handles GET /sequences/:key/next?increment=bool. Increment defaults to false.
func (h *SequenceHandler) Next(c *gin.Context) {
	key := c.Param("key")
	increment := false
	if raw := c.Query("increment"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("increment must be a boolean").WithDetail("field", "increment"))
			return
		}
		increment = v
	}

	value, err := h.service.Next(c.Request.Context(), key, increment)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NextValueResponse{Key: key, Value: value, Increment: increment}, "Sequence value generated.")
}

// Configure handles PUT /sequences/:key.
func (h *SequenceHandler) Configure(c *gin.Context) {
	var req dto.ConfigureSequenceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cfg, err := h.service.Configure(c.Request.Context(), c.Param("key"), req.ToSettings())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSequence(cfg), "Sequence configured successfully.")
}
