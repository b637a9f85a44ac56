package comment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"photoshare/internal/domain/upload"
	"photoshare/internal/pkg/response"
	"photoshare/internal/pkg/validator"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// List godoc
// @Summary List comments of an upload
// @Tags Comments
// @Produce json
// @Param id path int true "Upload ID"
// @Success 200 {array} Comment
// @Failure 400 {object} map[string]interface{}
// @Router /uploads/{id}/comments [get]
func (h *Handler) List(c *gin.Context) {
	uploadID, ok := upload.ParseID(c)
	if !ok {
		return
	}

	items, err := h.svc.List(c.Request.Context(), uploadID)
	if err != nil {
		h.log.Error("list comments failed", zap.Uint64("upload_id", uploadID), zap.Error(err))
		response.Internal(c)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Add godoc
// @Summary Comment on an upload
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path int true "Upload ID"
// @Param request body AddRequest true "Comment and optional name"
// @Success 201 {object} map[string]interface{}
// @Failure 400,404,500 {object} map[string]interface{}
// @Router /uploads/{id}/comments [post]
func (h *Handler) Add(c *gin.Context) {
	uploadID, ok := upload.ParseID(c)
	if !ok {
		return
	}

	var req AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, ErrEmptyComment.Error(), errs)
		return
	}

	id, err := h.svc.Add(c.Request.Context(), uploadID, AddInput{Name: req.Name, Comment: req.Comment})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyComment):
			response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
		case errors.Is(err, ErrUploadNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			h.log.Error("add comment failed", zap.Uint64("upload_id", uploadID), zap.Error(err))
			response.Internal(c)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}
