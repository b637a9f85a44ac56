package upload

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"photoshare/internal/pkg/response"
	"photoshare/internal/pkg/validator"
)

// multipartOverhead is allowed on top of the file size limit for the other
// form fields and boundaries.
const multipartOverhead = 1 << 20

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

// List godoc
// @Summary List uploads
// @Tags Uploads
// @Produce json
// @Success 200 {array} Upload
// @Router /uploads [get]
func (h *Handler) List(c *gin.Context) {
	uploads, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, uploads)
}

// Get godoc
// @Summary Get upload metadata by ID
// @Tags Uploads
// @Produce json
// @Param id path int true "Upload ID"
// @Success 200 {object} Upload
// @Failure 400,404 {object} map[string]interface{}
// @Router /uploads/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}
	u, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Search godoc
// @Summary Search uploads by text and tag
// @Tags Uploads
// @Produce json
// @Param q query string false "Matches title or description"
// @Param tag query string false "Matches tags"
// @Success 200 {array} Upload
// @Router /search [get]
func (h *Handler) Search(c *gin.Context) {
	uploads, err := h.service.Search(c.Request.Context(), SearchQuery{
		Q:   c.Query("q"),
		Tag: c.Query("tag"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, uploads)
}

// Leaderboard godoc
// @Summary Uploads ranked by likes, then downloads
// @Tags Uploads
// @Produce json
// @Param month query int false "Calendar month 1-12"
// @Success 200 {array} Upload
// @Failure 400 {object} map[string]interface{}
// @Router /leaderboard [get]
func (h *Handler) Leaderboard(c *gin.Context) {
	month := 0
	if raw := c.Query("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeValidation, ErrInvalidMonth.Error())
			return
		}
		month = m
	}

	uploads, err := h.service.Leaderboard(c.Request.Context(), month)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, uploads)
}

// Upload godoc
// @Summary Upload an image
// @Description Returns the secret code needed to update or delete the upload. It is shown only once.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image to upload"
// @Param title formData string true "Title"
// @Param uploader_name formData string true "Uploader name"
// @Param description formData string false "Description"
// @Param tags formData string false "Comma separated tags"
// @Param auto_delete formData string false "none, 1d, 1w, 2w or 1m"
// @Success 201 {object} CreateResult
// @Failure 400,413,500 {object} map[string]interface{}
// @Router /upload [post]
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxFileSize()+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, ErrFileTooLarge)
			return
		}
		h.fail(c, ErrNoFile)
		return
	}

	result, err := h.service.Create(c.Request.Context(), CreateInput{
		File:         fileHeader,
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Tags:         c.PostForm("tags"),
		UploaderName: c.PostForm("uploader_name"),
		AutoDelete:   c.PostForm("auto_delete"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Like godoc
// @Summary Like an upload
// @Tags Uploads
// @Produce json
// @Param id path int true "Upload ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /like/{id} [post]
func (h *Handler) Like(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}
	likes, err := h.service.Like(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Message(c, http.StatusOK, "liked", gin.H{"like_count": likes})
}

// Download godoc
// @Summary Download the file of an upload
// @Description Streams the file with the original name as the suggested filename. Range requests are supported.
// @Tags Uploads
// @Produce octet-stream
// @Param id path int true "Upload ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]interface{}
// @Router /download/{id} [get]
func (h *Handler) Download(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}
	d, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer d.Content.Close()

	name := d.Upload.OriginalName
	if name == "" {
		name = d.Upload.Filename
	}
	modTime := time.Time{}
	if info, err := d.Content.Stat(); err == nil {
		modTime = info.ModTime()
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if d.Upload.MimeType != "" {
		c.Header("Content-Type", d.Upload.MimeType)
	}
	http.ServeContent(c.Writer, c.Request, name, modTime, d.Content)
}

// Update godoc
// @Summary Update upload metadata
// @Tags Uploads
// @Accept json
// @Produce json
// @Param id path int true "Upload ID"
// @Param request body UpdateRequest true "Secret code and fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400,403,404 {object} map[string]interface{}
// @Router /uploads/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "invalid request body", errs)
		return
	}

	err := h.service.Update(c.Request.Context(), id, UpdateInput{
		SecretCode:  req.SecretCode,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Message(c, http.StatusOK, "updated", nil)
}

// Delete godoc
// @Summary Delete an upload (file + record + comments)
// @Tags Uploads
// @Accept json
// @Produce json
// @Param id path int true "Upload ID"
// @Param secret_code query string false "Secret code, if not sent in the body"
// @Success 200 {object} map[string]interface{}
// @Failure 400,403,404 {object} map[string]interface{}
// @Router /uploads/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if req.SecretCode == "" {
		req.SecretCode = c.Query("secret_code")
	}

	if err := h.service.Delete(c.Request.Context(), id, req.SecretCode); err != nil {
		h.fail(c, err)
		return
	}
	response.Message(c, http.StatusOK, "deleted", nil)
}

// fail maps service errors to responses. Internal causes are only logged.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge, err.Error())
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrBlobMissing):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	default:
		h.log.Error("upload request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.Internal(c)
	}
}

// ParseID reads the :id path parameter, writing a 400 when it is not a
// positive integer.
func ParseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid upload id")
		return 0, false
	}
	return id, true
}
