package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/services"
	"github.com/SAP-F-2025/lecture-service/internal/utils"
)

const audioFormField = "audio"

type LectureHandler struct {
	BaseHandler
	service        services.LectureService
	maxUploadBytes int64
}

func NewLectureHandler(service services.LectureService, maxUploadBytes int64, logger utils.Logger) *LectureHandler {
	return &LectureHandler{
		BaseHandler:    NewBaseHandler(logger),
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateLecture ingests a lecture from JSON (audio URL) or multipart form data (audio file)
// @Summary Create lecture
// @Tags lectures
// @Accept json,mpfd
// @Produce json
// @Param request body models.LectureCreateRequest false "Lecture with audio URL"
// @Param audio formData file false "Lecture recording"
// @Success 201 {object} models.LectureResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /api/v1/lectures [post]
func (h *LectureHandler) CreateLecture(c *gin.Context) {
	var req models.LectureCreateRequest

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		if h.maxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
		}
		if err := c.ShouldBind(&req); err != nil {
			h.bindFailed(c, err)
			return
		}

		header, err := c.FormFile(audioFormField)
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			h.bindFailed(c, err)
			return
		default:
			file, err := header.Open()
			if err != nil {
				h.bindFailed(c, err)
				return
			}
			defer file.Close()
			req.Audio = &models.AudioFile{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Content:     file,
			}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload.", err)
		return
	}

	lecture, err := h.service.CreateLecture(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lecture)
}

func (h *LectureHandler) bindFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(c, http.StatusRequestEntityTooLarge, "Uploaded file is too large.", nil)
		return
	}
	h.badRequest(c, "Invalid form data.", err)
}

// GetLecture returns one lecture
// @Summary Get lecture
// @Tags lectures
// @Produce json
// @Param id path int true "Lecture ID"
// @Success 200 {object} models.LectureResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/lectures/{id} [get]
func (h *LectureHandler) GetLecture(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	lecture, err := h.service.GetLecture(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lecture)
}

// DeleteLecture removes a lecture and its stored recording
// @Summary Delete lecture
// @Tags lectures
// @Param id path int true "Lecture ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/lectures/{id} [delete]
func (h *LectureHandler) DeleteLecture(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteLecture(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListByTeacher lists the lectures of a teacher profile
// @Router /api/v1/lectures/teacher/{teacherId} [get]
func (h *LectureHandler) ListByTeacher(c *gin.Context) {
	id, ok := h.parseID(c, "teacherId")
	if !ok {
		return
	}

	lectures, err := h.service.ListByTeacher(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lectures)
}

// ListByClass lists the lectures recorded in a class slot
// @Router /api/v1/lectures/class/{classId} [get]
func (h *LectureHandler) ListByClass(c *gin.Context) {
	id, ok := h.parseID(c, "classId")
	if !ok {
		return
	}

	lectures, err := h.service.ListByClass(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lectures)
}

// ListMyRecent lists the caller's latest lectures
// @Param limit query int false "Number of lectures (default: 5, max: 50)"
// @Router /api/v1/lectures/my-recent [get]
func (h *LectureHandler) ListMyRecent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		limit = 0
	}

	lectures, err := h.service.ListMyRecent(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lectures)
}
