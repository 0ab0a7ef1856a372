package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/services"
	"github.com/SAP-F-2025/lecture-service/internal/utils"
)

type TeacherProfileHandler struct {
	BaseHandler
	service services.TeacherProfileService
}

func NewTeacherProfileHandler(service services.TeacherProfileService, logger utils.Logger) *TeacherProfileHandler {
	return &TeacherProfileHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Create attaches a teacher profile and an empty timetable to a TEACHER account
// @Summary Create teacher profile
// @Tags teacher-profiles
// @Accept json
// @Produce json
// @Param request body models.TeacherProfileCreateRequest true "Profile data"
// @Success 201 {object} models.TeacherProfileResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/teacher-profiles [post]
func (h *TeacherProfileHandler) Create(c *gin.Context) {
	var req models.TeacherProfileCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload.", err)
		return
	}

	profile, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

func (h *TeacherProfileHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	profile, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *TeacherProfileHandler) GetMine(c *gin.Context) {
	profile, err := h.service.GetMine(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *TeacherProfileHandler) List(c *gin.Context) {
	profiles, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// Delete removes a profile with its timetable, class slots and lectures
// @Router /api/v1/teacher-profiles/{id} [delete]
func (h *TeacherProfileHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type TimetableHandler struct {
	BaseHandler
	service services.TimetableService
}

func NewTimetableHandler(service services.TimetableService, logger utils.Logger) *TimetableHandler {
	return &TimetableHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *TimetableHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	timetable, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, timetable)
}

func (h *TimetableHandler) GetMine(c *gin.Context) {
	timetable, err := h.service.GetMine(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, timetable)
}

func (h *TimetableHandler) List(c *gin.Context) {
	timetables, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, timetables)
}

type ClassHandler struct {
	BaseHandler
	service services.ClassService
}

func NewClassHandler(service services.ClassService, logger utils.Logger) *ClassHandler {
	return &ClassHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Create adds a weekly class slot to a timetable
// @Summary Create class slot
// @Tags classes
// @Accept json
// @Produce json
// @Param request body models.ClassSlotCreateRequest true "Class slot"
// @Success 201 {object} models.ClassSlotResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req models.ClassSlotCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload.", err)
		return
	}

	slot, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, slot)
}

func (h *ClassHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	slot, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, slot)
}

// List returns class slots, optionally of a single timetable
// @Param timetable_id query int false "Timetable ID"
// @Router /api/v1/classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	var timetableID *uint
	if raw := c.Query("timetable_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			h.badRequest(c, "Invalid timetable_id.", nil)
			return
		}
		v := uint(id)
		timetableID = &v
	}

	slots, err := h.service.List(c.Request.Context(), timetableID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

func (h *ClassHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req models.ClassSlotUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload.", err)
		return
	}

	slot, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, slot)
}

// Delete removes a class slot; lectures recorded in it are kept without a slot
// @Router /api/v1/classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
