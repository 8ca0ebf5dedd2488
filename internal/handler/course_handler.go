package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/course-catalog/internal/model"
	"github.com/stemsi/course-catalog/internal/response"
	"github.com/stemsi/course-catalog/internal/service"
	"github.com/stemsi/course-catalog/internal/validator"
)

// CourseHandler serves the JSON course API.
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// ListCourses godoc
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context())
	if err != nil {
		failCatalog(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// GetCourse godoc
// GET /api/v1/courses/:code
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, found, err := h.courseService.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		failCatalog(c, err)
		return
	}
	if !found {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// CreateCourse godoc
// POST /api/v1/courses
// Accepts JSON or form bodies; every missing required field is reported at once.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), req.Fields())
	if err != nil {
		failCatalog(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// Health godoc
// GET /health
// Reports whether the catalog file is readable.
func (h *CourseHandler) Health(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context())
	if err != nil {
		failCatalog(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok", "courses": len(courses)})
}
