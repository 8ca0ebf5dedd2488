package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-catalog/internal/model"
	"github.com/stemsi/course-catalog/internal/repository"
	"github.com/stemsi/course-catalog/internal/service"
	"github.com/stemsi/course-catalog/internal/validator"
)

const maxFlashCodeRunes = 40

// PageHandler renders the browser-facing catalog pages.
type PageHandler struct {
	courseService *service.CourseService
	log           zerolog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(courseService *service.CourseService, log zerolog.Logger) *PageHandler {
	return &PageHandler{
		courseService: courseService,
		log:           log.With().Str("component", "page_handler").Logger(),
	}
}

// Index godoc
// GET /
func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Flashes": popFlash(c)})
}

// Catalog godoc
// GET /catalog
func (h *PageHandler) Catalog(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "course_catalog.html", gin.H{
		"Flashes": popFlash(c),
		"Courses": courses,
	})
}

// CourseDetails godoc
// GET /course/:code
// Unknown codes redirect back to the catalog with an error flash.
func (h *PageHandler) CourseDetails(c *gin.Context) {
	code := c.Param("code")
	course, found, err := h.courseService.Get(c.Request.Context(), code)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if !found {
		setFlash(c, "error", fmt.Sprintf("No course found with code '%s'.", shortCode(code)))
		c.Redirect(http.StatusFound, "/catalog")
		return
	}
	c.HTML(http.StatusOK, "course_details.html", gin.H{
		"Flashes": popFlash(c),
		"Course":  course,
	})
}

// AddCourseForm godoc
// GET /add-course
func (h *PageHandler) AddCourseForm(c *gin.Context) {
	c.HTML(http.StatusOK, "add_course.html", gin.H{"Flashes": popFlash(c)})
}

// AddCourse godoc
// POST /add-course
func (h *PageHandler) AddCourse(c *gin.Context) {
	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		setFlash(c, "error", "Invalid form submission: "+joinMessages(fields)+".")
		c.Redirect(http.StatusFound, "/add-course")
		return
	}

	_, err := h.courseService.Create(c.Request.Context(), req.Fields())
	var ve *validator.ValidationError
	switch {
	case err == nil:
		setFlash(c, "success", "Course added successfully!")
		c.Redirect(http.StatusFound, "/catalog")
	case errors.As(err, &ve):
		setFlash(c, "error", validationMessage(ve))
		c.Redirect(http.StatusFound, "/add-course")
	case errors.Is(err, repository.ErrDuplicateCode):
		setFlash(c, "error", "Course code already exists. Please use a unique code.")
		c.Redirect(http.StatusFound, "/add-course")
	case errors.Is(err, repository.ErrInvalidRecord):
		setFlash(c, "error", "Invalid form submission.")
		c.Redirect(http.StatusFound, "/add-course")
	default:
		h.renderError(c, err)
	}
}

// shortCode bounds a user-supplied code before it is echoed in a flash cookie.
func shortCode(code string) string {
	r := []rune(code)
	if len(r) <= maxFlashCodeRunes {
		return code
	}
	return string(r[:maxFlashCodeRunes]) + "…"
}

func (h *PageHandler) renderError(c *gin.Context, err error) {
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Catalog unavailable")
	_ = c.Error(err)
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"Message": "The course catalog is currently unavailable.",
	})
}
