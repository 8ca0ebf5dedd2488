package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/stemsi/course-catalog/internal/model"
	"github.com/stemsi/course-catalog/internal/repository"
	"github.com/stemsi/course-catalog/internal/validator"
)

// CourseStore is the subset of the catalog store the service relies on.
type CourseStore interface {
	ListAll(ctx context.Context) ([]model.Course, error)
	FindByCode(ctx context.Context, code string) (model.Course, bool, error)
	Append(ctx context.Context, course model.Course) error
}

// CourseService validates submissions and hands them to the catalog store.
type CourseService struct {
	store CourseStore
	log   zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(store CourseStore, log zerolog.Logger) *CourseService {
	return &CourseService{
		store: store,
		log:   log.With().Str("component", "course_service").Logger(),
	}
}

// List returns the whole catalog in listing order.
func (s *CourseService) List(ctx context.Context) ([]model.Course, error) {
	return s.store.ListAll(ctx)
}

// Get looks a course up by code. The boolean is false when it does not exist.
func (s *CourseService) Get(ctx context.Context, code string) (model.Course, bool, error) {
	return s.store.FindByCode(ctx, code)
}

// Create validates fields and appends the resulting course.
// Errors are returned unchanged: *validator.ValidationError,
// *repository.DuplicateCodeError, or a storage error.
func (s *CourseService) Create(ctx context.Context, fields map[string]string) (model.Course, error) {
	course, err := validator.ValidateCourse(fields)
	if err != nil {
		var ve *validator.ValidationError
		if errors.As(err, &ve) {
			s.log.Error().
				Strs("missing_fields", ve.MissingFields).
				Strs("invalid_fields", ve.InvalidFields).
				Msg("Failed to add course: validation failed")
		}
		return model.Course{}, err
	}

	if err := s.store.Append(ctx, course); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateCode):
			s.log.Error().Str("code", course.Code).Msg("Duplicate course code")
		case errors.Is(err, repository.ErrInvalidRecord):
			s.log.Error().Err(err).Msg("Rejected course record")
		default:
			s.log.Error().Err(err).Str("code", course.Code).Msg("Failed to persist course")
		}
		return model.Course{}, err
	}

	s.log.Info().
		Str("code", course.Code).
		Str("name", course.Name).
		Str("instructor", course.Instructor).
		Str("semester", course.Semester).
		Msg("Course added successfully")

	return course, nil
}
