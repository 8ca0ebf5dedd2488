package handler

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/course-catalog/internal/repository"
	"github.com/stemsi/course-catalog/internal/response"
	"github.com/stemsi/course-catalog/internal/validator"
)

// failCatalog translates catalog errors into API responses.
func failCatalog(c *gin.Context, err error) {
	var ve *validator.ValidationError
	switch {
	case errors.As(err, &ve):
		response.FailValidation(c, validationMessage(ve), ve.Messages, ve.MissingFields)
	case errors.Is(err, repository.ErrDuplicateCode):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateCode)
	case errors.Is(err, repository.ErrInvalidRecord):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	case repository.IsStorageError(err):
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrStorage)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// validationMessage is the user-facing summary shared by the API and the pages.
// Missing fields take precedence over invalid text.
func validationMessage(ve *validator.ValidationError) string {
	if len(ve.MissingFields) > 0 {
		return "Please provide the following required fields: " + strings.Join(ve.MissingFields, ", ") + "."
	}
	return "Please use valid text in the following fields: " + strings.Join(ve.InvalidFields, ", ") + "."
}

// joinMessages flattens translated binding errors into one sentence list.
func joinMessages(fields map[string]string) string {
	msgs := make([]string, 0, len(fields))
	for _, m := range fields {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
