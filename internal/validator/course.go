package validator

import (
	"errors"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/stemsi/course-catalog/internal/model"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError lists every field that failed a rule, in declaration order.
// MissingFields/MissingKeys cover required fields that were absent or blank;
// InvalidFields/InvalidKeys cover values that are not valid UTF-8 text.
// Messages maps each failing key to its translated message.
type ValidationError struct {
	MissingFields []string
	MissingKeys   []string
	InvalidFields []string
	InvalidKeys   []string
	Messages      map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.MissingFields) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.MissingFields, ", "))
	}
	if len(e.InvalidFields) > 0 {
		parts = append(parts, "invalid text in: "+strings.Join(e.InvalidFields, ", "))
	}
	return strings.Join(parts, "; ")
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// courseForm declares the submission rules. Field order is the order in
// which failures are reported; label is the name used in messages.
type courseForm struct {
	Code          string `key:"code" label:"course code" validate:"required,utf8"`
	Name          string `key:"name" label:"course name" validate:"required,utf8"`
	Instructor    string `key:"instructor" label:"instructor" validate:"required,utf8"`
	Semester      string `key:"semester" label:"semester" validate:"required,utf8"`
	Schedule      string `key:"schedule" label:"schedule" validate:"required,utf8"`
	Classroom     string `key:"classroom" label:"classroom" validate:"utf8"`
	Prerequisites string `key:"prerequisites" label:"prerequisites" validate:"utf8"`
	Grading       string `key:"grading" label:"grading" validate:"utf8"`
	Description   string `key:"description" label:"description" validate:"utf8"`
}

var (
	courseRules, courseTrans = newCourseRules()
	courseFormType           = reflect.TypeOf(courseForm{})
)

func newCourseRules() (*govalidator.Validate, ut.Translator) {
	v := govalidator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("label")
	})
	_ = v.RegisterValidation("utf8", func(fl govalidator.FieldLevel) bool {
		return utf8.ValidString(fl.Field().String())
	})

	enLocale := en.New()
	trans, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)
	_ = v.RegisterTranslation("utf8", trans,
		func(t ut.Translator) error {
			return t.Add("utf8", "{0} must be valid UTF-8 text", true)
		},
		func(t ut.Translator, fe govalidator.FieldError) string {
			msg, _ := t.T("utf8", fe.Field())
			return msg
		},
	)
	return v, trans
}

// ValidateCourse checks a submitted field map and builds the course record.
// Values are trimmed; optional fields default to "". It performs no I/O and
// does not check code uniqueness.
func ValidateCourse(fields map[string]string) (model.Course, error) {
	form := courseForm{}
	fv := reflect.ValueOf(&form).Elem()
	for i := 0; i < courseFormType.NumField(); i++ {
		key := courseFormType.Field(i).Tag.Get("key")
		fv.Field(i).SetString(strings.TrimSpace(fields[key]))
	}

	if err := courseRules.Struct(form); err != nil {
		var ve govalidator.ValidationErrors
		if !errors.As(err, &ve) {
			return model.Course{}, err
		}
		out := &ValidationError{Messages: make(map[string]string, len(ve))}
		for _, fe := range ve {
			sf, _ := courseFormType.FieldByName(fe.StructField())
			key := sf.Tag.Get("key")
			out.Messages[key] = fe.Translate(courseTrans)
			if fe.Tag() == "required" {
				out.MissingKeys = append(out.MissingKeys, key)
				out.MissingFields = append(out.MissingFields, fe.Field())
			} else {
				out.InvalidKeys = append(out.InvalidKeys, key)
				out.InvalidFields = append(out.InvalidFields, fe.Field())
			}
		}
		return model.Course{}, out
	}

	return model.Course{
		Code:          form.Code,
		Name:          form.Name,
		Instructor:    form.Instructor,
		Semester:      form.Semester,
		Schedule:      form.Schedule,
		Classroom:     form.Classroom,
		Prerequisites: form.Prerequisites,
		Grading:       form.Grading,
		Description:   form.Description,
	}, nil
}
