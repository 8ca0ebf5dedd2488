package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrDuplicateCode ErrCode = "DUPLICATE_CODE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrStorage     ErrCode = "STORAGE_ERROR"
	ErrUnavailable ErrCode = "SERVICE_UNAVAILABLE"
	ErrInternal    ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Please provide all required fields."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Course not found."
	case ErrDuplicateCode:
		return "Course code already exists. Please use a unique code."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrStorage:
		return "The course catalog could not be read or written."
	case ErrUnavailable:
		return "This feature is not enabled on the server."
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
