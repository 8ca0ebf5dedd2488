package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFailValidation(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(ContextKeyRequestID, "req-1")

	FailValidation(c, "Please provide the following required fields: instructor, schedule.",
		map[string]string{"schedule": "schedule is a required field"},
		[]string{"instructor", "schedule"})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrValidation, body.Error.Code)
	assert.Equal(t, []string{"instructor", "schedule"}, body.Error.MissingFields)
	assert.Equal(t, "schedule is a required field", body.Error.Fields["schedule"])
	assert.Equal(t, "Please provide the following required fields: instructor, schedule.", body.Error.Message)
	assert.Equal(t, "req-1", body.Metadata.RequestID)
}

func TestRequestIDMiddleware_EchoesIncomingHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { Success(c, http.StatusOK, nil) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestRequestIDMiddleware_ReplacesUnsafeHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { Success(c, http.StatusOK, nil) })

	tests := []struct {
		name  string
		value string
	}{
		{"too long", strings.Repeat("a", 65)},
		{"spaces", "abc def"},
		{"log injection", "abc\"} {\"level\":\"error"},
		{"non ascii", "requête"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", tt.value)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			assert.NotEqual(t, tt.value, got)
			_, err := uuid.Parse(got)
			assert.NoError(t, err)

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, got, body.Metadata.RequestID)
		})
	}
}

func TestRequestIDMiddleware_KeepsMaxLengthID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { Success(c, http.StatusOK, nil) })

	id := strings.Repeat("a1._-", 12) + "abcd"
	require.Len(t, id, 64)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, id, w.Header().Get("X-Request-ID"))
}

func TestGetMessage_Unknown(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred.", GetMessage("NOPE"))
}
