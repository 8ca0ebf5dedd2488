package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/course-catalog/internal/config"
	"github.com/stemsi/course-catalog/internal/response"
)

// StatsHandler exposes the operation counters maintained by the event worker.
type StatsHandler struct {
	rdb *redis.Client
}

// NewStatsHandler creates a new StatsHandler. rdb may be nil when Redis is disabled.
func NewStatsHandler(rdb *redis.Client) *StatsHandler {
	return &StatsHandler{rdb: rdb}
}

// GetStats godoc
// GET /api/v1/stats
// Returns counters keyed "<operation>:<outcome>".
func (h *StatsHandler) GetStats(c *gin.Context) {
	if h.rdb == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUnavailable)
		return
	}

	raw, err := h.rdb.HGetAll(c.Request.Context(), config.CacheKey.CatalogStatsKey()).Result()
	if err != nil {
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": parseCounters(raw)})
}

func parseCounters(raw map[string]string) map[string]int64 {
	counters := make(map[string]int64, len(raw))
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		counters[field] = n
	}
	return counters
}
