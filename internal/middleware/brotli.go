package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig tunes response compression.
type BrotliConfig struct {
	Quality   int
	MinLength int
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// brotliWriter holds output back until MinLength bytes are buffered, then
// switches to compressed streaming. Short responses go out uncompressed.
type brotliWriter struct {
	gin.ResponseWriter
	enc        *brotli.Writer
	pending    []byte
	minLength  int
	compressed bool
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	if bw.compressed {
		return bw.enc.Write(data)
	}

	bw.pending = append(bw.pending, data...)
	if len(bw.pending) < bw.minLength {
		return len(data), nil
	}

	bw.compressed = true
	h := bw.ResponseWriter.Header()
	h.Set("Content-Encoding", "br")
	h.Del("Content-Length")
	if _, err := bw.enc.Write(bw.pending); err != nil {
		return 0, err
	}
	bw.pending = nil
	return len(data), nil
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

// finish flushes whatever is left: the encoder when compression kicked in,
// or the raw buffer otherwise.
func (bw *brotliWriter) finish() error {
	if bw.compressed {
		return bw.enc.Close()
	}
	if len(bw.pending) == 0 {
		return nil
	}
	_, err := bw.ResponseWriter.Write(bw.pending)
	bw.pending = nil
	return err
}

func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < 0 || cfg.Quality > 11 {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if isUpgrade(c) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		bw := &brotliWriter{
			ResponseWriter: c.Writer,
			minLength:      cfg.MinLength,
			enc:            brotli.NewWriterLevel(c.Writer, cfg.Quality),
		}
		c.Writer = bw

		defer func() {
			if err := bw.finish(); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Next()
	}
}

// isUpgrade reports WebSocket handshakes, which must reach the handler
// with the original writer.
func isUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		if strings.EqualFold(strings.TrimSpace(enc), "br") {
			return true
		}
	}
	return false
}
