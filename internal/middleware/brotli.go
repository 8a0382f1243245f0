package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

type BrotliConfig struct {
	Quality   int
	Skipper   func(c *gin.Context) bool
	MinLength int
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// precompressed content types gain nothing from another pass.
var precompressed = []string{
	"application/pdf",
	"application/zip",
	"application/vnd.openxmlformats-officedocument",
	"application/octet-stream",
	"image/",
	"video/",
}

// brotliWriter holds the body back until it either reaches minLength or the
// handler finishes, then decides once whether to compress.
type brotliWriter struct {
	gin.ResponseWriter
	enc       *brotli.Writer
	quality   int
	minLength int
	buf       []byte
	decided   bool
	compress  bool
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	if bw.decided {
		if bw.compress {
			return bw.enc.Write(data)
		}
		return bw.ResponseWriter.Write(data)
	}

	bw.buf = append(bw.buf, data...)
	if len(bw.buf) >= bw.minLength {
		if err := bw.decide(true); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

// Flush commits whatever is buffered so streaming handlers still stream.
func (bw *brotliWriter) Flush() {
	if !bw.decided {
		_ = bw.decide(len(bw.buf) >= bw.minLength)
	}
	if bw.compress {
		_ = bw.enc.Flush()
	}
	bw.ResponseWriter.Flush()
}

func (bw *brotliWriter) decide(large bool) error {
	bw.decided = true
	h := bw.ResponseWriter.Header()
	bw.compress = large && compressible(h)

	var err error
	if bw.compress {
		h.Set("Content-Encoding", "br")
		h.Del("Content-Length")
		bw.enc = brotli.NewWriterLevel(bw.ResponseWriter, bw.quality)
		_, err = bw.enc.Write(bw.buf)
	} else {
		_, err = bw.ResponseWriter.Write(bw.buf)
	}
	bw.buf = nil
	return err
}

func (bw *brotliWriter) finish() error {
	if !bw.decided {
		return bw.decide(false)
	}
	if bw.compress {
		return bw.enc.Close()
	}
	return nil
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
		if shouldSkip(c) {
			c.Next()
			return
		}
		if cfg.Skipper != nil && cfg.Skipper(c) {
			c.Next()
			return
		}
		if !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		bw := &brotliWriter{
			ResponseWriter: c.Writer,
			quality:        cfg.Quality,
			minLength:      cfg.MinLength,
		}
		c.Writer = bw

		defer func() {
			if err := bw.finish(); err != nil {
				_ = c.Error(err)
			}
			c.Writer = bw.ResponseWriter
		}()

		c.Next()
	}
}

// shouldSkip returns true for event streams, which must flush per event, and
// for WebSocket upgrades, which must reach the hijacker unwrapped.
func shouldSkip(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return true
	}
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func compressible(h http.Header) bool {
	if h.Get("Content-Encoding") != "" {
		return false
	}
	ct := strings.ToLower(h.Get("Content-Type"))
	for _, p := range precompressed {
		if strings.HasPrefix(ct, p) {
			return false
		}
	}
	return true
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
