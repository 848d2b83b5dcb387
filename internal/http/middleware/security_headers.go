package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const DefaultCSP = "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'"

type SecurityHeadersConfig struct {
	CSP            string `env:"CSP_POLICY"`
	ReferrerPolicy string `env:"REFERRER_POLICY" envDefault:"strict-origin-when-cross-origin"`
}

func (cfg SecurityHeadersConfig) headers() map[string]string {
	csp := strings.TrimSpace(cfg.CSP)
	if csp == "" {
		csp = DefaultCSP
	}
	referrer := strings.TrimSpace(cfg.ReferrerPolicy)
	if referrer == "" {
		referrer = "strict-origin-when-cross-origin"
	}
	return map[string]string{
		"Content-Security-Policy": csp,
		"X-Content-Type-Options":  "nosniff",
		"Referrer-Policy":         referrer,
		"X-Frame-Options":         "DENY",
	}
}

// securityWriter re-applies the header set at every point gin may flush the
// header map, so a handler's own values cannot reach the wire.
type securityWriter struct {
	gin.ResponseWriter
	hs map[string]string
}

func (w *securityWriter) apply() {
	if w.ResponseWriter.Written() {
		return
	}
	h := w.ResponseWriter.Header()
	for k, v := range w.hs {
		h.Set(k, v)
	}
}

func (w *securityWriter) WriteHeaderNow() {
	w.apply()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *securityWriter) Write(b []byte) (int, error) {
	w.apply()
	return w.ResponseWriter.Write(b)
}

func (w *securityWriter) WriteString(s string) (int, error) {
	w.apply()
	return w.ResponseWriter.WriteString(s)
}

func (w *securityWriter) Flush() {
	w.apply()
	w.ResponseWriter.Flush()
}

// SecurityHeaders owns the header set for the whole request: handlers may
// touch the same headers, but the configured values are what gets sent.
func SecurityHeaders(cfg SecurityHeadersConfig) gin.HandlerFunc {
	hs := cfg.headers()
	return func(c *gin.Context) {
		w := &securityWriter{ResponseWriter: c.Writer, hs: hs}
		w.apply()
		c.Writer = w
		c.Next()
		// gin flushes unwritten responses through its own writer
		w.apply()
	}
}
