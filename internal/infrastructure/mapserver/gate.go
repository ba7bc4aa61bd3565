package mapserver

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"

	"ptv/pkg/logger"
)

// Config configures the gate.
type Config struct {
	Upstream string   `mapstructure:"upstream"`
	Services []string `mapstructure:"services"`
}

// DefaultConfig allows WMS and WFS.
func DefaultConfig() Config {
	return Config{Services: []string{"WMS", "WFS"}}
}

// Gate validates map queries and proxies valid ones upstream.
type Gate struct {
	services []string
	proxy    *httputil.ReverseProxy
}

// NewGate creates a gate for cfg. Without an upstream valid queries answer 502.
func NewGate(cfg Config) (*Gate, error) {
	g := &Gate{services: cfg.Services}
	if len(g.services) == 0 {
		g.services = DefaultConfig().Services
	}
	if cfg.Upstream != "" {
		target, err := url.Parse(cfg.Upstream)
		if err != nil {
			return nil, fmt.Errorf("parse map upstream: %w", err)
		}
		g.proxy = httputil.NewSingleHostReverseProxy(target)
		g.proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error(r.Context(), "map upstream failed", "error", err)
			w.WriteHeader(http.StatusBadGateway)
		}
	}
	return g, nil
}

// Handle is the gin handler for GET /mapserver.
func (g *Gate) Handle(c *gin.Context) {
	q := ParseQuery(c.Request.URL.Query())
	if exc := q.Validate(g.services); exc != nil {
		logger.Info(c.Request.Context(), "map query rejected", "code", exc.Code, "locator", exc.Locator)
		WriteException(c.Writer, q.Version, exc)
		c.Abort()
		return
	}
	if g.proxy == nil {
		c.Status(http.StatusBadGateway)
		return
	}
	g.proxy.ServeHTTP(c.Writer, c.Request)
}

type exceptionReport struct {
	XMLName   xml.Name       `xml:"ows:ExceptionReport"`
	XMLNS     string         `xml:"xmlns:ows,attr"`
	Version   string         `xml:"version,attr"`
	Exception []owsException `xml:"ows:Exception"`
}

type owsException struct {
	Code    string `xml:"exceptionCode,attr"`
	Locator string `xml:"locator,attr,omitempty"`
	Text    string `xml:"ows:ExceptionText"`
}

// WriteException renders exc as an OWS ExceptionReport with status 400.
func WriteException(w http.ResponseWriter, version string, exc *Exception) {
	if version == "" {
		version = "1.0.0"
	}
	report := exceptionReport{
		XMLNS:   "http://www.opengis.net/ows/1.1",
		Version: version,
		Exception: []owsException{{
			Code:    exc.Code,
			Locator: exc.Locator,
			Text:    exc.Text,
		}},
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(report)
}
