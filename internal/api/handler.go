package api

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/RichardoC/envask/internal/ask"
)

//go:embed web
var webFS embed.FS

// Handler serves the browser form and passes its /ask calls through to the
// answering server untouched.
type Handler struct {
	target   *url.URL
	proxy    *httputil.ReverseProxy
	logger   *zap.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer
}

// NewHandler builds a handler forwarding to serverURL + "/ask". Metrics are
// registered on reg and exposed from gatherer.
func NewHandler(serverURL string, logger *zap.Logger, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*Handler, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", serverURL)
	}
	target := *base
	target.Path = strings.TrimRight(base.Path, "/") + ask.Path
	target.RawQuery = ""

	h := &Handler{
		target:   &target,
		logger:   logger,
		metrics:  NewMetrics(reg),
		gatherer: gatherer,
	}
	h.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Scheme = h.target.Scheme
			pr.Out.URL.Host = h.target.Host
			pr.Out.URL.Path = h.target.Path
			pr.Out.URL.RawPath = ""
			pr.Out.URL.RawQuery = ""
			pr.Out.Host = h.target.Host
			pr.SetXForwarded()
		},
		ErrorHandler: h.proxyError,
	}
	return h, nil
}

// Routes returns the router for the web form.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	static, err := fs.Sub(webFS, "web")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}
	r.Handle("/", http.FileServer(http.FS(static)))

	r.Post(ask.Path, h.Ask)
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	return r
}

// Ask forwards the browser's request body and headers as they are.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	start := time.Now()

	h.proxy.ServeHTTP(ww, r)

	h.metrics.requests.WithLabelValues(strconv.Itoa(ww.Status())).Inc()
	h.metrics.duration.Observe(time.Since(start).Seconds())
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

func (h *Handler) proxyError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("Failed to reach answering server",
		zap.Error(err),
		zap.String("target", h.target.String()),
		zap.String("requestID", middleware.GetReqID(r.Context())))
	http.Error(w, "Bad gateway", http.StatusBadGateway)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("Handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestID", middleware.GetReqID(r.Context())))
	})
}
