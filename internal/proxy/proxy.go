// Package proxy runs a local authenticated dev proxy.
//
// It forwards /api/* to the merchant backend through the request core, which
// attaches the stored session token. Front-end development against a live
// backend then needs no credentials in the browser. A 401 passing through
// still invalidates the session like any other call.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/apiclient"
)

type Server struct {
	echo *echo.Echo
	api  *apiclient.Client
	port string
}

func NewServer(api *apiclient.Client, port string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, api: api, port: port}

	e.Any("/api/*", s.forward)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

func (s *Server) Start() error {
	slog.Info("Starting dev proxy", "port", s.port)
	if err := s.echo.Start(":" + s.port); err != nil {
		return fmt.Errorf("failed to start proxy: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) forward(c echo.Context) error {
	req := c.Request()
	path := strings.TrimPrefix(req.URL.Path, "/api")

	opts := &apiclient.Options{Header: forwardableHeaders(req.Header)}
	for _, kv := range strings.Split(req.URL.RawQuery, "&") {
		if kv == "" {
			continue
		}
		key, value, _ := strings.Cut(kv, "=")
		decodedKey, err := url.QueryUnescape(key)
		if err != nil {
			decodedKey = key
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			decodedValue = value
		}
		opts.Query = append(opts.Query, apiclient.Param{Key: decodedKey, Value: decodedValue})
	}

	if req.Body != nil && req.Method != http.MethodGet && req.Method != http.MethodDelete {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "failed to read request body"})
		}
		if len(raw) > 0 {
			if !json.Valid(raw) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "request body must be JSON"})
			}
			opts.Body = jsonPassthrough(raw)
		}
	}

	payload, err := s.api.Do(req.Context(), req.Method, path, opts)
	if err != nil {
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) && apiErr.Status != 0 {
			return c.JSON(apiErr.Status, apiErr.Body)
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": apiclient.AsError(err).UserMessage()})
	}

	contentType := payload.Header.Get("Content-Type")
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	return c.Blob(payload.Status, contentType, payload.Body)
}

// forwardableHeaders keeps only headers safe to pass upstream. Authorization
// is stripped: the whole point is that the proxy supplies the credential.
func forwardableHeaders(in http.Header) http.Header {
	out := http.Header{}
	for _, name := range []string{"Accept-Language", "If-None-Match", "If-Modified-Since"} {
		if v := in.Get(name); v != "" {
			out.Set(name, v)
		}
	}
	return out
}

// jsonPassthrough keeps the forwarded body bytes as-is when re-encoded.
type jsonPassthrough []byte

func (b jsonPassthrough) MarshalJSON() ([]byte, error) {
	return b, nil
}
