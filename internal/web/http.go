// Package web serves a read-only HTTP preview of the rendered pages.
package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"portfolio-terminal/internal/content"
	"portfolio-terminal/internal/section"
	"portfolio-terminal/internal/theme"
	"portfolio-terminal/internal/view"
)

const (
	defaultWidth = 80
	minWidth     = 20
	maxWidth     = 200
)

// Reloader is satisfied by content.Store.
type Reloader interface {
	Reload() error
}

type Handler struct {
	src    content.Source
	logger *log.Logger
}

func NewHandler(src content.Source, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{src: src, logger: logger}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.health)
	mux.HandleFunc("/themes", h.themes)
	mux.HandleFunc("/render", h.render)
	mux.HandleFunc("/reload", h.reload)
	return h.instrument(mux)
}

func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		observer := &statusObserver{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(observer, r)
		h.logger.Info("http request",
			"event", "http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", observer.status,
			"duration_ms", time.Since(started).Milliseconds(),
			"remote", r.RemoteAddr,
		)
	})
}

type statusObserver struct {
	http.ResponseWriter
	status int
}

func (o *statusObserver) WriteHeader(status int) {
	o.status = status
	o.ResponseWriter.WriteHeader(status)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type themeJSON struct {
	Name   theme.Name             `json:"name"`
	Toggle theme.Name             `json:"toggles_to"`
	Tokens map[theme.Token]string `json:"tokens"`
}

func (h *Handler) themes(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	out := make([]themeJSON, 0, len(theme.Names()))
	for _, name := range theme.Names() {
		th, err := theme.Get(name)
		if err != nil {
			h.fail(w, r, "themes", err)
			return
		}
		out = append(out, themeJSON{Name: name, Toggle: theme.Toggle(name), Tokens: th.Tokens()})
	}
	writeJSON(w, http.StatusOK, out)
}

// render writes one page as text. ?ansi=1 keeps truecolor escapes so the
// output can be piped into a terminal.
func (h *Handler) render(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()

	page := view.NameHome
	if raw := q.Get("view"); raw != "" {
		parsed, err := view.ParseName(raw)
		if err != nil {
			h.fail(w, r, "render", err)
			return
		}
		page = parsed
	}

	themeName := theme.NameDark
	if raw := q.Get("theme"); raw != "" {
		parsed, err := theme.Parse(raw)
		if err != nil {
			h.fail(w, r, "render", err)
			return
		}
		themeName = parsed
	}

	width, err := parseWidth(q.Get("width"))
	if err != nil {
		h.fail(w, r, "render", err)
		return
	}

	ansi := q.Get("ansi") == "1" || strings.EqualFold(q.Get("ansi"), "true")
	out, err := Render(h.src, page, themeName, width, ansi)
	if err != nil {
		h.fail(w, r, "render", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}
	reloader, ok := h.src.(Reloader)
	if !ok {
		writeErr(w, http.StatusNotImplemented, "RELOAD_UNSUPPORTED", "content source cannot be reloaded")
		return
	}
	if err := reloader.Reload(); err != nil {
		h.fail(w, r, "reload", err)
		return
	}
	h.logger.Info("content reloaded", "event", "content_reloaded", "trigger", "http")
	w.WriteHeader(http.StatusNoContent)
}

// Render produces a full page for the given theme outside any terminal.
func Render(src content.Source, page view.Name, name theme.Name, width int, ansi bool) (string, error) {
	th, err := theme.Get(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	renderer := lipgloss.NewRenderer(&buf)
	if ansi {
		renderer.SetColorProfile(termenv.TrueColor)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}

	leaves := section.New(src, renderer, width)
	region, err := view.Render(page, leaves, view.Props{Theme: th})
	if err != nil {
		return "", err
	}
	return view.Flatten(region).Content + "\n", nil
}

func parseWidth(raw string) (int, error) {
	if raw == "" {
		return defaultWidth, nil
	}
	width, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badParam("BAD_WIDTH", "width must be an integer", err)
	}
	if width < minWidth || width > maxWidth {
		return 0, badParam("BAD_WIDTH", "width must be between "+strconv.Itoa(minWidth)+" and "+strconv.Itoa(maxWidth), nil)
	}
	return width, nil
}

func (h *Handler) allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	h.logger.Warn("request rejected", "event", "http_request_rejected", "method", r.Method, "path", r.URL.Path, "reason", "method_not_allowed")
	w.Header().Set("Allow", method)
	writeErr(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	return false
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, code, message := mapError(err)
	h.logger.Warn("request rejected", "event", "http_request_rejected", "operation", operation, "path", r.URL.Path, "reason", code, "err", err)
	writeErr(w, status, code, message)
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message, "status": strconv.Itoa(status)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
