package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"stock-analyzer/config"
	"stock-analyzer/internal/app"
	"stock-analyzer/observability"
	"stock-analyzer/templates"
	"stock-analyzer/templates/components"
	"stock-analyzer/templates/partials"
)

// maxSymbolLength covers the longest NSE tickers plus the exchange suffix
const maxSymbolLength = 20

var symbolPattern = regexp.MustCompile(`^[A-Z0-9&.-]+$`)

// AnalyzeRequest is the body of POST /api/analyze, sent as JSON or as the
// dashboard's form
type AnalyzeRequest struct {
	Symbol string `json:"symbol"`
}

// Handler serves the dashboard and its JSON/HTMX API. HTMX callers get HTML
// fragments, everyone else JSON.
type Handler struct {
	app *app.App
	cfg *config.Config
}

func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// HandleIndex serves the dashboard page with the symbol picker filled in
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, templates.Index(h.app.SearchSymbols(r.Context(), "")))
}

// HandleHealth returns breaker states and the symbol universe status
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Health())
}

// HandleSearchSymbols returns the symbols matching the q parameter
func (h *Handler) HandleSearchSymbols(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	symbols := h.app.SearchSymbols(r.Context(), query)

	if isHTMX(r) {
		render(w, r, http.StatusOK, partials.SymbolOptions(symbols))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"symbols": symbols,
		"count":   len(symbols),
	})
}

// HandleAnalyzeStock runs the analysis pipeline for the selected symbol
func (h *Handler) HandleAnalyzeStock(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAnalyzeRequest(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.Symbol == "" {
		warn(w, r, app.NoSymbolWarning)
		return
	}
	if err := h.ValidateSymbol(req.Symbol); err != nil {
		fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.app.Analyze(r.Context(), req.Symbol)
	switch {
	case errors.Is(err, app.ErrNoSymbol):
		warn(w, r, app.NoSymbolWarning)
	case errors.Is(err, app.ErrQueueFull):
		fail(w, r, http.StatusTooManyRequests, err.Error())
	case err != nil:
		fail(w, r, http.StatusInternalServerError, err.Error())
	case isHTMX(r):
		render(w, r, http.StatusOK, partials.ReportView(result))
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

// HandleDownloadReport streams a written report file by artifact id
func (h *Handler) HandleDownloadReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing report id")
		return
	}

	artifact, err := h.app.Artifact(id)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, app.ErrArtifactNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	f, err := os.Open(artifact.Path)
	if err != nil {
		observability.WithSymbol(artifact.Symbol).Warn("report file unavailable", "path", artifact.Path, "error", err)
		writeError(w, http.StatusNotFound, "report file no longer available")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	http.ServeContent(w, r, artifact.Filename, artifact.CreatedAt, f)
}

// ValidateSymbol checks an upper-cased ticker before it reaches a provider URL
func (h *Handler) ValidateSymbol(symbol string) error {
	switch {
	case symbol == "":
		return errors.New("symbol is required")
	case len(symbol) > maxSymbolLength:
		return fmt.Errorf("symbol too long (max %d characters)", maxSymbolLength)
	case !symbolPattern.MatchString(symbol):
		return errors.New("invalid symbol format (alphanumeric, dots, dashes and ampersands only)")
	}
	return nil
}

// decodeAnalyzeRequest reads a JSON body or the dashboard form and
// normalises the symbol. A blank symbol is not an error here.
func decodeAnalyzeRequest(r *http.Request) (AnalyzeRequest, error) {
	var req AnalyzeRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid request body: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("invalid form: %w", err)
		}
		req.Symbol = r.FormValue("symbol")
	}
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	return req, nil
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		observability.WithContext(r.Context()).Warn("template render failed", "error", err)
	}
}

// fail reports an error; HTMX swaps only 2xx responses, so the fragment is sent as 200
func fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	if isHTMX(r) {
		render(w, r, http.StatusOK, components.ErrorState(message))
		return
	}
	writeError(w, status, message)
}

// warn reports a non-fatal problem; nothing was computed
func warn(w http.ResponseWriter, r *http.Request, message string) {
	if isHTMX(r) {
		render(w, r, http.StatusOK, components.Warning(message))
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"warning": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
