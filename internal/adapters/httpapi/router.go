// Package httpapi は PIN の QR 画像を PNG で配信する HTTP エンドポイントです。
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/ogurasousui/pin-roster/internal/core/employee"
	"github.com/ogurasousui/pin-roster/internal/core/symbol"
)

const (
	defaultImageSize = 256
	minImageSize     = 64
	maxImageSize     = 1024
)

// EmployeeFinder は ID で社員を取得します。
type EmployeeFinder interface {
	GetEmployee(ctx context.Context, in employee.GetEmployeeInput) (*employee.Employee, error)
}

// Handler は HTTP ハンドラの依存をまとめます。
type Handler struct {
	employees EmployeeFinder
	encoder   symbol.Encoder
	logger    *slog.Logger
}

// NewRouter はルーティング済みの mux.Router を返します。
func NewRouter(employees EmployeeFinder, encoder symbol.Encoder, logger *slog.Logger) *mux.Router {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{employees: employees, encoder: encoder, logger: logger}

	r := mux.NewRouter()
	r.Use(h.logRequests)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/codes/{code:[^/.]+}.png", h.codeImage).Methods(http.MethodGet)
	r.HandleFunc("/employees/{id}/qr.png", h.employeeImage).Methods(http.MethodGet)
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := fmt.Fprintln(w, "OK"); err != nil {
		h.logger.Warn("write health response failed", "error", err)
	}
}

func (h *Handler) codeImage(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if !employee.ValidCode(code) {
		http.Error(w, "malformed code", http.StatusBadRequest)
		return
	}
	h.writePNG(w, r, code)
}

func (h *Handler) employeeImage(w http.ResponseWriter, r *http.Request) {
	found, err := h.employees.GetEmployee(r.Context(), employee.GetEmployeeInput{ID: mux.Vars(r)["id"]})
	switch {
	case errors.Is(err, employee.ErrEmployeeNotFound), errors.Is(err, employee.ErrInvalidID):
		http.Error(w, "employee not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("get employee failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writePNG(w, r, found.Code)
}

func (h *Handler) writePNG(w http.ResponseWriter, r *http.Request, text string) {
	size, err := imageSize(r.URL.Query().Get("size"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.encoder.EncodePNG(w, text, size); err != nil {
		h.logger.Error("encode qr failed", "error", err)
		http.Error(w, "encode failed", http.StatusInternalServerError)
	}
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func imageSize(raw string) (int, error) {
	if raw == "" {
		return defaultImageSize, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size < minImageSize || size > maxImageSize {
		return 0, fmt.Errorf("size must be between %d and %d", minImageSize, maxImageSize)
	}
	return size, nil
}
