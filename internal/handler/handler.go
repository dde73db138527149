// Package handler exposes the calculation engine over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/aitechneut/autovandezaakofprive/internal/engine"
	"github.com/aitechneut/autovandezaakofprive/internal/model"
	"github.com/aitechneut/autovandezaakofprive/internal/registry"
)

const maxBodyBytes = 1 << 20

// VehicleLookup resolves a license plate to a raw registry record.
type VehicleLookup interface {
	Lookup(ctx context.Context, plate string) (*model.RawVehicleRecord, error)
}

type Handler struct {
	engine   *engine.Engine
	vehicles VehicleLookup
	log      *slog.Logger
}

// New wires the handler. vehicles may be nil, in which case plate lookups answer 503.
func New(e *engine.Engine, vehicles VehicleLookup, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{engine: e, vehicles: vehicles, log: log}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.health)
	r.Post("/calculation", h.calculate)
	r.Get("/vehicles/{plate}", h.vehicle)
	r.Get("/rules/{year}", h.rules)
	return r
}

// FastHTTP serves the router on fasthttp.
func (h *Handler) FastHTTP() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(h.Router())
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"rules_version": h.engine.Rules().Version,
	})
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	var req model.CalculationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Vehicle == nil {
		if req.LicensePlate == "" {
			writeError(w, http.StatusBadRequest, "Either vehicle or license_plate is required")
			return
		}
		rec, status, err := h.lookup(r.Context(), req.LicensePlate)
		if err != nil {
			writeError(w, status, err.Error())
			return
		}
		req.Vehicle = rec
	}

	resp := h.engine.Calculate(&req)
	if resp.CalculationMetadata.CalculationOutcome == model.OutcomeFailure {
		h.log.Info("calculation failed",
			"calculation_id", resp.CalculationMetadata.CalculationID,
			"messages", resp.CalculationResult.Messages)
	}
	writeJSON(w, http.StatusOK, resp)
}

type vehicleResponse struct {
	Record   *model.RawVehicleRecord    `json:"record"`
	Vehicle  *model.VehicleDescription  `json:"vehicle,omitempty"`
	Messages []model.CalculationMessage `json:"messages"`
}

func (h *Handler) vehicle(w http.ResponseWriter, r *http.Request) {
	rec, status, err := h.lookup(r.Context(), chi.URLParam(r, "plate"))
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	out := vehicleResponse{Record: rec, Messages: []model.CalculationMessage{}}
	v, msgs, err := h.engine.NormalizeVehicle(rec, 0)
	if err != nil {
		msgs = append(msgs, model.CalculationMessage{
			Level:   model.LevelCritical,
			Code:    model.CodeOf(err),
			Message: err.Error(),
		})
	} else {
		out.Vehicle = &v
	}
	for i, m := range msgs {
		m.ID = i
		out.Messages = append(out.Messages, m)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) rules(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 2100 {
		writeError(w, http.StatusBadRequest, "Invalid year")
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Rules().Summary(year))
}

func (h *Handler) lookup(ctx context.Context, plate string) (*model.RawVehicleRecord, int, error) {
	if h.vehicles == nil {
		return nil, http.StatusServiceUnavailable, errors.New("vehicle registry lookup is not configured")
	}
	rec, err := h.vehicles.Lookup(ctx, plate)
	if err != nil {
		return nil, lookupStatus(err), err
	}
	return rec, http.StatusOK, nil
}

func lookupStatus(err error) int {
	switch {
	case errors.Is(err, registry.ErrInvalidPlate):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, registry.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.ErrorResponse{
		Status:  status,
		Message: message,
	})
}
