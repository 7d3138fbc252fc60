package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/simaogato/estateledger-backend/internal/domain"
	"github.com/simaogato/estateledger-backend/internal/observability"
	"github.com/simaogato/estateledger-backend/internal/usecase/deed"
	"github.com/simaogato/estateledger-backend/internal/usecase/estatetoken"
)

// Handler serves the read-only query API.
type Handler struct {
	DeedService  *deed.DeedService
	TokenService *estatetoken.TokenService
	Logger       *zap.Logger
}

func NewHandler(deedService *deed.DeedService, tokenService *estatetoken.TokenService, logger *zap.Logger) *Handler {
	return &Handler{
		DeedService:  deedService,
		TokenService: tokenService,
		Logger:       logger,
	}
}

// Routes builds the chi router, including /healthz and /metrics.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(recordMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/agreements/{id}", h.getAgreement)
		r.Route("/tokens/{id}", func(r chi.Router) {
			r.Get("/", h.getToken)
			r.Get("/balances/{holder}", h.getBalance)
			r.Get("/penalty", h.getPenalty)
		})
	})

	return r
}

func (h *Handler) getAgreement(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(w, chi.URLParam(r, "id"), "id")
	if !ok {
		return
	}

	agreement, err := h.DeedService.GetAgreement(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAgreementResponse(agreement))
}

func (h *Handler) getToken(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(w, chi.URLParam(r, "id"), "id")
	if !ok {
		return
	}

	token, err := h.TokenService.TokenInfo(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTokenResponse(token))
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(w, chi.URLParam(r, "id"), "id")
	if !ok {
		return
	}
	holderParam := chi.URLParam(r, "holder")
	if !common.IsHexAddress(holderParam) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid holder address"})
		return
	}
	holder := common.HexToAddress(holderParam)

	balance, err := h.TokenService.BalanceOf(r.Context(), holder, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		TokenID: strconv.FormatUint(id, 10),
		Holder:  holder.Hex(),
		Balance: strconv.FormatUint(balance, 10),
	})
}

// getPenalty serves GET /v1/tokens/{id}/penalty?rate=10&at=1700000000.
// at defaults to the current time.
func (h *Handler) getPenalty(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(w, chi.URLParam(r, "id"), "id")
	if !ok {
		return
	}
	rate, ok := uintParam(w, r.URL.Query().Get("rate"), "rate")
	if !ok {
		return
	}

	at := time.Now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		secs, ok := uintParam(w, raw, "at")
		if !ok {
			return
		}
		if secs > math.MaxInt64 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid at"})
			return
		}
		at = time.Unix(int64(secs), 0)
	}

	penalty, err := h.TokenService.PenaltyPercentageCalculator(r.Context(), rate, id, at)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, penaltyResponse{
		TokenID: strconv.FormatUint(id, 10),
		At:      at.Unix(),
		Penalty: strconv.FormatUint(penalty, 10),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	category, ok := domain.CategoryOf(err)
	if !ok {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		h.Logger.Error("query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, statusForCategory(category), errorResponse{Error: err.Error(), Category: string(category)})
}

func statusForCategory(category domain.ErrorCategory) int {
	switch category {
	case domain.CategoryAuthorization:
		return http.StatusForbidden
	case domain.CategoryStatePrecondition:
		return http.StatusConflict
	case domain.CategoryNumericBound:
		return http.StatusBadRequest
	case domain.CategoryMissingResource:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func uintParam(w http.ResponseWriter, raw, name string) (uint64, bool) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + name})
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func recordMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		observability.RecordHTTPRequest(r.Method, route, ww.Status(), time.Since(start))
	})
}
