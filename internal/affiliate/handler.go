// AngelaMos | 2026
// handler.go

package affiliate

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/uknown-one/stellarAds/internal/core"
	"github.com/uknown-one/stellarAds/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/affiliate", func(r chi.Router) {
		// Code verification is open so signup forms can check a code
		// before the account exists.
		r.Post("/referral", h.VerifyCode)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/", h.Dashboard)
		})
	})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	dashboard, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "affiliate account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, dashboard)
}

func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.VerifyCode(r.Context(), req.ReferralCode)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "referral code")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}
