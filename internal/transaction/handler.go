// AngelaMos | 2026
// handler.go

package transaction

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/uknown-one/stellarAds/internal/core"
	"github.com/uknown-one/stellarAds/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/transactions", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/{transactionID}/refund", h.Refund)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	transactions, total, err := h.service.List(r.Context(), userID, page, limit)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToListResponse(transactions, page, limit, total))
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "transactionID")

	t, err := h.service.Refund(r.Context(), userID, id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTransactionResponse(t))
}
