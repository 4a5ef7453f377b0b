// AngelaMos | 2026
// handler.go

package listing

import (
	"encoding/json"
	"net/http"
	"strconv"

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
	r.Route("/listings", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{listingID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Post("/", h.Create)
			r.Put("/{listingID}", h.Update)
			r.Delete("/{listingID}", h.Delete)
			r.Post("/{listingID}/renew", h.Renew)
			r.Post("/{listingID}/purchase", h.Purchase)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := ListParams{
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Sort:     q.Get("sort"),
	}
	params.Page, _ = strconv.Atoi(q.Get("page"))
	params.Limit, _ = strconv.Atoi(q.Get("limit"))
	params.Normalize()

	listings, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToListResponse(listings, params.Page, params.Limit, total))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "listingID")

	l, err := h.service.Get(r.Context(), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToListingResponse(l))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	// Quota outranks field errors in the enforcement order.
	if err := h.service.EnsureCreateAllowed(r.Context(), userID); err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	l, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToListingResponse(l))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "listingID")

	var req UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	// Ownership outranks field errors in the enforcement order.
	if err := h.service.EnsureOwner(r.Context(), userID, id); err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	l, err := h.service.Update(r.Context(), userID, id, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToListingResponse(l))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "listingID")

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, map[string]string{"message": "listing deleted"})
}

func (h *Handler) Renew(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "listingID")

	l, err := h.service.Renew(r.Context(), userID, id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToListingResponse(l))
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "listingID")

	l, txnID, err := h.service.Purchase(r.Context(), userID, id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, PurchaseResponse{
		Message:       "purchase complete",
		TransactionID: txnID,
		Listing:       ToListingResponse(l),
	})
}
