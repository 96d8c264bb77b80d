// AngelaMos | 2026
// handler.go

package order

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/food-orders/internal/authz"
	"github.com/carterperez-dev/food-orders/internal/core"
	"github.com/carterperez-dev/food-orders/internal/middleware"
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

// RegisterRoutes mounts the order endpoints. limiter, when non-nil, wraps
// the routes that mutate orders.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	limiter func(http.Handler) http.Handler,
) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListAll)
		r.Get("/mine", h.ListMine)
		r.Get("/{orderID}", h.View)

		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter)
			}

			r.Post("/", h.CreateForSelf)
			r.Post("/users/{userID}", h.CreateForUser)
			r.Post("/{orderID}/cancel", h.Cancel)
			r.Post("/{orderID}/finalize", h.Finalize)
			r.Post("/{orderID}/items", h.AddItem)
			r.Delete("/items/{itemID}", h.RemoveItem)
		})
	})
}

func (h *Handler) CreateForSelf(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		core.Unauthorized(w, "")
		return
	}

	o, err := h.service.CreateForSelf(r.Context(), actor)
	if err != nil {
		core.Fail(w, err)
		return
	}

	core.Created(w, ToOrderResponse(o))
}

func (h *Handler) CreateForUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		core.Unauthorized(w, "")
		return
	}

	userID, ok := pathID(w, r, "userID", "user")
	if !ok {
		return
	}

	o, err := h.service.CreateForUser(r.Context(), actor, userID)
	if err != nil {
		core.Fail(w, err)
		return
	}

	core.Created(w, ToOrderResponse(o))
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListAll)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListMine)
}

func (h *Handler) list(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(ctx context.Context, actor authz.Actor, filter ListFilter) ([]Order, error),
) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		core.Unauthorized(w, "")
		return
	}

	filter := ListFilter{Status: Status(r.URL.Query().Get("status"))}

	orders, err := fetch(r.Context(), actor, filter)
	if err != nil {
		core.Fail(w, err)
		return
	}

	core.OK(w, ToOrderResponseList(orders))
}

func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		core.Unauthorized(w, "")
		return
	}

	orderID, ok := pathID(w, r, "orderID", "order")
	if !ok {
		return
	}

	o, err := h.service.View(r.Context(), actor, orderID)
	if err != nil {
		core.Fail(w, err)
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel)
}

func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Finalize)
}

func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, actor authz.Actor, orderID int64) (*Order, error),
) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		core.Unauthorized(w, "")
		return
	}

	orderID, ok := pathID(w, r, "orderID", "order")
	if !ok {
		return
	}

	o, err := apply(r.Context(), actor, orderID)
	if err != nil {
		core.Fail(w, err)
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		core.Unauthorized(w, "")
		return
	}

	orderID, ok := pathID(w, r, "orderID", "order")
	if !ok {
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	res, err := h.service.AddItem(r.Context(), actor, orderID, req.toNewItem())
	if err != nil {
		core.Fail(w, err)
		return
	}

	core.Created(w, AddItemResponse{
		ItemID:     res.ItemID,
		OrderID:    res.Order.ID,
		OrderPrice: money(res.OrderPrice),
	})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		core.Unauthorized(w, "")
		return
	}

	itemID, ok := pathID(w, r, "itemID", "item")
	if !ok {
		return
	}

	res, err := h.service.RemoveItem(r.Context(), actor, itemID)
	if err != nil {
		core.Fail(w, err)
		return
	}

	core.OK(w, RemoveItemResponse{
		RemainingItems: res.RemainingItems,
		Order:          ToOrderResponse(res.Order),
	})
}

func pathID(w http.ResponseWriter, r *http.Request, param, entity string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "invalid "+entity+" id")
		return 0, false
	}
	return id, true
}
