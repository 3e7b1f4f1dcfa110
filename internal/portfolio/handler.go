package portfolio

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"artfolio/internal/common"
	"artfolio/internal/dbmysql"
)

type Handler struct {
	service PortfolioService
}

func NewHandler(service PortfolioService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/documents", h.create).Methods("POST")
	r.HandleFunc("/documents", h.listMine).Methods("GET")
	r.HandleFunc("/documents/{id}", h.get).Methods("GET")
	r.HandleFunc("/documents/{id}/submit", h.submit).Methods("POST")
	r.HandleFunc("/documents/{id}/approve", h.approve).Methods("POST")
	r.HandleFunc("/documents/{id}/reject", h.reject).Methods("POST")
	r.HandleFunc("/documents/{id}/archive", h.archive).Methods("POST")
	r.HandleFunc("/moderation/queue", h.queue).Methods("GET")
}

type createRequest struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type rejectRequest struct {
	Note string `json:"note"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	pf, err := h.service.Create(r.Context(), actor, req.Title, req.Slug)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, pf)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}

	portfolios, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, portfolios)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}
	portfolioID, ok := common.PathID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.service.Get(r.Context(), actor, portfolioID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Submit)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Approve)
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Archive)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}
	portfolioID, ok := common.PathID(w, r, "id")
	if !ok {
		return
	}

	var req rejectRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	pf, err := h.service.Reject(r.Context(), actor, portfolioID, req.Note)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, pf)
}

func (h *Handler) queue(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	portfolios, err := h.service.Queue(r.Context(), actor, limit, offset)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, portfolios)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, common.Actor, uint64) (*dbmysql.Portfolio, error)) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}
	portfolioID, ok := common.PathID(w, r, "id")
	if !ok {
		return
	}

	pf, err := fn(r.Context(), actor, portfolioID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, pf)
}
