package social

import (
	"net/http"

	"github.com/gorilla/mux"

	"artfolio/internal/common"
)

type Handler struct {
	service SocialService
}

func NewHandler(service SocialService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users/{id}/follow", h.follow).Methods("POST")
	r.HandleFunc("/users/{id}/follow", h.unfollow).Methods("DELETE")
	r.HandleFunc("/documents/{id}/like", h.like).Methods("POST")
	r.HandleFunc("/documents/{id}/like", h.unlike).Methods("DELETE")
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request) {
	h.setFollow(w, r, true)
}

func (h *Handler) unfollow(w http.ResponseWriter, r *http.Request) {
	h.setFollow(w, r, false)
}

func (h *Handler) like(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, true)
}

func (h *Handler) unlike(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, false)
}

func (h *Handler) setFollow(w http.ResponseWriter, r *http.Request, want bool) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}
	followeeID, ok := common.PathID(w, r, "id")
	if !ok {
		return
	}

	state, err := h.service.SetFollow(r.Context(), actor, followeeID, want)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) setLike(w http.ResponseWriter, r *http.Request, want bool) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}
	portfolioID, ok := common.PathID(w, r, "id")
	if !ok {
		return
	}

	state, err := h.service.SetLike(r.Context(), actor, portfolioID, want)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, state)
}
