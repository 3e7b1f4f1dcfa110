package notif

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"artfolio/internal/common"
)

type Handler struct {
	service *NotificationService
}

func NewHandler(service *NotificationService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/notifications", h.list).Methods("GET")
	r.HandleFunc("/notifications/read-all", h.readAll).Methods("POST")
	r.HandleFunc("/notifications/{id}/read", h.read).Methods("POST")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	page, err := h.service.List(r.Context(), actor, limit, offset)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}
	notificationID, ok := common.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(r.Context(), actor, notificationID); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]bool{"read": true})
}

func (h *Handler) readAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}

	if err := h.service.MarkAllRead(r.Context(), actor); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]bool{"read": true})
}
