package block

import (
	"net/http"

	"github.com/gorilla/mux"

	"artfolio/internal/common"
	"artfolio/internal/dbmysql"
)

type Handler struct {
	service BlockService
}

func NewHandler(service BlockService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/documents/{id}/blocks", h.list).Methods("GET")
	r.HandleFunc("/documents/{id}/blocks", h.add).Methods("POST")
	r.HandleFunc("/documents/{id}/blocks/reorder", h.reorder).Methods("PUT")
	r.HandleFunc("/documents/{id}/blocks/{blockId}", h.update).Methods("PATCH")
	r.HandleFunc("/documents/{id}/blocks/{blockId}", h.remove).Methods("DELETE")
}

type addBlockRequest struct {
	Kind    string                 `json:"kind"`
	Payload map[string]interface{} `json:"payload"`
}

type reorderRequest struct {
	BlockIDs []uint64 `json:"block_ids"`
}

type blocksResponse struct {
	Blocks []*dbmysql.ContentBlock `json:"blocks"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}
	portfolioID, ok := common.PathID(w, r, "id")
	if !ok {
		return
	}

	blocks, err := h.service.List(r.Context(), actor, portfolioID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, blocksResponse{Blocks: blocks})
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}
	portfolioID, ok := common.PathID(w, r, "id")
	if !ok {
		return
	}

	var req addBlockRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	blocks, err := h.service.Add(r.Context(), actor, portfolioID, req.Kind, req.Payload)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, blocksResponse{Blocks: blocks})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}
	portfolioID, ok := common.PathID(w, r, "id")
	if !ok {
		return
	}
	blockID, ok := common.PathID(w, r, "blockId")
	if !ok {
		return
	}

	var partial map[string]interface{}
	if err := common.DecodeJSON(r, &partial); err != nil {
		common.WriteError(w, err)
		return
	}

	blocks, err := h.service.Update(r.Context(), actor, portfolioID, blockID, partial)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, blocksResponse{Blocks: blocks})
}

func (h *Handler) reorder(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}
	portfolioID, ok := common.PathID(w, r, "id")
	if !ok {
		return
	}

	var req reorderRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	blocks, err := h.service.Reorder(r.Context(), actor, portfolioID, req.BlockIDs)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, blocksResponse{Blocks: blocks})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}
	portfolioID, ok := common.PathID(w, r, "id")
	if !ok {
		return
	}
	blockID, ok := common.PathID(w, r, "blockId")
	if !ok {
		return
	}

	blocks, err := h.service.Remove(r.Context(), actor, portfolioID, blockID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, blocksResponse{Blocks: blocks})
}
