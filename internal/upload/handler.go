package upload

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"artfolio/internal/common"
)

type Handler struct {
	service UploadService
}

func NewHandler(service UploadService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the broker operations behind session auth.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/uploads/presign", h.presign).Methods("POST")
	r.HandleFunc("/uploads/confirm", h.confirm).Methods("POST")
}

// RegisterMediaRoutes mounts the object store surface. The write side is
// authorized by the upload grant alone; the read side is public.
func (h *Handler) RegisterMediaRoutes(r *mux.Router) {
	r.HandleFunc("/media/objects/{key:.+}", h.putObject).Methods("PUT")
	r.HandleFunc("/media/objects/{key:.+}", h.getObject).Methods("GET")
	r.HandleFunc("/uploads/relay", h.relay).Methods("POST")
}

type confirmRequest struct {
	SessionID string `json:"session_id"`
	ObjectKey string `json:"object_key"`
}

func (h *Handler) presign(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}

	var req PresignRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	grant, err := h.service.Presign(r.Context(), actor, req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, grant)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	actor, ok := common.RequireActor(w, r)
	if !ok {
		return
	}

	var req confirmRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if req.SessionID == "" || req.ObjectKey == "" {
		common.WriteError(w, common.NewValidation("session_id and object_key are required"))
		return
	}

	result, err := h.service.Confirm(r.Context(), actor, req.SessionID, req.ObjectKey)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, result)
}

// putObject is the direct write path: the client PUTs bytes straight against
// the granted object key.
func (h *Handler) putObject(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	h.writeObject(w, r, key, r.Header.Get("X-Upload-Grant"))
}

// relay is the same-origin fallback for clients whose direct write was
// blocked in transit. Same grant, same bytes, same store write.
func (h *Handler) relay(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-Object-Key")
	if key == "" {
		key = r.URL.Query().Get("key")
	}
	if key == "" {
		common.WriteError(w, common.NewValidation("object key is required"))
		return
	}
	h.writeObject(w, r, key, r.Header.Get("X-Upload-Grant"))
}

func (h *Handler) writeObject(w http.ResponseWriter, r *http.Request, key, grantToken string) {
	if grantToken == "" {
		common.WriteErrorStatus(w, http.StatusUnauthorized, "upload grant required")
		return
	}

	info, err := h.service.WriteObject(r.Context(), grantToken, key, r.Body)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, info)
}

func (h *Handler) getObject(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	reader, info, err := h.service.ReadObject(r.Context(), key)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	defer reader.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size))

	if _, err := io.Copy(w, reader); err != nil {
		log.Printf("Error streaming object %s: %v", key, err)
	}
}
