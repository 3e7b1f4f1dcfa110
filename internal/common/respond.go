package common

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type errorBody struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// WriteError maps a taxonomy error to its status code and writes the body.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorStatus(w, HTTPStatus(err), err.Error())
}

func WriteErrorStatus(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorBody{Error: msg})
}

// PathID parses a numeric mux path variable, writing the 400 itself on junk.
func PathID(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil {
		WriteError(w, NewValidation("invalid %s", name))
		return 0, false
	}
	return id, true
}

// DecodeJSON reads a request body into dst, rejecting unknown garbage early.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewValidation("invalid request body: %v", err)
	}
	return nil
}
