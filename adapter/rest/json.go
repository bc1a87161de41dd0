package rest

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
)

func readRequestJSON(r *http.Request, target any) error {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("malformed Content-Type header: %w", err)
	}
	if mediaType != "application/json" {
		return fmt.Errorf("expected application/json Content-Type, got %s", mediaType)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}

	return nil
}

func renderJSON(w http.ResponseWriter, v any) {
	renderJSONStatus(w, http.StatusOK, v)
}

func renderJSONStatus(w http.ResponseWriter, status int, v any) {
	js, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

type errorResponse struct {
	Error string `json:"error"`
}

func renderJSONError(w http.ResponseWriter, status int, err error) {
	js, merr := json.Marshal(errorResponse{Error: err.Error()})
	if merr != nil {
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}
