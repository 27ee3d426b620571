package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/devphaseX/voltvista-payments/internal/store"
)

type envelope map[string]any

const maxFormBytes = 1 << 16

func (app *application) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}

	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// readForm decodes an urlencoded form body into dst.
func (app *application) readForm(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("malformed form body: %w", err)
	}

	if err := app.formDecoder.Decode(dst, r.PostForm); err != nil {
		return fmt.Errorf("invalid form field: %w", err)
	}

	return nil
}

func resultPath(status string, provider store.Provider) string {
	return fmt.Sprintf("/payments/result?status=%s&provider=%s", url.QueryEscape(status), url.QueryEscape(string(provider)))
}
