package pulse

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
)

const JSONContentType = "application/json"

// StatusHandler exposes adapter introspection: attached handlers and
// suppressed-failure counters.
func StatusHandler(bus *Bus) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = writeJSONResponse(w, http.StatusOK, struct {
			CaptureEnabled bool               `json:"captureEnabled"`
			Suppressed     map[string]Failure `json:"suppressed"`
		}{CaptureEnabled(), SuppressedFailures()})
	})
	r.Get("/handlers", func(w http.ResponseWriter, _ *http.Request) {
		_ = writeJSONResponse(w, http.StatusOK, bus.Handlers())
	})
	return r
}

func writeJSONResponse(w http.ResponseWriter, code int, resp interface{}) error {
	enc, err := json.Marshal(resp)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", JSONContentType)
	w.WriteHeader(code)

	_, err = w.Write(enc)
	if err != nil {
		return err
	}
	return nil
}
