package window

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type windowResponse struct {
	Summary Summary  `json:"summary"`
	Samples []Sample `json:"samples"`
}

// Handler serves the summary and samples as JSON. The optional "latest" query
// parameter limits the response to the newest n samples.
func (w *Window) Handler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.Header().Set("Allow", http.MethodGet)
			http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		samples := w.ring.ToSlice()
		summary := w.summarize(samples)

		if raw := r.URL.Query().Get("latest"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				http.Error(rw, "latest must be a non-negative integer", http.StatusBadRequest)
				return
			}
			if len(samples) > n {
				samples = samples[len(samples)-n:]
			}
		}

		rw.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(rw).Encode(windowResponse{Summary: summary, Samples: samples}); err != nil {
			w.logger.Warn("failed to encode window response", "error", err)
		}
	})
}
