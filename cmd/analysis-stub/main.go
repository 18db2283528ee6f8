// Command analysis-stub serves a canned Messages API reply so the CLI and
// HTTP API can be exercised without a real API key.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

type messagesRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    string `json:"system"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

const cannedReply = `Polarization score: 72
Main viewpoint summary: The article argues the policy mainly benefits large developers. It cites few residents.
Detected biases:
- Emotive framing of opponents
- Selective use of statistics
Missing perspectives:
- Local residents who support the change
- Independent economists
Alternative viewpoints:
- [Council impact assessment](https://example.org/impact) - Official cost and benefit figures
- [Residents association statement](https://example.org/residents) - Community view in favor`

func main() {
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}
	status, _ := strconv.Atoi(strings.TrimSpace(os.Getenv("FORCE_STATUS")))

	log.Info().Str("addr", addr).Int("force_status", status).Msg("analysis-stub listening")
	if err := http.ListenAndServe(addr, newMux(status)); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}

// newMux answers POST /v1/messages. A non-zero forceStatus makes every call
// fail with that status and a service-style error body.
func newMux(forceStatus int) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()
		w.Header().Set("Content-Type", "application/json")
		if forceStatus != 0 {
			w.WriteHeader(forceStatus)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"type":  "error",
				"error": map[string]string{"type": "stub_error", "message": http.StatusText(forceStatus)},
			})
			return
		}
		if strings.TrimSpace(r.Header.Get("x-api-key")) == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"type":  "error",
				"error": map[string]string{"type": "authentication_error", "message": "missing x-api-key"},
			})
			return
		}
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"type":  "error",
				"error": map[string]string{"type": "invalid_request_error", "message": "messages required"},
			})
			return
		}
		log.Debug().Str("model", req.Model).Int("chars", len(req.Messages[0].Content)).Msg("analysis request")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_stub",
			"type":        "message",
			"role":        "assistant",
			"model":       req.Model,
			"stop_reason": "end_turn",
			"content":     []map[string]string{{"type": "text", "text": cannedReply}},
		})
	})
	return mux
}
