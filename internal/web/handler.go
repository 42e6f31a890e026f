package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/btouchard/gitops/internal/bus"
	"github.com/btouchard/gitops/internal/event"
	"github.com/btouchard/gitops/internal/store"
	"github.com/btouchard/gitops/internal/subscription"
)

// maxPayloadSize bounds inbound webhook bodies. GitHub caps payloads at 25MB
// but push payloads are far smaller; 1MB is generous.
const maxPayloadSize = 1 << 20

type handler struct {
	bus           *bus.Bus
	subscriptions *subscription.Service
}

// publish is the inbound webhook endpoint.
func (h *handler) publish(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": string(event.ReasonMalformedPayload)})
		return
	}

	res := event.Parse(event.Request{
		UserAgent: r.Header.Get("User-Agent"),
		EventType: r.Header.Get("X-GitHub-Event"),
		Body:      body,
	})

	switch res.Outcome {
	case event.Rejected:
		slog.Debug("webhook rejected", "reason", res.Reason, "error", res.Err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": string(res.Reason)})

	case event.Ignored:
		w.WriteHeader(http.StatusNoContent)

	case event.Accepted:
		deliveryID := r.Header.Get("X-GitHub-Delivery")
		if deliveryID == "" {
			deliveryID = uuid.NewString()
		}
		slog.Info("push event accepted",
			"delivery_id", deliveryID,
			"repository", res.Event.Repository,
			"branch", res.Event.Branch)
		h.bus.Publish(bus.Push{Event: res.Event, DeliveryID: deliveryID})
		w.WriteHeader(http.StatusAccepted)
	}
}

// commandRequest is what the chat gateway posts on behalf of a user.
type commandRequest struct {
	From string   `json:"from"`
	Args []string `json:"args"`
}

type commandResponse struct {
	Reply        string   `json:"reply,omitempty"`
	Repositories []string `json:"repositories,omitempty"`
}

func (h *handler) subscribe(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCommand(w, r)
	if !ok {
		return
	}

	reply, err := h.subscriptions.Subscribe(req.From, req.Args)
	if err != nil {
		storeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Reply: reply})
}

func (h *handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCommand(w, r)
	if !ok {
		return
	}

	var rawURL string
	if len(req.Args) > 0 {
		rawURL = req.Args[0]
	}

	reply, err := h.subscriptions.Unsubscribe(req.From, rawURL)
	if err != nil {
		storeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Reply: reply})
}

func (h *handler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCommand(w, r)
	if !ok {
		return
	}

	repositories, err := h.subscriptions.List(req.From)
	if err != nil {
		storeFailure(w, err)
		return
	}
	if len(repositories) == 0 {
		writeJSON(w, http.StatusOK, commandResponse{Reply: subscription.NoSubscriptionsReply})
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Repositories: repositories})
}

func decodeCommand(w http.ResponseWriter, r *http.Request) (commandRequest, bool) {
	var req commandRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadSize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed_request"})
		return commandRequest{}, false
	}
	if req.From == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing_from"})
		return commandRequest{}, false
	}
	return req, true
}

// storeFailure reports a registry failure to the caller instead of masking it
// as "not subscribed".
func storeFailure(w http.ResponseWriter, err error) {
	slog.Error("subscription store failure", "error", err)
	status := http.StatusInternalServerError
	if errors.Is(err, store.ErrUnavailable) {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": "store_unavailable"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
