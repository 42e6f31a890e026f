// Package event validates inbound hosting-provider webhooks and normalizes
// push payloads into typed events.
package event

// ProviderName labels the single supported hosting provider in outbound
// messages. Other providers, like GitLab, will need their own normalizer.
const ProviderName = "GitHub"

// hookshotAgent is the User-Agent prefix GitHub stamps on webhook deliveries,
// e.g. "GitHub-Hookshot/044aadd".
const hookshotAgent = "GitHub-Hookshot"

// eventPing is the handshake event GitHub sends when a webhook is configured.
const eventPing = "ping"

// PushEvent is one normalized notification of new commits on a branch.
// Constructed fresh per request and discarded after dispatch.
type PushEvent struct {
	Repository string // canonical repository URL
	Branch     string // short ref name
	Pusher     string // identifying email or handle
	CompareURL string // diff link
}

// Outcome classifies a parsed inbound request.
type Outcome int

const (
	// Rejected means the request is not a usable event: unknown provider or
	// malformed payload. The caller answers with a client error.
	Rejected Outcome = iota
	// Ignored means a valid but uninteresting event (provider handshake).
	// A successful no-op, distinct from rejection.
	Ignored
	// Accepted means a push event was extracted and should be dispatched.
	Accepted
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Ignored:
		return "ignored"
	case Accepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// Reason identifies why a request was rejected. The value doubles as the
// machine-readable error code on the webhook response.
type Reason string

const (
	ReasonUnsupportedProvider Reason = "unsupported_provider"
	ReasonMalformedPayload    Reason = "malformed_payload"
)

// Result is the typed outcome of parsing one inbound request.
// Event is populated only when Outcome is Accepted; Reason and Err only when
// Outcome is Rejected.
type Result struct {
	Outcome Outcome
	Event   PushEvent
	Reason  Reason
	Err     error
}
