package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Request carries the parts of an inbound webhook request the parser reads.
type Request struct {
	UserAgent string // provider-identifying header, "<Provider>/<version>"
	EventType string // provider event-type header (X-GitHub-Event)
	Body      []byte
}

// FromSupportedProvider reports whether the User-Agent header identifies the
// supported provider. Pure predicate; a second provider would get its own.
func FromSupportedProvider(userAgent string) bool {
	name, _, _ := strings.Cut(userAgent, "/")
	return name == hookshotAgent
}

// Parse validates a raw inbound request and extracts a normalized push event.
// It is a pure function of the request: no side effects, no store access.
// The payload is not read at all when the provider is unsupported.
func Parse(req Request) Result {
	if !FromSupportedProvider(req.UserAgent) {
		return Result{
			Outcome: Rejected,
			Reason:  ReasonUnsupportedProvider,
			Err:     fmt.Errorf("unsupported provider %q", req.UserAgent),
		}
	}

	if req.EventType == eventPing {
		return Result{Outcome: Ignored}
	}

	ev, err := normalize(req.Body)
	if err != nil {
		return Result{
			Outcome: Rejected,
			Reason:  ReasonMalformedPayload,
			Err:     err,
		}
	}

	return Result{Outcome: Accepted, Event: ev}
}

// pushPayload mirrors the fields of the provider's push payload this relay
// cares about.
type pushPayload struct {
	Repository struct {
		URL string `json:"url"`
	} `json:"repository"`
	Ref    string `json:"ref"`
	Pusher struct {
		Email string `json:"email"`
	} `json:"pusher"`
	Compare string `json:"compare"`
}

// normalize converts a validated provider payload into a PushEvent.
// Every field is required; a missing one makes the payload malformed.
func normalize(body []byte) (PushEvent, error) {
	var p pushPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return PushEvent{}, fmt.Errorf("decoding payload: %w", err)
	}

	switch {
	case p.Repository.URL == "":
		return PushEvent{}, fmt.Errorf("payload missing repository.url")
	case p.Ref == "":
		return PushEvent{}, fmt.Errorf("payload missing ref")
	case p.Pusher.Email == "":
		return PushEvent{}, fmt.Errorf("payload missing pusher.email")
	case p.Compare == "":
		return PushEvent{}, fmt.Errorf("payload missing compare")
	}

	return PushEvent{
		Repository: p.Repository.URL,
		Branch:     shortRef(p.Ref),
		Pusher:     p.Pusher.Email,
		CompareURL: p.Compare,
	}, nil
}

// shortRef returns the last path segment of a fully qualified ref,
// "refs/heads/main" → "main".
func shortRef(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
