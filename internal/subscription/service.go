// Package subscription implements the subscribe/unsubscribe/list operations
// exposed to the chat gateway, including their user-visible reply lines.
package subscription

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/btouchard/gitops/internal/store"
)

// Reply lines. The wording is part of the bot's user interface.
const (
	InvalidURLReply        = "Please inform a valid URL."
	AlreadySubscribedReply = "Repository already subscribed."
	SubscribedReply        = "Done."
	UnsubscribedReply      = "Done"
	NotSubscribedReply     = "Sorry, you're not subscribed to this repository."
	NoSubscriptionsReply   = "Sorry, no subscribed repository."
)

// URLValidator gates candidate repository URLs before any store mutation.
type URLValidator interface {
	Validate(candidate string) (string, bool)
}

// Service owns the command semantics of the subscription registry.
type Service struct {
	store      store.Store
	urls       URLValidator
	webhookURL string // endpoint hint shown after subscribing to a known repository
}

// NewService creates a Service. publicURL is the externally visible base URL
// of this relay, used for the webhook endpoint hint.
func NewService(st store.Store, urls URLValidator, publicURL string) *Service {
	return &Service{
		store:      st,
		urls:       urls,
		webhookURL: strings.TrimSuffix(publicURL, "/") + "/publish",
	}
}

// Subscribe registers from as a subscriber of the repository named by the
// first argument; remaining arguments are ignored. The candidate URL must
// pass the reachability probe before the store is touched. Exactly one reply
// line is returned; a store failure is returned as an error instead of being
// masked as a reply.
func (s *Service) Subscribe(from string, args []string) (string, error) {
	if len(args) == 0 {
		return InvalidURLReply, nil
	}
	repository, ok := s.urls.Validate(args[0])
	if !ok {
		return InvalidURLReply, nil
	}
	subscriber := canonicalID(from)

	exists, err := s.store.RepositoryExists(repository)
	if err != nil {
		return "", fmt.Errorf("subscribe: %w", err)
	}

	if !exists {
		// First subscriber creates the repository record.
		if err := s.store.AddSubscriber(repository, subscriber); err != nil {
			return "", fmt.Errorf("subscribe: %w", err)
		}
		return SubscribedReply, nil
	}

	subscribed, err := s.store.IsSubscribed(repository, subscriber)
	if err != nil {
		return "", fmt.Errorf("subscribe: %w", err)
	}
	if subscribed {
		return AlreadySubscribedReply, nil
	}

	if err := s.store.AddSubscriber(repository, subscriber); err != nil {
		return "", fmt.Errorf("subscribe: %w", err)
	}
	return fmt.Sprintf("Done. You may now set repository webhook to: %s", s.webhookURL), nil
}

// Unsubscribe removes from's subscription to rawURL. The URL is checked only
// syntactically — no reachability probe — so subscriptions to repositories
// that have since gone away can still be removed. The literal argument string
// must match the stored key.
func (s *Service) Unsubscribe(from, rawURL string) (string, error) {
	if !plausibleURL(rawURL) {
		return InvalidURLReply, nil
	}
	subscriber := canonicalID(from)

	subscribed, err := s.store.IsSubscribed(rawURL, subscriber)
	if err != nil {
		return "", fmt.Errorf("unsubscribe: %w", err)
	}
	if !subscribed {
		return NotSubscribedReply, nil
	}

	if err := s.store.RemoveSubscriber(rawURL, subscriber); err != nil {
		return "", fmt.Errorf("unsubscribe: %w", err)
	}
	return UnsubscribedReply, nil
}

// List returns the repositories from is subscribed to.
func (s *Service) List(from string) ([]string, error) {
	var repositories []string
	for repository, err := range s.store.RepositoriesOf(canonicalID(from)) {
		if err != nil {
			return nil, fmt.Errorf("listing subscriptions: %w", err)
		}
		repositories = append(repositories, repository)
	}
	return repositories, nil
}

// canonicalID normalizes a subscriber identifier. Identifiers are opaque and
// case-sensitive; only surrounding whitespace is stripped.
func canonicalID(id string) string {
	return strings.TrimSpace(id)
}

// plausibleURL accepts anything shaped like an http(s) URL without probing it.
func plausibleURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
