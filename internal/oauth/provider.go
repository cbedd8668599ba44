// Package oauth integrates external identity providers through the
// authorization-code flow.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/techtimeoff/leave-service/internal/domain"
)

// ErrProfileFetch wraps any failure to read the provider's user profile.
var ErrProfileFetch = errors.New("oauth: profile fetch failed")

// Profile is the provider-asserted identity after a successful exchange.
// Email is empty when the provider did not disclose a usable address.
type Profile struct {
	ProviderID  string
	Email       string
	DisplayName string
	AvatarURL   string
}

// Provider is one configured identity provider.
type Provider interface {
	Name() domain.AuthProvider
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// Registry holds the providers that have credentials configured.
type Registry map[domain.AuthProvider]Provider

// Get returns the provider registered under name.
func (r Registry) Get(name domain.AuthProvider) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}

// Register adds p under its own name.
func (r Registry) Register(p Provider) {
	r[p.Name()] = p
}

// getJSON performs an authenticated GET and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", ErrProfileFetch, url, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrProfileFetch, url, err)
	}
	return nil
}

func exchangeClient(ctx context.Context, cfg *oauth2.Config, code string) (*http.Client, error) {
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth: code exchange: %w", err)
	}
	return cfg.Client(ctx, token), nil
}
