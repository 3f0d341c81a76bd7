package firefly

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// TokenSource returns an access token for a single API call
type TokenSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// TokenService fetches a fresh access token from a token-issuing endpoint on
// every call. Tokens are never cached.
type TokenService struct {
	httpClient *http.Client
	url        string
}

// NewTokenService creates a token service client for the given URL
func NewTokenService(httpClient *http.Client, url string) *TokenService {
	return &TokenService{httpClient: httpClient, url: url}
}

// Token implements TokenSource
func (s *TokenService) Token(ctx context.Context) (*oauth2.Token, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	tok := &oauth2.Token{AccessToken: result.AccessToken, TokenType: "Bearer"}
	if !tok.Valid() {
		return nil, fmt.Errorf("token response has no access_token")
	}
	return tok, nil
}

// StaticTokenSource adapts an oauth2.TokenSource, typically a fixed token
// from configuration
type StaticTokenSource struct {
	src oauth2.TokenSource
}

// NewStaticTokenSource returns a TokenSource that always yields accessToken
func NewStaticTokenSource(accessToken string) *StaticTokenSource {
	return &StaticTokenSource{
		src: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
	}
}

// Token implements TokenSource
func (s *StaticTokenSource) Token(_ context.Context) (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if !tok.Valid() {
		return nil, fmt.Errorf("static access token is empty")
	}
	return tok, nil
}
