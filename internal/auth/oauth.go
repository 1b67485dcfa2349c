package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/oauth2"

	"github.com/bopopescu/openlava-web/internal/config"
)

// OAuthProvider runs the authorization-code flow against whatever
// identity provider the site configured. The userinfo response's name
// is used as the cluster username.
type OAuthProvider struct {
	cfg         *oauth2.Config
	userInfoURL string
}

func NewOAuthProvider(c config.OAuth) *OAuthProvider {
	return &OAuthProvider{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  c.AuthURL,
				TokenURL: c.TokenURL,
			},
			RedirectURL: c.RedirectURL,
			Scopes:      c.Scopes,
		},
		userInfoURL: c.UserInfoURL,
	}
}

func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	return token, nil
}

type userInfo struct {
	Username          string `json:"username"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
}

// Username fetches the provider's userinfo document and picks the
// first usable identifier out of it.
func (p *OAuthProvider) Username(ctx context.Context, token *oauth2.Token) (string, error) {
	resp, err := p.cfg.Client(ctx, token).Get(p.userInfoURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to parse userinfo: %w", err)
	}

	switch {
	case info.Username != "":
		return info.Username, nil
	case info.PreferredUsername != "":
		return info.PreferredUsername, nil
	case info.Email != "":
		return info.Email, nil
	}

	return "", fmt.Errorf("userinfo response carries no usable name")
}

// State mints the random state parameter for one login round trip.
func State() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	return hex.EncodeToString(b), nil
}
