package oauth

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/techtimeoff/leave-service/internal/config"
	"github.com/techtimeoff/leave-service/internal/domain"
)

const githubAPIBase = "https://api.github.com"

var githubHeaders = map[string]string{
	"Accept":               "application/vnd.github+json",
	"X-GitHub-Api-Version": "2022-11-28",
}

// GitHubProvider signs users in with a GitHub account.
type GitHubProvider struct {
	config  *oauth2.Config
	apiBase string
}

// NewGitHubProvider builds the provider from client credentials.
func NewGitHubProvider(cfg config.OAuthProviderConfig) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBase: githubAPIBase,
	}
}

func (p *GitHubProvider) Name() domain.AuthProvider { return domain.AuthProviderGitHub }

func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*Profile, error) {
	client, err := exchangeClient(ctx, p.config, code)
	if err != nil {
		return nil, err
	}

	var user githubUser
	if err := getJSON(ctx, client, p.apiBase+"/user", githubHeaders, &user); err != nil {
		return nil, err
	}

	profile := &Profile{
		ProviderID:  strconv.FormatInt(user.ID, 10),
		DisplayName: strings.TrimSpace(user.Name),
		AvatarURL:   user.AvatarURL,
		Email:       user.Email,
	}
	if profile.DisplayName == "" {
		profile.DisplayName = user.Login
	}

	// The public profile omits private addresses; the emails endpoint lists them.
	if profile.Email == "" {
		var emails []githubEmail
		if err := getJSON(ctx, client, p.apiBase+"/user/emails", githubHeaders, &emails); err != nil {
			return nil, err
		}
		profile.Email = pickGitHubEmail(emails)
	}
	return profile, nil
}

// pickGitHubEmail prefers the primary verified address, then any verified one.
func pickGitHubEmail(emails []githubEmail) string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email
		}
	}
	return ""
}
