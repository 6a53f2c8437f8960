package provider

import (
	"github.com/vesi/backend/internal/domain/connect"
	"github.com/vesi/backend/internal/infrastructure/config"
)

// Provider endpoint constants. These are static per integration; client
// credentials come from configuration.
const (
	StravaAuthorizeURL = "https://www.strava.com/oauth/authorize"
	StravaTokenURL     = "https://www.strava.com/oauth/token"
	StravaAPIBaseURL   = "https://www.strava.com/api/v3"

	GoogleAuthorizeURL   = "https://accounts.google.com/o/oauth2/v2/auth"
	GoogleTokenURL       = "https://oauth2.googleapis.com/token"
	GoogleCalendarAPIURL = "https://www.googleapis.com/calendar/v3"

	SpotifyAuthorizeURL = "https://accounts.spotify.com/authorize"
	SpotifyTokenURL     = "https://accounts.spotify.com/api/token"
	SpotifyAPIBaseURL   = "https://api.spotify.com/v1"

	MyFitnessPalAuthorizeURL = "https://www.myfitnesspal.com/oauth2/authorize"
	MyFitnessPalTokenURL     = "https://api.myfitnesspal.com/oauth2/token"
	MyFitnessPalAPIBaseURL   = "https://api.myfitnesspal.com/v2"

	YouVersionAuthorizeURL = "https://auth.youversionapi.com/oauth/authorize"
	YouVersionTokenURL     = "https://auth.youversionapi.com/oauth/token"
	YouVersionAPIBaseURL   = "https://api.youversionapi.com/v1"
)

// BuildRegistry assembles the immutable provider registry from the static
// endpoint catalog and the configured client credentials. It runs once at
// process start; nothing reads provider env state after this.
func BuildRegistry(cfg *config.Config) *connect.Registry {
	redirectURI := cfg.RedirectURI()

	entry := func(code connect.ProviderCode, authorizeURL, tokenURL, apiBaseURL string, scopes []string) *connect.ProviderConfig {
		creds := cfg.Providers[code.String()]
		return &connect.ProviderConfig{
			ID:           code,
			DisplayName:  code.DisplayName(),
			AuthorizeURL: authorizeURL,
			TokenURL:     tokenURL,
			APIBaseURL:   apiBaseURL,
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Scopes:       scopes,
			RedirectURI:  redirectURI,
		}
	}

	return connect.NewRegistry([]*connect.ProviderConfig{
		entry(connect.ProviderStrava,
			StravaAuthorizeURL, StravaTokenURL, StravaAPIBaseURL,
			[]string{"read", "activity:read_all"}),
		entry(connect.ProviderGoogleCalendar,
			GoogleAuthorizeURL, GoogleTokenURL, GoogleCalendarAPIURL,
			[]string{"https://www.googleapis.com/auth/calendar.readonly"}),
		entry(connect.ProviderSpotify,
			SpotifyAuthorizeURL, SpotifyTokenURL, SpotifyAPIBaseURL,
			[]string{"user-read-recently-played"}),
		entry(connect.ProviderMyFitnessPal,
			MyFitnessPalAuthorizeURL, MyFitnessPalTokenURL, MyFitnessPalAPIBaseURL,
			[]string{"diary"}),
		entry(connect.ProviderYouVersion,
			YouVersionAuthorizeURL, YouVersionTokenURL, YouVersionAPIBaseURL,
			[]string{"bible.reading_plans"}),
	})
}
