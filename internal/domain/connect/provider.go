package connect

import "strings"

// ProviderCode identifies a third-party wellness provider
type ProviderCode string

const (
	// ProviderStrava represents the Strava fitness tracker
	ProviderStrava ProviderCode = "strava"
	// ProviderGoogleCalendar represents Google Calendar
	ProviderGoogleCalendar ProviderCode = "google_calendar"
	// ProviderSpotify represents Spotify
	ProviderSpotify ProviderCode = "spotify"
	// ProviderMyFitnessPal represents MyFitnessPal nutrition tracking
	ProviderMyFitnessPal ProviderCode = "myfitnesspal"
	// ProviderYouVersion represents the YouVersion Bible reading app
	ProviderYouVersion ProviderCode = "youversion"
)

// AllProviders lists every provider code in registration order
func AllProviders() []ProviderCode {
	return []ProviderCode{
		ProviderStrava,
		ProviderGoogleCalendar,
		ProviderSpotify,
		ProviderMyFitnessPal,
		ProviderYouVersion,
	}
}

// IsValid returns true if the provider code is known
func (c ProviderCode) IsValid() bool {
	switch c {
	case ProviderStrava, ProviderGoogleCalendar, ProviderSpotify,
		ProviderMyFitnessPal, ProviderYouVersion:
		return true
	default:
		return false
	}
}

// String returns the string representation of ProviderCode
func (c ProviderCode) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the provider
func (c ProviderCode) DisplayName() string {
	switch c {
	case ProviderStrava:
		return "Strava"
	case ProviderGoogleCalendar:
		return "Google Calendar"
	case ProviderSpotify:
		return "Spotify"
	case ProviderMyFitnessPal:
		return "MyFitnessPal"
	case ProviderYouVersion:
		return "YouVersion"
	default:
		return string(c)
	}
}

// RecordKind identifies the canonical record shape a provider fetch produces
type RecordKind string

const (
	// KindActivity is a fitness activity (run, ride, ...)
	KindActivity RecordKind = "activity"
	// KindCalendarEvent is a calendar event
	KindCalendarEvent RecordKind = "calendar_event"
	// KindListeningSession is a music or mindfulness listening session
	KindListeningSession RecordKind = "listening_session"
	// KindNutritionLog is a logged meal
	KindNutritionLog RecordKind = "nutrition_log"
	// KindReadingProgress is reading-plan progress
	KindReadingProgress RecordKind = "reading_progress"
)

// IsValid returns true if the record kind is known
func (k RecordKind) IsValid() bool {
	switch k {
	case KindActivity, KindCalendarEvent, KindListeningSession,
		KindNutritionLog, KindReadingProgress:
		return true
	default:
		return false
	}
}

// String returns the string representation of RecordKind
func (k RecordKind) String() string {
	return string(k)
}

// ProviderConfig holds the static OAuth configuration for one provider.
// Configs are immutable after process start; a provider with an empty
// ClientID is known but not configured and cannot be connected.
type ProviderConfig struct {
	ID           ProviderCode
	DisplayName  string
	AuthorizeURL string
	TokenURL     string
	APIBaseURL   string
	ClientID     string
	ClientSecret string
	Scopes       []string
	RedirectURI  string
}

// IsConfigured returns true if the provider has a client ID and can be offered
// as connectable
func (c *ProviderConfig) IsConfigured() bool {
	return c.ClientID != ""
}

// ScopeString returns the space-joined scope parameter value
func (c *ProviderConfig) ScopeString() string {
	return strings.Join(c.Scopes, " ")
}

// Registry is an immutable lookup table of provider configurations,
// built once at process start
type Registry struct {
	configs map[ProviderCode]*ProviderConfig
	order   []ProviderCode
}

// NewRegistry builds a registry from the given configs. Later entries with a
// duplicate ID overwrite earlier ones; iteration order follows first appearance.
func NewRegistry(configs []*ProviderConfig) *Registry {
	r := &Registry{
		configs: make(map[ProviderCode]*ProviderConfig, len(configs)),
		order:   make([]ProviderCode, 0, len(configs)),
	}
	for _, cfg := range configs {
		if _, exists := r.configs[cfg.ID]; !exists {
			r.order = append(r.order, cfg.ID)
		}
		r.configs[cfg.ID] = cfg
	}
	return r
}

// Get returns the config for a provider, or ErrUnknownProvider
func (r *Registry) Get(code ProviderCode) (*ProviderConfig, error) {
	cfg, ok := r.configs[code]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return cfg, nil
}

// All returns the configs in registration order
func (r *Registry) All() []*ProviderConfig {
	out := make([]*ProviderConfig, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.configs[code])
	}
	return out
}
