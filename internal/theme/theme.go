package theme

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Name identifies one theme of the fixed, statically known set.
type Name string

const (
	NameLight Name = "light"
	NameDark  Name = "dark"
	NameBlue  Name = "blue"
	NameGreen Name = "green"
	NameMono  Name = "mono"
)

// Token is a semantic style slot consumed by view modules.
type Token string

const (
	TokenBody             Token = "body"
	TokenText             Token = "text"
	TokenExpTxtColor      Token = "expTxtColor"
	TokenHighlight        Token = "highlight"
	TokenDark             Token = "dark"
	TokenSecondaryText    Token = "secondaryText"
	TokenImageHighlight   Token = "imageHighlight"
	TokenCompImgHighlight Token = "compImgHighlight"
	TokenJacketColor      Token = "jacketColor"
	TokenHeaderColor      Token = "headerColor"
	TokenSplashBg         Token = "splashBg"
)

// Theme is an immutable token -> value mapping. A *Theme is shared by
// reference through a whole render pass and is never partially updated.
type Theme struct {
	name   Name
	tokens map[Token]string
}

// New builds a theme from a copy of tokens.
func New(name Name, tokens map[Token]string) *Theme {
	own := make(map[Token]string, len(tokens))
	for k, v := range tokens {
		own[k] = v
	}
	return &Theme{name: name, tokens: own}
}

// Name reports which theme this is.
func (t *Theme) Name() Name {
	if t == nil {
		return ""
	}
	return t.name
}

// Value returns the token value, or "" when the theme is nil or lacks it.
// Callers treat "" as "leave unstyled".
func (t *Theme) Value(tok Token) string {
	v, _ := t.Lookup(tok)
	return v
}

// Lookup returns the token value and whether it was present.
func (t *Theme) Lookup(tok Token) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.tokens[tok]
	return v, ok
}

// Tokens returns a copy of the token map.
func (t *Theme) Tokens() map[Token]string {
	out := make(map[Token]string)
	if t == nil {
		return out
	}
	for k, v := range t.tokens {
		out[k] = v
	}
	return out
}

// TermProfile describes terminal rendering capabilities derived from TERM.
type TermProfile struct {
	Colors    int
	TrueColor bool
	IsTTY     bool
}

// TermProfileDetector maps a TERM value to a terminal capability profile.
type TermProfileDetector func(term string) TermProfile

// ErrUnknownTheme is returned when a requested theme is not in the set.
var ErrUnknownTheme = errors.New("unknown theme")

var (
	termProfileCache sync.Map
	knownProfiles    = map[string]TermProfile{
		"dumb":           {Colors: 0, TrueColor: false, IsTTY: false},
		"ansi":           {Colors: 8, TrueColor: false, IsTTY: true},
		"linux":          {Colors: 16, TrueColor: false, IsTTY: true},
		"xterm":          {Colors: 16, TrueColor: false, IsTTY: true},
		"xterm-256color": {Colors: 256, TrueColor: false, IsTTY: true},
		"screen":         {Colors: 8, TrueColor: false, IsTTY: true},
		"tmux":           {Colors: 256, TrueColor: false, IsTTY: true},
		"vt100":          {Colors: 8, TrueColor: false, IsTTY: true},
		"xterm-kitty":    {Colors: 1 << 24, TrueColor: true, IsTTY: true},
		"wezterm":        {Colors: 1 << 24, TrueColor: true, IsTTY: true},
	}
)

var order = [...]Name{NameLight, NameDark, NameBlue, NameGreen, NameMono}

var registry = map[Name]*Theme{
	NameLight: New(NameLight, map[Token]string{
		TokenBody:             "#FFFFFF",
		TokenText:             "#343434",
		TokenExpTxtColor:      "#000000",
		TokenHighlight:        "#FFDDE9",
		TokenDark:             "#000000",
		TokenSecondaryText:    "#7F8DAA",
		TokenImageHighlight:   "#FF8C42",
		TokenCompImgHighlight: "#E6E6E6",
		TokenJacketColor:      "#B85C38",
		TokenHeaderColor:      "#FFB8C2",
		TokenSplashBg:         "#FFF1E6",
	}),
	NameDark: New(NameDark, map[Token]string{
		TokenBody:             "#1D1D1D",
		TokenText:             "#FFFFFF",
		TokenExpTxtColor:      "#FFFFFF",
		TokenHighlight:        "#686868",
		TokenDark:             "#000000",
		TokenSecondaryText:    "#8D8D8D",
		TokenImageHighlight:   "#0E6BA8",
		TokenCompImgHighlight: "#2B2B2B",
		TokenJacketColor:      "#686868",
		TokenHeaderColor:      "#CDCDCD",
		TokenSplashBg:         "#101010",
	}),
	NameBlue: New(NameBlue, map[Token]string{
		TokenBody:             "#EDF9FE",
		TokenText:             "#001C55",
		TokenExpTxtColor:      "#000A12",
		TokenHighlight:        "#A6E1FA",
		TokenDark:             "#0E6BA8",
		TokenSecondaryText:    "#7F8DAA",
		TokenImageHighlight:   "#0E6BA8",
		TokenCompImgHighlight: "#E6E6E6",
		TokenJacketColor:      "#0A2472",
		TokenHeaderColor:      "#0E6BA8",
		TokenSplashBg:         "#001C55",
	}),
	NameGreen: New(NameGreen, map[Token]string{
		TokenBody:             "#F1FFF5",
		TokenText:             "#0A3D23",
		TokenExpTxtColor:      "#06200F",
		TokenHighlight:        "#A7E8BD",
		TokenDark:             "#1E6B3F",
		TokenSecondaryText:    "#6B8F78",
		TokenImageHighlight:   "#1E6B3F",
		TokenCompImgHighlight: "#DDEFE3",
		TokenJacketColor:      "#145A32",
		TokenHeaderColor:      "#2E8B57",
		TokenSplashBg:         "#0A3D23",
	}),
	NameMono: New(NameMono, map[Token]string{
		TokenBody:             "#000000",
		TokenText:             "#FFFFFF",
		TokenExpTxtColor:      "#F2F2F2",
		TokenHighlight:        "#8F8F8F",
		TokenDark:             "#111111",
		TokenSecondaryText:    "#CFCFCF",
		TokenImageHighlight:   "#FFFFFF",
		TokenCompImgHighlight: "#222222",
		TokenJacketColor:      "#1A1A1A",
		TokenHeaderColor:      "#FFFFFF",
		TokenSplashBg:         "#000000",
	}),
}

// Names lists the fixed theme set in display order.
func Names() []Name {
	out := make([]Name, len(order))
	copy(out, order[:])
	return out
}

// Get returns the shared registry theme for name.
func Get(name Name) (*Theme, error) {
	t, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTheme, name)
	}
	return t, nil
}

// Parse normalizes a user-supplied theme name.
func Parse(raw string) (Name, error) {
	name := Name(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := registry[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, raw)
	}
	return name, nil
}

// Toggle returns the theme a toggle switches to: dark flips to light,
// every other theme flips to dark.
func Toggle(name Name) Name {
	if name == NameDark {
		return NameLight
	}
	return NameDark
}

// SelectOptions controls how a theme is chosen once a TERM profile exists.
type SelectOptions struct {
	Term       string
	ForceColor bool
	ForceMono  bool
}

// Select resolves the theme for a session. Terminals that cannot show
// colour get the mono theme unless colour is forced.
func Select(name Name, opts SelectOptions) (*Theme, error) {
	t, _, err := selectWithProfile(name, opts, detectTermProfile)
	return t, err
}

// DetectTermProfile maps TERM to a terminal capability profile.
func DetectTermProfile(term string) TermProfile {
	return detectTermProfile(term)
}

func selectWithProfile(name Name, opts SelectOptions, detector TermProfileDetector) (*Theme, TermProfile, error) {
	base, err := Get(name)
	if err != nil {
		return nil, TermProfile{}, err
	}

	profile := detector(strings.TrimSpace(opts.Term))
	if shouldUseMonochrome(profile, opts) {
		return registry[NameMono], profile, nil
	}
	return base, profile, nil
}

func shouldUseMonochrome(profile TermProfile, opts SelectOptions) bool {
	if opts.ForceMono {
		return true
	}
	if opts.ForceColor {
		return false
	}
	return !profile.IsTTY || profile.Colors < 8
}

func detectTermProfile(term string) TermProfile {
	norm := strings.ToLower(strings.TrimSpace(term))
	if cached, ok := termProfileCache.Load(norm); ok {
		return cached.(TermProfile)
	}

	profile := detectTermProfileUncached(norm)
	termProfileCache.Store(norm, profile)
	return profile
}

func detectTermProfileUncached(norm string) TermProfile {
	if norm == "" {
		return TermProfile{Colors: 0, TrueColor: false, IsTTY: false}
	}

	if p, ok := knownProfiles[norm]; ok {
		return p
	}

	profile := TermProfile{Colors: 16, TrueColor: false, IsTTY: true}
	if strings.Contains(norm, "truecolor") || strings.Contains(norm, "24bit") || strings.Contains(norm, "kitty") || strings.Contains(norm, "wezterm") {
		profile.TrueColor = true
		profile.Colors = 1 << 24
	}
	if strings.Contains(norm, "256") {
		profile.Colors = 256
	}
	if strings.Contains(norm, "dumb") {
		profile = TermProfile{Colors: 0, TrueColor: false, IsTTY: false}
	}
	if strings.Contains(norm, "screen") {
		profile.Colors = 8
	}

	return profile
}
