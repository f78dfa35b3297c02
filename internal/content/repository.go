package content

import (
	"sort"
	"strings"
)

// Name is one entry of the name spotlight rotation.
type Name struct {
	Name    string `json:"name"`
	Meaning string `json:"meaning"`
}

// MoodAction is a quick-reply button on mood reminders.
type MoodAction struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Pack is the copy for one locale. Titles are keyed "kind/level/style",
// bodies "kind/level".
type Pack struct {
	Titles      map[string][]string
	Bodies      map[string][]string
	Labels      map[string]string
	Tips        []string
	Names       []Name
	MoodActions []MoodAction
}

// Repository holds phrase pools and tone weights. It has no mutable state
// after construction and is safe for concurrent use.
type Repository struct {
	locale   string
	fallback string
	styles   []Weighted
	packs    map[string]Pack
}

// DefaultStyles weights the tone of titles.
var DefaultStyles = []Weighted{
	{ID: "warm", Weight: 5},
	{ID: "cheer", Weight: 3},
	{ID: "brief", Weight: 2},
}

// New builds a repository. Lookups that miss in locale fall back to "en".
func New(locale string, styles []Weighted, packs map[string]Pack) *Repository {
	if _, ok := packs[locale]; !ok {
		locale = "en"
	}
	return &Repository{
		locale:   locale,
		fallback: "en",
		styles:   styles,
		packs:    packs,
	}
}

// Default returns the built-in English and Korean copy.
func Default(locale string) *Repository {
	return New(locale, DefaultStyles, map[string]Pack{
		"en": englishPack(),
		"ko": koreanPack(),
	})
}

// Locale reports the active locale.
func (r *Repository) Locale() string {
	return r.locale
}

// Locales lists the available locales in sorted order.
func (r *Repository) Locales() []string {
	out := make([]string, 0, len(r.packs))
	for k := range r.packs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Style picks a tone for seed.
func (r *Repository) Style(seed string) string {
	style, ok := PickWeighted(r.styles, seed+"|style")
	if !ok {
		return ""
	}
	return style
}

// Title picks a title for kind/level in the given style, widening to the
// style-less pool and then the fallback locale when a pool is empty.
func (r *Repository) Title(kind, level, style, seed string, vars map[string]string) string {
	keys := []string{kind + "/" + level + "/" + style, kind + "/" + level}
	pool := r.lookup(func(p Pack) map[string][]string { return p.Titles }, keys)
	s, _ := Pick(pool, seed+"|title")
	return Render(s, vars)
}

// Body picks a body template for kind/level and fills in vars.
func (r *Repository) Body(kind, level, seed string, vars map[string]string) string {
	pool := r.lookup(func(p Pack) map[string][]string { return p.Bodies }, []string{kind + "/" + level})
	s, _ := Pick(pool, seed+"|body")
	return Render(s, vars)
}

// Label returns a short localized string, or key itself when unknown.
func (r *Repository) Label(key string, vars map[string]string) string {
	for _, loc := range []string{r.locale, r.fallback} {
		if s, ok := r.packs[loc].Labels[key]; ok {
			return Render(s, vars)
		}
	}
	return key
}

// Tip picks the daily tip for seed.
func (r *Repository) Tip(seed string) (string, bool) {
	tips := r.packs[r.locale].Tips
	if len(tips) == 0 {
		tips = r.packs[r.fallback].Tips
	}
	return Pick(tips, seed+"|tip")
}

// Name picks the spotlight name for seed.
func (r *Repository) Name(seed string) (Name, bool) {
	names := r.packs[r.locale].Names
	if len(names) == 0 {
		names = r.packs[r.fallback].Names
	}
	return Pick(names, seed+"|name")
}

// MoodActions returns the quick mood replies for the active locale.
func (r *Repository) MoodActions() []MoodAction {
	if a := r.packs[r.locale].MoodActions; len(a) > 0 {
		return a
	}
	return r.packs[r.fallback].MoodActions
}

func (r *Repository) lookup(field func(Pack) map[string][]string, keys []string) []string {
	for _, loc := range []string{r.locale, r.fallback} {
		pack, ok := r.packs[loc]
		if !ok {
			continue
		}
		for _, k := range keys {
			if pool := field(pack)[k]; len(pool) > 0 {
				return pool
			}
		}
	}
	return nil
}

// Render replaces {key} placeholders with vars. Unknown placeholders are
// left as-is.
func Render(tmpl string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
