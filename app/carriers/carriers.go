// Package carriers declares the supported shipping carriers and the ordered
// question lists their proof-of-shipment flows walk through.
package carriers

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Question is a single prompt in a carrier flow. Field names double as
// template variables.
type Question struct {
	Field  string
	Prompt string
}

// Carrier bundles everything the conversation needs for one shipping service.
type Carrier struct {
	Name         string
	ButtonLabel  string
	Intro        string
	Illustration string
	Questions    []Question
}

// Fields returns the field names in prompt order.
func (c Carrier) Fields() []string {
	out := make([]string, len(c.Questions))
	for i, q := range c.Questions {
		out[i] = q.Field
	}
	return out
}

// Registry resolves carriers by name and loads their templates.
type Registry struct {
	carriers    map[string]Carrier
	templateDir string
}

// NewRegistry builds the registry with the built-in carrier set.
// templateDir points at the directory holding template_<carrier>.html files.
func NewRegistry(templateDir string) *Registry {
	r := &Registry{
		carriers:    make(map[string]Carrier),
		templateDir: templateDir,
	}
	for _, c := range builtin() {
		r.carriers[c.Name] = c
	}
	return r
}

// Get resolves a carrier by name.
func (r *Registry) Get(name string) (Carrier, bool) {
	c, ok := r.carriers[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Names returns the carrier names in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.carriers))
	for name := range r.carriers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Buttons returns the carriers in menu order for the start keyboard.
func (r *Registry) Buttons() []Carrier {
	out := make([]Carrier, 0, len(r.carriers))
	for _, name := range []string{"postnl", "dhl"} {
		if c, ok := r.carriers[name]; ok {
			out = append(out, c)
		}
	}
	return out
}

// TemplatePath returns where the carrier's HTML template is expected on disk.
func (r *Registry) TemplatePath(name string) string {
	return filepath.Join(r.templateDir, fmt.Sprintf("template_%s.html", name))
}

func builtin() []Carrier {
	return []Carrier{
		{
			Name:         "postnl",
			ButtonLabel:  "📦 POSTNL",
			Intro:        "Je hebt POSTNL gekozen. 🧾",
			Illustration: "pnl.png",
			Questions: []Question{
				{Field: "bedrijf", Prompt: "🏢 Wat is de naam van het bedrijf waar het pakket naartoe wordt verzonden? (Bijv. Amazon)"},
				{Field: "straat", Prompt: "📍 Wat is de straat van het bedrijf? (Bijv. Herengracht 1)"},
				{Field: "postcode", Prompt: "📮 Wat is de postcode van de ontvangen? (Bijv. 1022VX)"},
				{Field: "stad", Prompt: "🏙️ Welke stad woont de ontvanger? (Bijv. Amsterdam)"},
				{Field: "land", Prompt: "🌍 Wat is het land van bestemming? (Bijv. Nederland)"},
				{Field: "track", Prompt: "🔍 Wat is je Track & Trace code? (Bijv. PNL23834HSDHH)"},
			},
		},
		{
			Name:         "dhl",
			ButtonLabel:  "🚚 DHL",
			Intro:        "Je hebt DHL gekozen. 📛",
			Illustration: "dhl.png",
			Questions: []Question{
				{Field: "naam", Prompt: "👤 Wat is je voor- en achternaam? (Bijv. Jan Jansen)"},
				{Field: "track", Prompt: "🔍 Wat is je Track & Trace code? (Bijv. JVG36283V3Y73G)"},
				{Field: "bedrijf", Prompt: "🏢 Wat is de naam van het bedrijf waar het pakket naartoe wordt verzonden? (Bijv. Amazon)"},
				{Field: "datum", Prompt: "📅 Wat is de datum van inlevering? (Bijv. Maandag 24 maart)"},
				{Field: "tijd", Prompt: "⏰ Wat is de tijd van inlevering? (Bijv. 14.22)"},
				{Field: "pakketpunt", Prompt: "🏪 Wat is de naam en het adres van het pakketpunt? (Bijv. Bruna, Breestraat 22)"},
				{Field: "postcode_stad", Prompt: "🗺️ Wat is de postcode en stad? (Bijv. 1044BX Amsterdam)"},
			},
		},
	}
}
