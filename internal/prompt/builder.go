package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/yksanjo/soundraw-podcast-music/internal/vocabulary"
)

// ClipPolicy is advisory guidance for the model on one clip kind
type ClipPolicy struct {
	Kind     string
	Guidance string
}

// DefaultClipPolicies biases the mapping per podcast clip kind
var DefaultClipPolicies = []ClipPolicy{
	{Kind: "intro", Guidance: "Short (5-15s), energetic, professional. Lean on Hopeful, Epic with the Corporate theme."},
	{Kind: "outro", Guidance: "Longer (20-60s), fading, memorable. Lean on Smooth, Sentimental with Broadcasting."},
	{Kind: "background", Guidance: "Loops well and stays out of the way of speech. Lean on Ambient, Lofi Hip Hop with steady energy."},
	{Kind: "jingle", Guidance: "Very short (3-10s) with a memorable hook. Lean on Epic, Happy with high tempo."},
}

// MappingInput is the per-request data of the user message
type MappingInput struct {
	Description string
	Kind        string
	Mood        string
}

// Builder renders the parameter-mapping prompts
type Builder struct {
	loader   *Loader
	policies []ClipPolicy
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder() *Builder {
	return &Builder{
		loader:   NewPromptLoader(),
		policies: DefaultClipPolicies,
	}
}

var funcs = template.FuncMap{
	"join": func(values []string, sep string) string { return strings.Join(values, sep) },
}

// BuildSystemPrompt renders the system instruction with the closed vocabularies embedded verbatim
func (b *Builder) BuildSystemPrompt() (string, error) {
	raw, err := b.loader.GetMappingSystemPrompt()
	if err != nil {
		return "", err
	}

	data := struct {
		Moods          []string
		Genres         []string
		Themes         []string
		EnergyProfiles []string
		ClipPolicies   []ClipPolicy
	}{
		Moods:          vocabulary.Strings(vocabulary.Moods),
		Genres:         vocabulary.Strings(vocabulary.Genres),
		Themes:         vocabulary.Strings(vocabulary.Themes),
		EnergyProfiles: vocabulary.Strings(vocabulary.EnergyProfiles),
		ClipPolicies:   b.policies,
	}
	return render("mapping_system", raw, data)
}

// BuildUserPrompt renders the user message for one description
func (b *Builder) BuildUserPrompt(input MappingInput) (string, error) {
	raw, err := b.loader.GetMappingUserPrompt()
	if err != nil {
		return "", err
	}
	return render("mapping_user", raw, input)
}

func render(name, raw string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(funcs).Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
