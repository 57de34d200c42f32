package prompt

import (
	"strings"

	"github.com/yksanjo/soundraw-podcast-music/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetMappingSystemPrompt loads the parameter-mapping system prompt template
func (l *Loader) GetMappingSystemPrompt() (string, error) {
	return strings.TrimSpace(string(embedded.MappingSystemPromptTmpl)), nil
}

// GetMappingUserPrompt loads the parameter-mapping user message template
func (l *Loader) GetMappingUserPrompt() (string, error) {
	return strings.TrimSpace(string(embedded.MappingUserPromptTmpl)), nil
}
