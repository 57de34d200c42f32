package embedded

import (
	_ "embed"
)

// Embed all prompt data files
//
//go:embed data/prompts/mapping_system_prompt.tmpl
var MappingSystemPromptTmpl []byte

//go:embed data/prompts/mapping_user_prompt.tmpl
var MappingUserPromptTmpl []byte

// Integration snippet templates, one per target platform
//
//go:embed data/integration/web.html.tmpl
var WebIntegrationTmpl []byte

//go:embed data/integration/ios.swift.tmpl
var IOSIntegrationTmpl []byte

//go:embed data/integration/android.java.tmpl
var AndroidIntegrationTmpl []byte
