package integration

import (
	"bytes"
	"path"
	"strings"
	"text/template"

	"github.com/yksanjo/soundraw-podcast-music/internal/logger"
	"github.com/yksanjo/soundraw-podcast-music/internal/models"
	"github.com/yksanjo/soundraw-podcast-music/pkg/embedded"
)

var templates = map[models.Platform]*template.Template{
	models.PlatformWeb:     template.Must(template.New("web").Parse(string(embedded.WebIntegrationTmpl))),
	models.PlatformIOS:     template.Must(template.New("ios").Parse(string(embedded.IOSIntegrationTmpl))),
	models.PlatformAndroid: template.Must(template.New("android").Parse(string(embedded.AndroidIntegrationTmpl))),
}

type snippetData struct {
	Kind     models.ClipKind
	AudioURL string
	MIMEType string
	Volume   string
	Loop     bool
}

// Snippet renders playback code with fade in/out for platform.
// The second return value is false for an unknown platform.
func Snippet(platform models.Platform, audioURL string, kind models.ClipKind) (string, bool) {
	tmpl, ok := templates[platform]
	if !ok {
		return "", false
	}
	if kind == "" {
		kind = models.DefaultClipKind
	}

	data := snippetData{
		Kind:     kind,
		AudioURL: audioURL,
		MIMEType: mimeType(audioURL),
		Volume:   "0.8",
		// background beds sit under speech and loop
		Loop: kind == models.ClipBackground,
	}
	if data.Loop {
		data.Volume = "0.3"
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logger.Error("Failed to render integration snippet", err, logger.Fields{
			"platform": string(platform),
		})
		return "", false
	}
	return buf.String(), true
}

func mimeType(audioURL string) string {
	p := audioURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".m4a":
		return "audio/mp4"
	case ".wav":
		return "audio/wav"
	default:
		return "audio/mpeg"
	}
}
