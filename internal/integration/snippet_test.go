package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yksanjo/soundraw-podcast-music/internal/models"
)

func TestSnippet(t *testing.T) {
	const url = "https://cdn.soundraw.io/abc.m4a"

	tests := []struct {
		name     string
		platform models.Platform
		kind     models.ClipKind
		contains []string
		excludes []string
	}{
		{
			name:     "web intro",
			platform: models.PlatformWeb,
			kind:     models.ClipIntro,
			contains: []string{`<source src="` + url + `" type="audio/mp4">`, "podcast-intro", "TARGET_VOLUME = 0.8", "fadeOut"},
			excludes: []string{" loop>"},
		},
		{
			name:     "web background loops",
			platform: models.PlatformWeb,
			kind:     models.ClipBackground,
			contains: []string{" loop>", "TARGET_VOLUME = 0.3"},
		},
		{
			name:     "ios",
			platform: models.PlatformIOS,
			kind:     models.ClipOutro,
			contains: []string{"import AVFoundation", `URL(string: "` + url + `")`, "targetVolume: Float = 0.8"},
			excludes: []string{"AVPlayerItemDidPlayToEndTime"},
		},
		{
			name:     "android default kind is background",
			platform: models.PlatformAndroid,
			contains: []string{"Podcast background music", "setLooping(true)", "TARGET_VOLUME = 0.3f", url},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := Snippet(tt.platform, url, tt.kind)
			require.True(t, ok)
			for _, s := range tt.contains {
				assert.Contains(t, code, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, code, s)
			}
		})
	}
}

func TestSnippetUnknownPlatform(t *testing.T) {
	code, ok := Snippet("windows", "https://x/a.mp3", models.ClipIntro)
	assert.False(t, ok)
	assert.Empty(t, code)
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "audio/mp4", mimeType("https://x/a.m4a?sig=1"))
	assert.Equal(t, "audio/wav", mimeType("https://x/a.WAV"))
	assert.Equal(t, "audio/mpeg", mimeType("https://x/a.mp3"))
	assert.Equal(t, "audio/mpeg", mimeType(""))
}
