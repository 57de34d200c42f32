package soundraw

import (
	"math"
	"strconv"
	"strings"

	apperrors "github.com/yksanjo/soundraw-podcast-music/internal/errors"
	"github.com/yksanjo/soundraw-podcast-music/internal/models"
)

// Extracted holds the audio-specific fields of a finished composition
type Extracted struct {
	ShareLink       string
	AudioURL        string
	RequestID       string
	DurationSeconds float64
	BPM             int
	Format          models.AudioFormat
	Timestamps      []models.EnergySegment
}

// ResolveAudioURL picks the URL for format. wav and mp3 return their own URL
// even when empty; anything else takes the first of m4a, mp3, wav that is set.
func ResolveAudioURL(result *models.JobResult, format models.AudioFormat) string {
	if result == nil {
		return ""
	}
	switch format {
	case models.FormatWAV:
		return result.WAVURL
	case models.FormatMP3:
		return result.MP3URL
	default:
		for _, u := range []string{result.M4AURL, result.MP3URL, result.WAVURL} {
			if u != "" {
				return u
			}
		}
		return ""
	}
}

// Extract resolves the audio URL and BPM of a finished job
func Extract(job *models.CompositionJob, format models.AudioFormat) (*Extracted, error) {
	if job == nil {
		return nil, apperrors.NewNoResultError("")
	}
	if job.Result == nil {
		return nil, apperrors.NewNoResultError(job.RequestID)
	}
	if format == "" {
		format = models.DefaultFormat
	}

	bpm, err := ParseBPM(string(job.Result.BPM))
	if err != nil {
		return nil, err
	}

	return &Extracted{
		ShareLink:       job.Result.ShareLink,
		AudioURL:        ResolveAudioURL(job.Result, format),
		RequestID:       job.RequestID,
		DurationSeconds: job.Result.Length,
		BPM:             bpm,
		Format:          format,
		Timestamps:      job.Result.Timestamps,
	}, nil
}

// ParseBPM reads the backend's BPM string. Decimals are truncated toward zero.
func ParseBPM(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.NewMalformedResultError("bpm", raw, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, apperrors.NewMalformedResultError("bpm", raw, nil)
	}
	return int(f), nil
}

// PrimaryFormat is the first requested format, or the default
func PrimaryFormat(formats []models.AudioFormat) models.AudioFormat {
	if len(formats) == 0 || formats[0] == "" {
		return models.DefaultFormat
	}
	return formats[0]
}
