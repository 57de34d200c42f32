package vocabulary

// Mood is a member of the closed Soundraw mood vocabulary
type Mood string

const (
	MoodHappy       Mood = "Happy"
	MoodPeaceful    Mood = "Peaceful"
	MoodElegant     Mood = "Elegant"
	MoodHopeful     Mood = "Hopeful"
	MoodDreamy      Mood = "Dreamy"
	MoodRomantic    Mood = "Romantic"
	MoodSentimental Mood = "Sentimental"
	MoodSmooth      Mood = "Smooth"
	MoodMysterious  Mood = "Mysterious"
	MoodEpic        Mood = "Epic"
)

// Genre is a member of the closed Soundraw genre vocabulary
type Genre string

const (
	GenreAcoustic    Genre = "Acoustic"
	GenreLofiHipHop  Genre = "Lofi Hip Hop"
	GenreAmbient     Genre = "Ambient"
	GenrePop         Genre = "Pop"
	GenreRock        Genre = "Rock"
	GenreHouse       Genre = "House"
	GenreElectronica Genre = "Electronica"
	GenreOrchestra   Genre = "Orchestra"
	GenreJazz        Genre = "Jazz"
	GenreCinematic   Genre = "Cinematic"
)

// Theme is a member of the closed Soundraw theme vocabulary
type Theme string

const (
	ThemeBroadcasting Theme = "Broadcasting"
	ThemeCorporate    Theme = "Corporate"
	ThemeDocumentary  Theme = "Documentary"
	ThemeTechnology   Theme = "Technology"
	ThemeTravel       Theme = "Travel"
	ThemeVlogs        Theme = "Vlogs"
	ThemeTutorials    Theme = "Tutorials"
	ThemeNature       Theme = "Nature"
	ThemeDrama        Theme = "Drama"
)

// Tempo is the coarse BPM band requested from the backend
type Tempo string

const (
	TempoLow    Tempo = "low"
	TempoNormal Tempo = "normal"
	TempoHigh   Tempo = "high"
)

// EnergyProfile describes how intensity evolves over the clip
type EnergyProfile string

const (
	EnergyBuilding EnergyProfile = "building"
	EnergySteady   EnergyProfile = "steady"
	EnergyClimax   EnergyProfile = "climax"
	EnergyAmbient  EnergyProfile = "ambient"
)

// Fallbacks substituted when an axis filters down to nothing
const (
	FallbackMood  = MoodHopeful
	FallbackGenre = GenreLofiHipHop
	FallbackTheme = ThemeCorporate
)

// Moods lists the mood vocabulary in canonical order
var Moods = []Mood{
	MoodHappy, MoodPeaceful, MoodElegant, MoodHopeful, MoodDreamy,
	MoodRomantic, MoodSentimental, MoodSmooth, MoodMysterious, MoodEpic,
}

// Genres lists the genre vocabulary in canonical order
var Genres = []Genre{
	GenreAcoustic, GenreLofiHipHop, GenreAmbient, GenrePop, GenreRock,
	GenreHouse, GenreElectronica, GenreOrchestra, GenreJazz, GenreCinematic,
}

// Themes lists the theme vocabulary in canonical order
var Themes = []Theme{
	ThemeBroadcasting, ThemeCorporate, ThemeDocumentary, ThemeTechnology,
	ThemeTravel, ThemeVlogs, ThemeTutorials, ThemeNature, ThemeDrama,
}

var Tempos = []Tempo{TempoLow, TempoNormal, TempoHigh}

var EnergyProfiles = []EnergyProfile{EnergyBuilding, EnergySteady, EnergyClimax, EnergyAmbient}

var (
	moodSet   = indexOf(Moods)
	genreSet  = indexOf(Genres)
	themeSet  = indexOf(Themes)
	tempoSet  = indexOf(Tempos)
	energySet = indexOf(EnergyProfiles)
)

func indexOf[T ~string](values []T) map[string]T {
	m := make(map[string]T, len(values))
	for _, v := range values {
		m[string(v)] = v
	}
	return m
}

// ParseMood is an exact, case-sensitive lookup
func ParseMood(s string) (Mood, bool) {
	m, ok := moodSet[s]
	return m, ok
}

// ParseGenre is an exact, case-sensitive lookup
func ParseGenre(s string) (Genre, bool) {
	g, ok := genreSet[s]
	return g, ok
}

// ParseTheme is an exact, case-sensitive lookup
func ParseTheme(s string) (Theme, bool) {
	t, ok := themeSet[s]
	return t, ok
}

func ParseTempo(s string) (Tempo, bool) {
	t, ok := tempoSet[s]
	return t, ok
}

func ParseEnergyProfile(s string) (EnergyProfile, bool) {
	e, ok := energySet[s]
	return e, ok
}

// SanitizeMoods keeps the valid candidates in input order and falls back to
// FallbackMood when none survive. Duplicates are preserved.
func SanitizeMoods(candidates []string) []Mood {
	return sanitize(candidates, ParseMood, FallbackMood)
}

// SanitizeGenres is SanitizeMoods for the genre axis
func SanitizeGenres(candidates []string) []Genre {
	return sanitize(candidates, ParseGenre, FallbackGenre)
}

// SanitizeThemes is SanitizeMoods for the theme axis
func SanitizeThemes(candidates []string) []Theme {
	return sanitize(candidates, ParseTheme, FallbackTheme)
}

func sanitize[T ~string](candidates []string, parse func(string) (T, bool), fallback T) []T {
	out := make([]T, 0, len(candidates))
	for _, c := range candidates {
		if v, ok := parse(c); ok {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return []T{fallback}
	}
	return out
}

// Strings converts a typed vocabulary slice back to its wire form
func Strings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
