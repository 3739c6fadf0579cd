package naming

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/moistari/rls"
)

// Suggestion is the canonical identity proposed for a release name.
type Suggestion struct {
	Kind    Kind
	Movie   Movie
	Episode Episode
}

// Name returns the canonical file name of the suggestion.
func (s Suggestion) Name() string {
	if s.Kind == KindEpisode {
		return FormatEpisode(s.Episode)
	}
	return FormatMovie(s.Movie)
}

// FromRelease converts a scene-style release name into a canonical identity.
// Whether it becomes a movie or an episode follows what rls detected; the
// extension is taken from name when it is a video container.
func FromRelease(name string) (Suggestion, error) {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if isVideoExtension(ext) {
		base = strings.TrimSuffix(base, ext)
	} else {
		ext = ".mkv"
	}

	r := rls.ParseString(base)
	if strings.TrimSpace(r.Title) == "" {
		return Suggestion{}, malformed(KindUnknown, name)
	}

	if r.Type == rls.Episode || r.Type == rls.Series || r.Episode > 0 {
		e := EpisodeFromRelease(r, ext)
		if e.Validate() != nil {
			e.EpisodeTitle = ""
		}
		if err := e.Validate(); err != nil {
			return Suggestion{}, fmt.Errorf("suggest %q: %w", name, err)
		}
		return Suggestion{Kind: KindEpisode, Episode: e}, nil
	}

	m := MovieFromRelease(r, ext)
	if err := m.Validate(); err != nil {
		return Suggestion{}, fmt.Errorf("suggest %q: %w", name, err)
	}
	return Suggestion{Kind: KindMovie, Movie: m}, nil
}

// MovieFromRelease maps the fields rls recognised onto a movie identity.
// Tokens outside the closed vocabularies are dropped.
func MovieFromRelease(r rls.Release, ext string) Movie {
	m := Movie{
		Title:      dotted(r.Title),
		Attributes: attributesFromRelease(r, ext, movieGrammar),
	}
	if r.Year > 0 {
		m.Year = strconv.Itoa(r.Year)
	}
	return m
}

// EpisodeFromRelease maps the fields rls recognised onto an episode identity.
func EpisodeFromRelease(r rls.Release, ext string) Episode {
	e := Episode{
		Title:        dotted(r.Title),
		Season:       fmt.Sprintf("%02d", r.Series),
		Episode:      fmt.Sprintf("%02d", r.Episode),
		EpisodeTitle: dotted(r.Subtitle),
		Attributes:   attributesFromRelease(r, ext, episodeGrammar),
	}
	if r.Year > 0 {
		e.Year = strconv.Itoa(r.Year)
	}
	return e
}

func attributesFromRelease(r rls.Release, ext string, g *Grammar) Attributes {
	a := Attributes{
		Definition: vocabularyMember(Definitions, r.Resolution),
		Origin:     vocabularyMember(Origins, strings.TrimPrefix(r.Source, "UHD.")),
		Extension:  strings.ToLower(ext),
	}
	for _, c := range r.Codec {
		if v := vocabularyMember(VideoCodecs, strings.ReplaceAll(c, ".", "")); v != "" {
			a.VideoCodec = v
			break
		}
	}
	for _, c := range r.Audio {
		if v := vocabularyMember(AudioCodecs, c); v != "" {
			a.AudioCodec = v
			if r.Channels != "" {
				a.AudioCodec += "." + r.Channels
			}
			break
		}
	}

	var editions []string
	for _, word := range append(append([]string(nil), r.Edition...), r.Cut...) {
		if v := vocabularyMember(Editions, word); v != "" {
			editions = append(editions, v)
		}
	}
	a.Edition = strings.Join(editions, ".")

	switch group := strings.TrimSpace(r.Group); {
	case group == "":
	case g.Accepts(segVersion, group):
		a.Version = group
	case g.Accepts(segVersion, "["+group+"]"):
		a.Version = "[" + group + "]"
	}
	if !g.Accepts(segAudioCodec, a.AudioCodec) {
		a.AudioCodec = ""
	}
	return a
}

// vocabularyMember returns the canonical spelling of value, or "" when it is
// not a member of the vocabulary.
func vocabularyMember(vocabulary []string, value string) string {
	for _, w := range vocabulary {
		if strings.EqualFold(w, value) {
			return w
		}
	}
	return ""
}

func dotted(title string) string {
	title = strings.NewReplacer("/", " ", `\`, " ").Replace(title)
	return strings.Join(strings.Fields(title), ".")
}

var videoExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".m4v": true, ".ts": true,
	".wmv": true, ".mov": true, ".webm": true, ".m2ts": true, ".mpg": true,
}

func isVideoExtension(ext string) bool {
	return videoExtensions[strings.ToLower(ext)]
}

// IsVideoFile reports whether name carries a known video container extension.
func IsVideoFile(name string) bool {
	return isVideoExtension(filepath.Ext(name))
}
