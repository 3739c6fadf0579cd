package naming

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Episode is the identity encoded in a television episode file name:
//
//	Title[.Year].S{season}E{episode}[E{episode}][.EpisodeTitle][.Edition]...[.sub].ext
//
// Season, Episode and AdditionalEpisode are zero-padded strings kept as
// written ("02", "0105") so that formatting a parsed name reproduces it.
// Compare them through SeasonNumber, EpisodeNumber and
// AdditionalEpisodeNumber, never as strings: "02" and "2" are the same season.
type Episode struct {
	Title             string
	Year              string
	Season            string
	Episode           string
	AdditionalEpisode string
	EpisodeTitle      string
	Attributes
}

const (
	segSeason            = "Season"
	segEpisode           = "Episode"
	segAdditionalEpisode = "AdditionalEpisode"
	segEpisodeTitle      = "EpisodeTitle"

	episodeNumberPattern = `[0-9]{2,4}`
)

var episodeGrammar = Compile("episode", episodeSegments()...)

func episodeSegments() []Segment {
	segments := []Segment{
		{Name: segTitle, Pattern: titlePattern},
		{Name: segYear, Separator: ".", Pattern: `[0-9]{4}`, Optional: true},
		{Name: segSeason, Separator: ".S", Pattern: episodeNumberPattern},
		{Name: segEpisode, Separator: "E", Pattern: episodeNumberPattern},
		{Name: segAdditionalEpisode, Separator: "E", Pattern: episodeNumberPattern, Optional: true},
		{Name: segEpisodeTitle, Separator: ".", Pattern: titlePattern, Optional: true, Lazy: true},
	}
	segments = append(segments, attributeSegments()...)
	return append(segments, Segment{Name: segExtension, Pattern: extensionPattern})
}

// EpisodeGrammar exposes the compiled episode grammar for inspection.
func EpisodeGrammar() *Grammar {
	return episodeGrammar
}

// TryParseEpisode parses an episode file name. Any leading directory is
// ignored. Episode names are case-sensitive.
func TryParseEpisode(name string) (Episode, bool) {
	fields, ok := episodeGrammar.Match(filepath.Base(name), false)
	if !ok {
		return Episode{}, false
	}
	return Episode{
		Title:             fields.Get(segTitle),
		Year:              fields.Get(segYear),
		Season:            fields.Get(segSeason),
		Episode:           fields.Get(segEpisode),
		AdditionalEpisode: fields.Get(segAdditionalEpisode),
		EpisodeTitle:      fields.Get(segEpisodeTitle),
		Attributes:        attributesFromFields(fields),
	}, true
}

// ParseEpisode is TryParseEpisode returning ErrMalformedName on failure.
func ParseEpisode(name string) (Episode, error) {
	e, ok := TryParseEpisode(name)
	if !ok {
		return Episode{}, malformed(KindEpisode, name)
	}
	return e, nil
}

// MustParseEpisode panics on a malformed name.
func MustParseEpisode(name string) Episode {
	e, err := ParseEpisode(name)
	if err != nil {
		panic(err)
	}
	return e
}

// FormatEpisode builds the canonical file name of e. Season and episode
// numbers shorter than two digits are zero-padded.
func FormatEpisode(e Episode) string {
	f := Fields{
		segTitle:             e.Title,
		segYear:              e.Year,
		segSeason:            padNumber(e.Season),
		segEpisode:           padNumber(e.Episode),
		segAdditionalEpisode: padNumber(e.AdditionalEpisode),
		segEpisodeTitle:      e.EpisodeTitle,
	}
	e.Attributes.putFields(f)
	return episodeGrammar.Format(f)
}

// String returns the canonical file name.
func (e Episode) String() string {
	return FormatEpisode(e)
}

// SeasonNumber returns the season without zero padding.
func (e Episode) SeasonNumber() int {
	return atoiOrZero(e.Season)
}

// EpisodeNumber returns the episode without zero padding.
func (e Episode) EpisodeNumber() int {
	return atoiOrZero(e.Episode)
}

// AdditionalEpisodeNumber returns the second episode of a double episode, or 0.
func (e Episode) AdditionalEpisodeNumber() int {
	return atoiOrZero(e.AdditionalEpisode)
}

// Validate reports whether e formats to a name that parses back to e.
func (e Episode) Validate() error {
	if e.Title == "" || strings.ContainsAny(e.Title, `/\`) {
		return invalidField(segTitle, e.Title)
	}
	if e.Year != "" && !episodeGrammar.Accepts(segYear, e.Year) {
		return invalidField(segYear, e.Year)
	}
	if !episodeGrammar.Accepts(segSeason, padNumber(e.Season)) {
		return invalidField(segSeason, e.Season)
	}
	if !episodeGrammar.Accepts(segEpisode, padNumber(e.Episode)) {
		return invalidField(segEpisode, e.Episode)
	}
	if e.AdditionalEpisode != "" && !episodeGrammar.Accepts(segAdditionalEpisode, padNumber(e.AdditionalEpisode)) {
		return invalidField(segAdditionalEpisode, e.AdditionalEpisode)
	}
	if err := e.Attributes.validate(episodeGrammar); err != nil {
		return err
	}
	got, ok := TryParseEpisode(FormatEpisode(e))
	if !ok || got.EpisodeTitle != e.EpisodeTitle || got.Title != e.Title {
		return invalidField(segEpisodeTitle, e.EpisodeTitle)
	}
	return nil
}

func padNumber(v string) string {
	if len(v) == 1 {
		return "0" + v
	}
	return v
}

func atoiOrZero(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
