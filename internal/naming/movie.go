package naming

import (
	"path/filepath"
	"strings"
)

// Movie is the identity encoded in a single-feature file name:
//
//	Title.Year[.3D][.Edition][.Definition][.Origin][.VideoCodec][.AudioCodec][-Version][.NAudio][.watermark][.Encoder][.sub][.cdN].ext
type Movie struct {
	Title  string
	Year   string // empty when unknown, written as "----"
	ThreeD bool
	Attributes
	Part string // ".cd1", ".cd2", ...
}

var movieGrammar = Compile("movie", movieSegments()...)

func movieSegments() []Segment {
	segments := []Segment{
		{Name: segTitle, Pattern: titlePattern},
		{Name: segYear, Separator: ".", Pattern: `[0-9]{4}|` + `-{4}`},
		{Name: segThreeD, Separator: ".", Vocabulary: []string{ThreeDToken}, Optional: true},
	}
	segments = append(segments, attributeSegments()...)
	return append(segments,
		Segment{Name: segPart, Pattern: `\.cd[1-9][0-9]?`, Optional: true, Canonical: strings.ToLower},
		Segment{Name: segExtension, Pattern: extensionPattern},
	)
}

// MovieGrammar exposes the compiled movie grammar for inspection.
func MovieGrammar() *Grammar {
	return movieGrammar
}

// TryParseMovie parses a movie file name. Any leading directory is ignored.
func TryParseMovie(name string) (Movie, bool) {
	return tryParseMovie(name, false)
}

// TryParseMovieCaseInsensitive parses a movie file name ignoring case and
// rewrites vocabulary tokens to their canonical spelling.
func TryParseMovieCaseInsensitive(name string) (Movie, bool) {
	return tryParseMovie(name, true)
}

func tryParseMovie(name string, fold bool) (Movie, bool) {
	fields, ok := movieGrammar.Match(filepath.Base(name), fold)
	if !ok {
		return Movie{}, false
	}
	m := Movie{
		Title:      fields.Get(segTitle),
		Year:       fields.Get(segYear),
		ThreeD:     fields.Get(segThreeD) != "",
		Attributes: attributesFromFields(fields),
		Part:       fields.Get(segPart),
	}
	if m.Year == UnknownYear {
		m.Year = ""
	}
	return m, true
}

// ParseMovie is TryParseMovie returning ErrMalformedName on failure.
func ParseMovie(name string) (Movie, error) {
	m, ok := TryParseMovie(name)
	if !ok {
		return Movie{}, malformed(KindMovie, name)
	}
	return m, nil
}

// MustParseMovie is for names already known to be canonical. It panics on a
// malformed name.
func MustParseMovie(name string) Movie {
	m, err := ParseMovie(name)
	if err != nil {
		panic(err)
	}
	return m
}

// FormatMovie builds the canonical file name of m.
func FormatMovie(m Movie) string {
	return movieGrammar.Format(m.fields())
}

// String returns the canonical file name.
func (m Movie) String() string {
	return FormatMovie(m)
}

// Validate reports whether every field of m lies in its segment's token set,
// which is the precondition for a lossless round trip.
func (m Movie) Validate() error {
	if m.Title == "" {
		return invalidField(segTitle, m.Title)
	}
	if strings.ContainsAny(m.Title, `/\`) {
		return invalidField(segTitle, m.Title)
	}
	if m.Year != "" && !movieGrammar.Accepts(segYear, m.Year) {
		return invalidField(segYear, m.Year)
	}
	if m.Part != "" && !movieGrammar.Accepts(segPart, m.Part) {
		return invalidField(segPart, m.Part)
	}
	if err := m.Attributes.validate(movieGrammar); err != nil {
		return err
	}
	if got, ok := TryParseMovie(FormatMovie(m)); !ok || got != m {
		return invalidField(segTitle, m.Title)
	}
	return nil
}

func (m Movie) fields() Fields {
	f := Fields{
		segTitle: m.Title,
		segYear:  m.Year,
		segPart:  m.Part,
	}
	if f[segYear] == "" {
		f[segYear] = UnknownYear
	}
	if m.ThreeD {
		f[segThreeD] = ThreeDToken
	}
	m.Attributes.putFields(f)
	return f
}
