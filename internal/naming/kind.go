package naming

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Kind identifies which of the three grammars a name belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindMovie
	KindEpisode
	KindDirectory
)

// String returns a human-readable representation of the kind
func (k Kind) String() string {
	switch k {
	case KindMovie:
		return "movie"
	case KindEpisode:
		return "episode"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String. Unrecognised input yields KindUnknown.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie":
		return KindMovie
	case "episode", "tv":
		return KindEpisode
	case "directory", "dir":
		return KindDirectory
	default:
		return KindUnknown
	}
}

// DetectKind reports which grammar accepts name. File grammars are tried
// first: a directory name has no extension, but "Title.2019.mkv" would
// otherwise read as a directory with a translated title.
func DetectKind(name string) Kind {
	if _, ok := TryParseEpisode(name); ok {
		return KindEpisode
	}
	if _, ok := TryParseMovie(name); ok {
		return KindMovie
	}
	if _, ok := TryParseDirectory(name); ok {
		return KindDirectory
	}
	return KindUnknown
}

var (
	episodeSERegex = regexp.MustCompile(`[Ss](\d{1,4})[Ee](\d{1,4})`)
	episodeXRegex  = regexp.MustCompile(`\b(\d{1,2})x(\d{1,3})\b`)
	yearRegex      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// GuessKind classifies a name that no grammar accepts, typically an
// unorganized download. It only looks for episode markers and a year.
func GuessKind(name string) Kind {
	if k := DetectKind(name); k != KindUnknown {
		return k
	}
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if episodeSERegex.MatchString(base) || episodeXRegex.MatchString(base) {
		return KindEpisode
	}
	if yearRegex.MatchString(base) {
		return KindMovie
	}
	return KindUnknown
}
