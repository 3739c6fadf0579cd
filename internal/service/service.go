// Package service implements the naming operations shared by the CLI and
// the HTTP API: parse, classify, rank and suggest.
package service

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Nomadcxx/jellyname/internal/library"
	"github.com/Nomadcxx/jellyname/internal/naming"
	"github.com/Nomadcxx/jellyname/internal/quality"
)

// ErrEmptyInput is returned for requests without any names.
var ErrEmptyInput = errors.New("no names given")

// NamingService holds the tier keywords and ranking used for classification.
type NamingService struct {
	keywords quality.Keywords
	selector *library.Selector
}

// New validates kw and builds a service around ranking.
func New(kw quality.Keywords, ranking quality.Ranking) (*NamingService, error) {
	if err := kw.Validate(); err != nil {
		return nil, err
	}
	return &NamingService{keywords: kw, selector: library.NewSelector(ranking)}, nil
}

// Keywords returns a copy of the configured tier keywords.
func (s *NamingService) Keywords() quality.Keywords {
	return s.keywords
}

// Selector returns the shared selector.
func (s *NamingService) Selector() *library.Selector {
	return s.selector
}

// ParseResult is one decoded name.
type ParseResult struct {
	Name       string            `json:"name"`
	Kind       string            `json:"kind"`
	Canonical  string            `json:"canonical"`
	CaseFolded bool              `json:"case_folded,omitempty"`
	Movie      *naming.Movie     `json:"movie,omitempty"`
	Episode    *naming.Episode   `json:"episode,omitempty"`
	Directory  *naming.Directory `json:"directory,omitempty"`
}

// Parse decodes name with the grammar of kind. KindUnknown detects the kind;
// movie names are retried case-insensitively.
func (s *NamingService) Parse(name string, kind naming.Kind) (ParseResult, error) {
	base := filepath.Base(name)
	if kind == naming.KindUnknown {
		kind = naming.DetectKind(base)
	}
	res := ParseResult{Name: base, Kind: kind.String()}

	switch kind {
	case naming.KindEpisode:
		e, err := naming.ParseEpisode(base)
		if err != nil {
			return ParseResult{}, err
		}
		res.Episode, res.Canonical = &e, naming.FormatEpisode(e)
	case naming.KindDirectory:
		d, err := naming.ParseDirectory(base)
		if err != nil {
			return ParseResult{}, err
		}
		res.Directory, res.Canonical = &d, naming.FormatDirectory(d)
	default:
		m, ok := naming.TryParseMovie(base)
		if !ok {
			if m, ok = naming.TryParseMovieCaseInsensitive(base); !ok {
				return ParseResult{}, fmt.Errorf("%w: %q", naming.ErrMalformedName, base)
			}
			res.CaseFolded = true
		}
		res.Kind = naming.KindMovie.String()
		res.Movie, res.Canonical = &m, naming.FormatMovie(m)
	}
	return res, nil
}

// Classification is the tier and definition of one file name.
type Classification struct {
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	Encoder       string `json:"encoder"`
	Letter        string `json:"letter"`
	Definition    string `json:"definition"`
	GenuineHD     bool   `json:"genuine_hd"`
	MultipleAudio int    `json:"multiple_audio,omitempty"`
}

// Classify parses a movie or episode file name and classifies it.
func (s *NamingService) Classify(name string) (Classification, error) {
	v, kind, err := s.version(name, naming.KindUnknown)
	if err != nil {
		return Classification{}, err
	}
	return Classification{
		Name:          filepath.Base(name),
		Kind:          kind.String(),
		Encoder:       v.Encoder.String(),
		Letter:        v.Encoder.Letter(),
		Definition:    v.Definition.String(),
		GenuineHD:     v.IsGenuineHD(),
		MultipleAudio: v.MultipleAudioCount,
	}, nil
}

// version parses name as a file of kind (either file kind when unknown).
func (s *NamingService) version(name string, kind naming.Kind) (library.Version, naming.Kind, error) {
	base := filepath.Base(name)
	if kind != naming.KindMovie {
		if e, ok := naming.TryParseEpisode(base); ok {
			return library.EpisodeVersion(name, e, &s.keywords), naming.KindEpisode, nil
		}
		if kind == naming.KindEpisode {
			return library.Version{}, kind, fmt.Errorf("%w: episode %q", naming.ErrMalformedName, base)
		}
	}
	m, ok := naming.TryParseMovie(base)
	if !ok {
		m, ok = naming.TryParseMovieCaseInsensitive(base)
	}
	if !ok {
		return library.Version{}, kind, fmt.Errorf("%w: %q", naming.ErrMalformedName, base)
	}
	return library.MovieVersion(name, m, &s.keywords), naming.KindMovie, nil
}

// RankResult is the selection made for a sibling set.
type RankResult struct {
	Kind          string           `json:"kind"`
	Encoder       string           `json:"encoder"`
	Definition    string           `json:"definition"`
	MultipleAudio int              `json:"multiple_audio"`
	GroupSize     int              `json:"group_size"`
	Source        string           `json:"source"`
	Label         string           `json:"label"`
	Versions      []Classification `json:"versions"`
}

// Rank selects the representative version of the named siblings. The kind
// of the set is taken from the first name when kind is KindUnknown; every
// name must then be of that kind.
func (s *NamingService) Rank(kind naming.Kind, names []string) (RankResult, library.Selection, error) {
	if len(names) == 0 {
		return RankResult{}, library.Selection{}, ErrEmptyInput
	}
	if kind == naming.KindUnknown {
		if _, ok := naming.TryParseEpisode(filepath.Base(names[0])); ok {
			kind = naming.KindEpisode
		} else {
			kind = naming.KindMovie
		}
	}
	if kind != naming.KindMovie && kind != naming.KindEpisode {
		return RankResult{}, library.Selection{}, fmt.Errorf("cannot rank %s names", kind)
	}

	versions := make([]library.Version, 0, len(names))
	res := RankResult{Kind: kind.String()}
	for _, name := range names {
		v, _, err := s.version(name, kind)
		if err != nil {
			return RankResult{}, library.Selection{}, err
		}
		versions = append(versions, v)
		res.Versions = append(res.Versions, Classification{
			Name:          filepath.Base(name),
			Kind:          kind.String(),
			Encoder:       v.Encoder.String(),
			Letter:        v.Encoder.Letter(),
			Definition:    v.Definition.String(),
			GenuineHD:     v.IsGenuineHD(),
			MultipleAudio: v.MultipleAudioCount,
		})
	}

	var sel library.Selection
	if kind == naming.KindEpisode {
		sel = s.selector.SelectEpisode(versions)
	} else {
		sel = s.selector.SelectMovie(versions)
	}
	res.Encoder = sel.Encoder.String()
	res.Definition = sel.Definition.String()
	res.MultipleAudio = sel.MultipleAudioCount
	res.GroupSize = sel.GroupSize
	res.Source = sel.Source()
	res.Label = sel.Label()
	return res, sel, nil
}

// SuggestResult is a canonical name proposed for a release name.
type SuggestResult struct {
	Release   string `json:"release"`
	Kind      string `json:"kind"`
	Suggested string `json:"suggested"`
}

// Suggest converts a scene release name.
func (s *NamingService) Suggest(release string) (SuggestResult, error) {
	sg, err := naming.FromRelease(release)
	if err != nil {
		return SuggestResult{}, err
	}
	return SuggestResult{Release: filepath.Base(release), Kind: sg.Kind.String(), Suggested: sg.Name()}, nil
}
