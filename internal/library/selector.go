package library

import (
	"fmt"
	"strconv"

	"github.com/Nomadcxx/jellyname/internal/naming"
	"github.com/Nomadcxx/jellyname/internal/quality"
)

// Version is one sibling file of a title, reduced to what selection needs.
type Version struct {
	Path               string
	Encoder            quality.EncoderType
	Definition         quality.DefinitionType
	MultipleAudioCount int
}

// IsGenuineHD reports whether the version is HD by both its definition and
// its encoder tier.
func (v Version) IsGenuineHD() bool {
	return v.Definition.IsHD() && v.Encoder.IsGenuineHD()
}

// MovieVersion classifies a parsed movie file.
func MovieVersion(path string, m naming.Movie, kw *quality.Keywords) Version {
	return newVersion(path, m.Attributes, kw)
}

// EpisodeVersion classifies a parsed episode file.
func EpisodeVersion(path string, e naming.Episode, kw *quality.Keywords) Version {
	return newVersion(path, e.Attributes, kw)
}

func newVersion(path string, a naming.Attributes, kw *quality.Keywords) Version {
	return Version{
		Path:               path,
		Encoder:            quality.Classify(a, kw),
		Definition:         quality.ClassifyFromName(a),
		MultipleAudioCount: a.MultipleAudioCount,
	}
}

// Selection is the representative tier of a sibling set.
type Selection struct {
	Encoder            quality.EncoderType
	Definition         quality.DefinitionType
	MultipleAudioCount int
	GroupSize          int // siblings sharing the selected tier
}

// Source is the compact label stored in directory names: the tier letter
// followed by the audio count.
func (s Selection) Source() string {
	return s.Encoder.Letter() + strconv.Itoa(s.MultipleAudioCount)
}

// ApplyTo writes the resolution and source label into d.
func (s Selection) ApplyTo(d *naming.Directory) {
	d.Resolution = s.Definition.Token()
	d.Source = s.Source()
}

// Label is the bracketed directory block, "[1080x2]".
func (s Selection) Label() string {
	return "[" + s.Definition.Token() + s.Source() + "]"
}

func (s Selection) String() string {
	return fmt.Sprintf("%s %s %s", s.Encoder, s.Definition, s.Label())
}

// Selector picks the representative version of a sibling set. It holds no
// mutable state and may be shared between goroutines.
type Selector struct {
	ranking quality.Ranking
}

// NewSelector returns a selector ordering tiers by ranking.
func NewSelector(ranking quality.Ranking) *Selector {
	return &Selector{ranking: ranking}
}

// Ranking returns the tier order used by the selector.
func (s *Selector) Ranking() quality.Ranking {
	return s.ranking
}

// SelectMovie applies the movie policy. When any sibling is genuinely HD the
// highest tier among those wins; otherwise the highest tier overall. The
// resolution is the best definition reached by a genuine tier, else 480p.
// It panics with quality.ErrInvalidArgument on an empty set.
func (s *Selector) SelectMovie(versions []Version) Selection {
	mustHaveVersions(versions)

	var genuine, all []quality.EncoderType
	for _, v := range versions {
		all = append(all, v.Encoder)
		if v.IsGenuineHD() {
			genuine = append(genuine, v.Encoder)
		}
	}
	candidates := all
	if len(genuine) > 0 {
		candidates = genuine
	}

	sel := Selection{Encoder: s.ranking.Max(candidates...), Definition: quality.P480}
	for _, v := range versions {
		if v.Encoder.IsGenuineHD() && v.Definition > sel.Definition {
			sel.Definition = v.Definition
		}
		if v.Encoder != sel.Encoder {
			continue
		}
		sel.GroupSize++
		if v.MultipleAudioCount > sel.MultipleAudioCount {
			sel.MultipleAudioCount = v.MultipleAudioCount
		}
	}
	return sel
}

// SelectEpisode applies the episode policy. The tier shared by most siblings
// wins, ties going to the higher rank. The group's best definition is kept
// only when more than half of the group is HD. The audio count is the most
// common one in the group, ties going to the larger count.
// It panics with quality.ErrInvalidArgument on an empty set.
func (s *Selector) SelectEpisode(versions []Version) Selection {
	mustHaveVersions(versions)

	groups := make(map[quality.EncoderType][]Version)
	for _, v := range versions {
		groups[v.Encoder] = append(groups[v.Encoder], v)
	}

	var best quality.EncoderType
	bestSize := 0
	for _, e := range s.ranking.Order() {
		// ascending rank, so >= lets a higher tier take a tie
		if n := len(groups[e]); n > 0 && n >= bestSize {
			best, bestSize = e, n
		}
	}
	group := groups[best]

	sel := Selection{Encoder: best, Definition: quality.P480, GroupSize: len(group)}
	hd := 0
	maxDefinition := quality.P480
	audio := make(map[int]int)
	for _, v := range group {
		if v.Definition.IsHD() {
			hd++
		}
		if v.Definition > maxDefinition {
			maxDefinition = v.Definition
		}
		audio[v.MultipleAudioCount]++
	}
	if hd*2 > len(group) {
		sel.Definition = maxDefinition
	}
	for count, n := range audio {
		if n > audio[sel.MultipleAudioCount] || (n == audio[sel.MultipleAudioCount] && count > sel.MultipleAudioCount) {
			sel.MultipleAudioCount = count
		}
	}
	return sel
}

func mustHaveVersions(versions []Version) {
	if len(versions) == 0 {
		panic(fmt.Errorf("%w: empty sibling set", quality.ErrInvalidArgument))
	}
}
