package quality

import (
	"fmt"
	"strings"
)

// defaultRanks is the selection order of the tiers, higher wins.
var defaultRanks = [numEncoderTypes]int{
	HD:                  0,
	HDBluRay:            1,
	Korean:              2,
	KoreanPremium:       3,
	Contrast:            4,
	ContrastBluRay:      5,
	HandbrakeH264:       6,
	HandbrakeH264BluRay: 7,
	NvidiaX265:          8,
	NvidiaX265BluRay:    9,
	FfmpegX265:          10,
	FfmpegX265BluRay:    11,
	PreferredH264:       12,
	PreferredH264BluRay: 13,
	PreferredX265:       14,
	PreferredX265BluRay: 15,
	TopH264:             16,
	TopH264BluRay:       17,
	TopX265:             18,
	TopX265BluRay:       19,
}

// Ranking is a total order over the encoder tiers. The zero value is not
// usable; start from DefaultRanking or NewRanking.
type Ranking struct {
	ranks [numEncoderTypes]int
}

// DefaultRanking orders the tiers from HD (lowest) to TopX265BluRay.
var DefaultRanking = Ranking{ranks: defaultRanks}

// NewRanking builds a ranking from tiers listed lowest first. Every tier must
// appear exactly once, and each BluRay variant must rank above its base tier.
func NewRanking(order []EncoderType) (Ranking, error) {
	if len(order) != numEncoderTypes {
		return Ranking{}, fmt.Errorf("ranking lists %d tiers, want %d", len(order), numEncoderTypes)
	}
	var r Ranking
	seen := make(map[EncoderType]bool, numEncoderTypes)
	for i, e := range order {
		if !e.Valid() {
			return Ranking{}, fmt.Errorf("ranking position %d: invalid tier %d", i, int(e))
		}
		if seen[e] {
			return Ranking{}, fmt.Errorf("ranking lists %s twice", e)
		}
		seen[e] = true
		r.ranks[e] = i
	}
	for base, bluRay := range bluRayVariant {
		if r.ranks[bluRay] <= r.ranks[base] {
			return Ranking{}, fmt.Errorf("ranking puts %s above %s", base, bluRay)
		}
	}
	return r, nil
}

// ParseRanking builds a ranking from tier names, lowest first. An empty list
// yields DefaultRanking.
func ParseRanking(names []string) (Ranking, error) {
	if len(names) == 0 {
		return DefaultRanking, nil
	}
	order := make([]EncoderType, 0, len(names))
	for _, name := range names {
		e, err := ParseEncoderType(name)
		if err != nil {
			return Ranking{}, err
		}
		order = append(order, e)
	}
	return NewRanking(order)
}

// Rank returns the position of e, higher wins.
func (r Ranking) Rank(e EncoderType) int {
	if !e.Valid() {
		return -1
	}
	return r.ranks[e]
}

// Less reports whether a ranks below b.
func (r Ranking) Less(a, b EncoderType) bool {
	return r.Rank(a) < r.Rank(b)
}

// Max returns the highest ranked of types. It panics on an empty list.
func (r Ranking) Max(types ...EncoderType) EncoderType {
	if len(types) == 0 {
		panic(fmt.Errorf("%w: no encoder types to compare", ErrInvalidArgument))
	}
	best := types[0]
	for _, e := range types[1:] {
		if r.Less(best, e) {
			best = e
		}
	}
	return best
}

// Order lists the tiers lowest first.
func (r Ranking) Order() []EncoderType {
	out := make([]EncoderType, numEncoderTypes)
	for e, rank := range r.ranks {
		out[rank] = EncoderType(e)
	}
	return out
}

func (r Ranking) String() string {
	names := make([]string, 0, numEncoderTypes)
	for _, e := range r.Order() {
		names = append(names, e.String())
	}
	return strings.Join(names, " < ")
}
