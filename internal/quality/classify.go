package quality

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Nomadcxx/jellyname/internal/naming"
)

// ErrInvalidArgument marks a programmer error: classification without
// keywords or ranking an empty sibling set. It is raised by panic.
var ErrInvalidArgument = errors.New("invalid argument")

// hdRipOrigin marks releases that only Korean groups put out.
const hdRipOrigin = "HDRip"

// Keywords are the release-group tags that identify the named tiers.
type Keywords struct {
	TopEnglish    string `mapstructure:"top_english"`
	TopForeign    string `mapstructure:"top_foreign"`
	PreferredOld  string `mapstructure:"preferred_old"`
	PreferredNew  string `mapstructure:"preferred_new"` // prefix of a bracketed version, "[YTS."
	Contrast      string `mapstructure:"contrast"`
	KoreanPremium string `mapstructure:"korean_premium"`
}

// DefaultKeywords returns the keywords used when none are configured.
func DefaultKeywords() Keywords {
	return Keywords{
		TopEnglish:    "RARBG",
		TopForeign:    "VXT",
		PreferredOld:  "YIFY",
		PreferredNew:  "[YTS.",
		Contrast:      "GalaxyRG",
		KoreanPremium: "KOREAN",
	}
}

// Validate reports the first empty keyword.
func (k *Keywords) Validate() error {
	if k == nil {
		return fmt.Errorf("%w: keywords not configured", ErrInvalidArgument)
	}
	fields := []struct {
		name  string
		value string
	}{
		{"top_english", k.TopEnglish},
		{"top_foreign", k.TopForeign},
		{"preferred_old", k.PreferredOld},
		{"preferred_new", k.PreferredNew},
		{"contrast", k.Contrast},
		{"korean_premium", k.KoreanPremium},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: keyword %s is empty", ErrInvalidArgument, f.name)
		}
	}
	return nil
}

// Classify returns the encoder tier of a parsed name. The first matching rule
// wins:
//
//  1. HDRip origin: KoreanPremium for the premium keyword, else Korean.
//  2. Encoder tool: ffmpeg and nvenc are x265 tiers, handbrake is H264.
//  3. Top English or Top Foreign version.
//  4. Preferred old version, or a version starting with the preferred prefix.
//  5. Contrast version.
//  6. HD.
//
// Rules 2 to 6 pick the BluRay variant when the origin contains "BluRay".
// Classify panics with ErrInvalidArgument when kw is nil or incomplete.
func Classify(a naming.Attributes, kw *Keywords) EncoderType {
	if err := kw.Validate(); err != nil {
		panic(err)
	}

	if a.Origin == hdRipOrigin {
		if a.Version == kw.KoreanPremium {
			return KoreanPremium
		}
		return Korean
	}

	bluRay := a.IsBluRay()
	x265 := strings.Contains(a.VideoCodec, "x265")

	switch a.EncoderTool {
	case naming.EncoderFfmpeg:
		return FfmpegX265.BluRay(bluRay)
	case naming.EncoderNvenc:
		return NvidiaX265.BluRay(bluRay)
	case naming.EncoderHandbrake:
		return HandbrakeH264.BluRay(bluRay)
	}

	switch {
	case a.Version == kw.TopEnglish || a.Version == kw.TopForeign:
		if x265 {
			return TopX265.BluRay(bluRay)
		}
		return TopH264.BluRay(bluRay)
	case a.Version == kw.PreferredOld || strings.HasPrefix(a.Version, kw.PreferredNew):
		if x265 {
			return PreferredX265.BluRay(bluRay)
		}
		return PreferredH264.BluRay(bluRay)
	case a.Version == kw.Contrast:
		return Contrast.BluRay(bluRay)
	default:
		return HD.BluRay(bluRay)
	}
}
