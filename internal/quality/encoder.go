// Package quality classifies parsed names into encoder tiers and definitions
// and orders them for version selection.
package quality

import (
	"fmt"
	"strings"
)

// EncoderType is the encoder lineage of a video file. Declaration order only
// fixes identity; the ordering used for selection lives in a Ranking.
type EncoderType int

const (
	HD EncoderType = iota
	HDBluRay
	Korean
	KoreanPremium
	Contrast
	ContrastBluRay
	HandbrakeH264
	HandbrakeH264BluRay
	NvidiaX265
	NvidiaX265BluRay
	FfmpegX265
	FfmpegX265BluRay
	PreferredH264
	PreferredH264BluRay
	PreferredX265
	PreferredX265BluRay
	TopH264
	TopH264BluRay
	TopX265
	TopX265BluRay

	numEncoderTypes = int(TopX265BluRay) + 1
)

var encoderNames = [numEncoderTypes]string{
	HD:                  "HD",
	HDBluRay:            "HDBluRay",
	Korean:              "Korean",
	KoreanPremium:       "KoreanPremium",
	Contrast:            "Contrast",
	ContrastBluRay:      "ContrastBluRay",
	HandbrakeH264:       "HandbrakeH264",
	HandbrakeH264BluRay: "HandbrakeH264BluRay",
	NvidiaX265:          "NvidiaX265",
	NvidiaX265BluRay:    "NvidiaX265BluRay",
	FfmpegX265:          "FfmpegX265",
	FfmpegX265BluRay:    "FfmpegX265BluRay",
	PreferredH264:       "PreferredH264",
	PreferredH264BluRay: "PreferredH264BluRay",
	PreferredX265:       "PreferredX265",
	PreferredX265BluRay: "PreferredX265BluRay",
	TopH264:             "TopH264",
	TopH264BluRay:       "TopH264BluRay",
	TopX265:             "TopX265",
	TopX265BluRay:       "TopX265BluRay",
}

// Letters used in the directory source label. Lower case marks BluRay.
var encoderLetters = [numEncoderTypes]byte{
	HD:                  'H',
	HDBluRay:            'h',
	Korean:              'K',
	KoreanPremium:       'V',
	Contrast:            'C',
	ContrastBluRay:      'c',
	HandbrakeH264:       'B',
	HandbrakeH264BluRay: 'b',
	NvidiaX265:          'N',
	NvidiaX265BluRay:    'n',
	FfmpegX265:          'F',
	FfmpegX265BluRay:    'f',
	PreferredH264:       'Y',
	PreferredH264BluRay: 'y',
	PreferredX265:       'P',
	PreferredX265BluRay: 'p',
	TopH264:             'T',
	TopH264BluRay:       't',
	TopX265:             'X',
	TopX265BluRay:       'x',
}

// bluRayVariant maps every tier that has a BluRay-sourced variant to it.
var bluRayVariant = map[EncoderType]EncoderType{
	HD:            HDBluRay,
	Contrast:      ContrastBluRay,
	HandbrakeH264: HandbrakeH264BluRay,
	NvidiaX265:    NvidiaX265BluRay,
	FfmpegX265:    FfmpegX265BluRay,
	PreferredH264: PreferredH264BluRay,
	PreferredX265: PreferredX265BluRay,
	TopH264:       TopH264BluRay,
	TopX265:       TopX265BluRay,
}

// Valid reports whether e is one of the declared tiers.
func (e EncoderType) Valid() bool {
	return e >= 0 && int(e) < numEncoderTypes
}

func (e EncoderType) String() string {
	if !e.Valid() {
		return fmt.Sprintf("EncoderType(%d)", int(e))
	}
	return encoderNames[e]
}

// Letter returns the one-character code of the tier.
func (e EncoderType) Letter() string {
	if !e.Valid() {
		return "?"
	}
	return string(encoderLetters[e])
}

// IsBluRay reports whether the tier is a BluRay-sourced variant.
func (e EncoderType) IsBluRay() bool {
	for _, v := range bluRayVariant {
		if v == e {
			return true
		}
	}
	return false
}

// IsGenuineHD reports whether the tier is anything but the generic HD
// catch-all.
func (e EncoderType) IsGenuineHD() bool {
	return e.Valid() && e != HD && e != HDBluRay
}

// BluRay returns the BluRay variant of e when bluRay is set and e has one.
func (e EncoderType) BluRay(bluRay bool) EncoderType {
	if v, ok := bluRayVariant[e]; ok && bluRay {
		return v
	}
	return e
}

// EncoderTypes lists every tier in declaration order.
func EncoderTypes() []EncoderType {
	out := make([]EncoderType, numEncoderTypes)
	for i := range out {
		out[i] = EncoderType(i)
	}
	return out
}

// ParseEncoderType looks a tier up by name, ignoring case.
func ParseEncoderType(s string) (EncoderType, error) {
	for i, name := range encoderNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return EncoderType(i), nil
		}
	}
	return HD, fmt.Errorf("unknown encoder type %q", s)
}

// EncoderFromLetter is the inverse of Letter.
func EncoderFromLetter(letter byte) (EncoderType, bool) {
	for i, l := range encoderLetters {
		if l == letter {
			return EncoderType(i), true
		}
	}
	return HD, false
}

// MarshalText encodes the tier by name.
func (e EncoderType) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("invalid encoder type %d", int(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText decodes a tier name.
func (e *EncoderType) UnmarshalText(text []byte) error {
	v, err := ParseEncoderType(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}
