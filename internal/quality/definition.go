package quality

import (
	"fmt"
	"strings"

	"github.com/Nomadcxx/jellyname/internal/naming"
)

// DefinitionType is the effective vertical resolution class of a video.
type DefinitionType int

const (
	P480 DefinitionType = iota
	P720
	P1080
	P2160
)

var definitionTokens = [...]string{
	P480:  "480",
	P720:  "720",
	P1080: "1080",
	P2160: "2160",
}

// String returns the file name token, "1080p".
func (d DefinitionType) String() string {
	if d < P480 || d > P2160 {
		return fmt.Sprintf("DefinitionType(%d)", int(d))
	}
	return definitionTokens[d] + "p"
}

// Token returns the numeric directory token, "1080".
func (d DefinitionType) Token() string {
	if d < P480 || d > P2160 {
		return definitionTokens[P480]
	}
	return definitionTokens[d]
}

// IsHD reports whether d is 720p or better.
func (d DefinitionType) IsHD() bool {
	return d >= P720
}

// ParseDefinition accepts "1080p" or "1080". Unknown tokens yield P480.
func ParseDefinition(s string) (DefinitionType, bool) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "p")
	for i, token := range definitionTokens {
		if token == s {
			return DefinitionType(i), true
		}
	}
	return P480, false
}

// ClassifyFromName maps the definition token of a parsed name. The upscale
// edition marker overrides the token.
func ClassifyFromName(a naming.Attributes) DefinitionType {
	if a.IsUpscaled() {
		return P480
	}
	switch a.Definition {
	case "2160p":
		return P2160
	case "1080p":
		return P1080
	case "720p":
		return P720
	default:
		return P480
	}
}

// ClassifyFromPixels classifies probed frame dimensions. Either dimension is
// enough to reach a class.
func ClassifyFromPixels(width, height int) DefinitionType {
	switch {
	case width >= 3800 || height >= 2150:
		return P2160
	case width >= 1900 || height >= 1070:
		return P1080
	case width >= 1280 || height >= 720:
		return P720
	default:
		return P480
	}
}
