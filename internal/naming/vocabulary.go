package naming

import (
	"strconv"
	"strings"
)

// Fixed tokens of the grammar.
const (
	ThreeDToken    = "3D"
	WatermarkToken = "watermark"
	UpscaleMarker  = "Upscale"
	UnknownYear    = "----"

	EncoderFfmpeg    = "ffmpeg"
	EncoderNvenc     = "nvenc"
	EncoderHandbrake = "handbrake"

	// InstallmentSeparator replaces ':' between a title and its installment
	// in directory names (U+FF1A FULLWIDTH COLON).
	InstallmentSeparator = "："

	multipleAudioSuffix = "Audio"
)

// Closed vocabularies. Order does not matter; the grammar prefers longer
// spellings over their prefixes.
var (
	Definitions = []string{"2160p", "1080p", "720p", "540p", "480p", "360p"}

	Origins = []string{
		"BluRay", "BDRip", "WEB-DL", "WEBRip", "WEB", "HDTV", "HDRip",
		"DVDRip", "DVD", "TVRip", "VHSRip", "LDRip", "CAM", "TS", "TC",
	}

	VideoCodecs = []string{
		"x265", "x264", "H265", "H264", "HEVC", "AV1", "VP9", "XviD", "Xvid", "DivX", "MPEG2",
	}

	AudioCodecs = []string{
		"TrueHD.Atmos", "TrueHD", "DTS-HD.MA", "DTS-HD.HRA", "DTS-HD", "DTS-X", "DTS-ES", "DTS",
		"DDP", "DD+", "DD", "EAC3", "AC3", "AAC", "LPCM", "FLAC", "Opus", "MP3",
	}

	Editions = []string{
		"Extended", "Directors", "Cut", "Theatrical", "Unrated", "Uncut", "Remastered",
		"Restored", "Special", "Edition", "Criterion", "IMAX", "Final", "Ultimate",
		"Alternate", "Ending", "Redux", "Colorized", UpscaleMarker,
	}

	EncoderTools = []string{EncoderFfmpeg, EncoderNvenc, EncoderHandbrake}
)

// Segment names shared by the file grammars.
const (
	segTitle         = "Title"
	segYear          = "Year"
	segThreeD        = "ThreeD"
	segEdition       = "Edition"
	segDefinition    = "Definition"
	segOrigin        = "Origin"
	segVideoCodec    = "VideoCodec"
	segAudioCodec    = "AudioCodec"
	segVersion       = "Version"
	segMultipleAudio = "MultipleAudio"
	segWatermark     = "Watermark"
	segEncoder       = "Encoder"
	segSubtitle      = "Subtitle"
	segPart          = "Part"
	segExtension     = "Extension"
)

const (
	// free text that neither starts nor ends with a dot or whitespace
	titlePattern     = `[^/\\\s.](?:[^/\\]*?[^/\\\s.])?`
	versionPattern   = `\[[^\]/\\]+\]|[^.\-\[\]/\\]+`
	subtitlePattern  = `[a-z]{2,3}(?:&[a-z]{2,3})*`
	extensionPattern = `\.[A-Za-z0-9]{2,5}`
)

// attributeSegments is the tail shared by movie and episode names, from the
// edition flags through the subtitle tag.
func attributeSegments() []Segment {
	return []Segment{
		{Name: segEdition, Separator: ".", Vocabulary: Editions, Joiner: ".", Optional: true},
		{Name: segDefinition, Separator: ".", Vocabulary: Definitions, Optional: true},
		{Name: segOrigin, Separator: ".", Vocabulary: Origins, Optional: true},
		{Name: segVideoCodec, Separator: ".", Vocabulary: VideoCodecs, Suffix: `\.(?:8|10|12)bit`, Optional: true},
		{Name: segAudioCodec, Separator: ".", Vocabulary: AudioCodecs, Suffix: `\.?[1-9]\.[0-9]`, Optional: true},
		{Name: segVersion, Separator: "-", Pattern: versionPattern, Optional: true},
		{Name: segMultipleAudio, Separator: ".", Pattern: `[2-9]|[1-9][0-9]`, Terminator: multipleAudioSuffix, Optional: true},
		{Name: segWatermark, Separator: ".", Vocabulary: []string{WatermarkToken}, Optional: true},
		{Name: segEncoder, Separator: ".", Vocabulary: EncoderTools, Optional: true},
		{Name: segSubtitle, Separator: ".", Pattern: subtitlePattern, Optional: true, Canonical: strings.ToLower},
	}
}

// Attributes are the release attributes shared by movie and episode names.
type Attributes struct {
	Edition             string
	Definition          string
	Origin              string
	VideoCodec          string
	AudioCodec          string
	Version             string
	MultipleAudioCount  int // 0 when the name carries no audio-count segment
	Watermark           bool
	EncoderTool         string // empty for an untouched release
	SubtitleLanguageTag string
	Extension           string // with the leading dot
}

// IsUpscaled reports whether the edition carries the fake/upscale marker.
func (a Attributes) IsUpscaled() bool {
	for _, word := range strings.Split(a.Edition, ".") {
		if word == UpscaleMarker {
			return true
		}
	}
	return false
}

// IsBluRay reports whether the capture medium is a BluRay.
func (a Attributes) IsBluRay() bool {
	return strings.Contains(a.Origin, "BluRay")
}

// IsEncoded reports whether the file was re-encoded by one of the known tools.
func (a Attributes) IsEncoded() bool {
	return a.EncoderTool != ""
}

func (a Attributes) putFields(f Fields) {
	f[segEdition] = a.Edition
	f[segDefinition] = a.Definition
	f[segOrigin] = a.Origin
	f[segVideoCodec] = a.VideoCodec
	f[segAudioCodec] = a.AudioCodec
	f[segVersion] = a.Version
	if a.MultipleAudioCount > 0 {
		f[segMultipleAudio] = strconv.Itoa(a.MultipleAudioCount)
	}
	if a.Watermark {
		f[segWatermark] = WatermarkToken
	}
	f[segEncoder] = a.EncoderTool
	f[segSubtitle] = a.SubtitleLanguageTag
	f[segExtension] = a.Extension
}

func attributesFromFields(f Fields) Attributes {
	a := Attributes{
		Edition:             f.Get(segEdition),
		Definition:          f.Get(segDefinition),
		Origin:              f.Get(segOrigin),
		VideoCodec:          f.Get(segVideoCodec),
		AudioCodec:          f.Get(segAudioCodec),
		Version:             f.Get(segVersion),
		Watermark:           f.Get(segWatermark) != "",
		EncoderTool:         f.Get(segEncoder),
		SubtitleLanguageTag: f.Get(segSubtitle),
		Extension:           f.Get(segExtension),
	}
	if v := f.Get(segMultipleAudio); v != "" {
		// the token set guarantees a one or two digit count
		a.MultipleAudioCount, _ = strconv.Atoi(v)
	}
	return a
}

// validate checks every non-empty attribute against its segment's token set.
func (a Attributes) validate(g *Grammar) error {
	checks := []struct {
		segment string
		value   string
	}{
		{segEdition, a.Edition},
		{segDefinition, a.Definition},
		{segOrigin, a.Origin},
		{segVideoCodec, a.VideoCodec},
		{segAudioCodec, a.AudioCodec},
		{segVersion, a.Version},
		{segEncoder, a.EncoderTool},
		{segSubtitle, a.SubtitleLanguageTag},
	}
	for _, c := range checks {
		if c.value != "" && !g.Accepts(c.segment, c.value) {
			return invalidField(c.segment, c.value)
		}
	}
	if a.MultipleAudioCount == 1 || a.MultipleAudioCount < 0 || a.MultipleAudioCount > 99 {
		return invalidField(segMultipleAudio, strconv.Itoa(a.MultipleAudioCount))
	}
	if !g.Accepts(segExtension, a.Extension) {
		return invalidField(segExtension, a.Extension)
	}
	return nil
}
