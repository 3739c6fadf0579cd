package naming

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryParseMovie(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Movie
	}{
		{
			name:  "top tier bluray with two audio tracks",
			input: "Inception.2010.1080p.BluRay.x265.DTS-HD.MA.5.1-TOP.2Audio.mkv",
			want: Movie{
				Title: "Inception",
				Year:  "2010",
				Attributes: Attributes{
					Definition:         "1080p",
					Origin:             "BluRay",
					VideoCodec:         "x265",
					AudioCodec:         "DTS-HD.MA.5.1",
					Version:            "TOP",
					MultipleAudioCount: 2,
					Extension:          ".mkv",
				},
			},
		},
		{
			name:  "title and year only",
			input: "Inception.2010.mkv",
			want:  Movie{Title: "Inception", Year: "2010", Attributes: Attributes{Extension: ".mkv"}},
		},
		{
			name:  "unknown year",
			input: "Metropolis.----.480p.DVDRip.XviD.MP3.avi",
			want: Movie{
				Title: "Metropolis",
				Attributes: Attributes{
					Definition: "480p",
					Origin:     "DVDRip",
					VideoCodec: "XviD",
					AudioCodec: "MP3",
					Extension:  ".avi",
				},
			},
		},
		{
			name:  "numeric title",
			input: "2001.A.Space.Odyssey.1968.Upscale.2160p.WEBRip.x265.mkv",
			want: Movie{
				Title: "2001.A.Space.Odyssey",
				Year:  "1968",
				Attributes: Attributes{
					Edition:    "Upscale",
					Definition: "2160p",
					Origin:     "WEBRip",
					VideoCodec: "x265",
					Extension:  ".mkv",
				},
			},
		},
		{
			name:  "every optional segment",
			input: "Avatar.2009.3D.Extended.Directors.Cut.2160p.BluRay.x265.10bit.TrueHD.Atmos.7.1-[YTS.MX].3Audio.watermark.ffmpeg.chs&eng.mkv",
			want: Movie{
				Title:  "Avatar",
				Year:   "2009",
				ThreeD: true,
				Attributes: Attributes{
					Edition:             "Extended.Directors.Cut",
					Definition:          "2160p",
					Origin:              "BluRay",
					VideoCodec:          "x265.10bit",
					AudioCodec:          "TrueHD.Atmos.7.1",
					Version:             "[YTS.MX]",
					MultipleAudioCount:  3,
					Watermark:           true,
					EncoderTool:         EncoderFfmpeg,
					SubtitleLanguageTag: "chs&eng",
					Extension:           ".mkv",
				},
			},
		},
		{
			name:  "multi part",
			input: "Kill.Bill.2003.720p.HDTV.x264.AC3.cd1.avi",
			want: Movie{
				Title: "Kill.Bill",
				Year:  "2003",
				Attributes: Attributes{
					Definition: "720p",
					Origin:     "HDTV",
					VideoCodec: "x264",
					AudioCodec: "AC3",
					Extension:  ".avi",
				},
				Part: ".cd1",
			},
		},
		{
			name:  "leading directory is ignored",
			input: "/media/movies/Inception.2010/Inception.2010.1080p.mkv",
			want:  Movie{Title: "Inception", Year: "2010", Attributes: Attributes{Definition: "1080p", Extension: ".mkv"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TryParseMovie(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTryParseMovie_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"stray whitespace before extension", "Inception.2010.1080p.BluRay.x265 .mkv"},
		{"missing year", "Inception.1080p.BluRay.x265.mkv"},
		{"missing extension", "Inception.2010.1080p.BluRay"},
		{"definition after origin", "Inception.2010.BluRay.1080p.mkv"},
		{"wrong case in exact mode", "Inception.2010.1080P.bluray.mkv"},
		{"single audio track", "Inception.2010.1080p.1Audio.mkv"},
		{"empty", ""},
		{"title with leading dot", ".Inception.2010.mkv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TryParseMovie(tt.input)
			assert.False(t, ok)
			assert.Equal(t, Movie{}, got)
		})
	}
}

func TestTryParseMovieCaseInsensitive(t *testing.T) {
	got, ok := TryParseMovieCaseInsensitive("inception.2010.1080P.bluray.X265.dts-hd.ma.5.1-TOP.2audio.WATERMARK.FFmpeg.ENG.CD2.mkv")
	require.True(t, ok)

	assert.Equal(t, "inception", got.Title)
	assert.Equal(t, "1080p", got.Definition)
	assert.Equal(t, "BluRay", got.Origin)
	assert.Equal(t, "x265", got.VideoCodec)
	assert.Equal(t, "DTS-HD.MA.5.1", got.AudioCodec)
	assert.Equal(t, 2, got.MultipleAudioCount)
	assert.True(t, got.Watermark)
	assert.Equal(t, EncoderFfmpeg, got.EncoderTool)
	assert.Equal(t, "eng", got.SubtitleLanguageTag)
	assert.Equal(t, ".cd2", got.Part)

	assert.Equal(t,
		"inception.2010.1080p.BluRay.x265.DTS-HD.MA.5.1-TOP.2Audio.watermark.ffmpeg.eng.cd2.mkv",
		FormatMovie(got))
}

func TestParseMovie(t *testing.T) {
	_, err := ParseMovie("not a movie")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedName))
	assert.Contains(t, err.Error(), "movie")

	assert.Panics(t, func() { MustParseMovie("not a movie") })
	assert.NotPanics(t, func() { MustParseMovie("Inception.2010.mkv") })
}

func TestFormatMovie(t *testing.T) {
	m := Movie{
		Title: "The.Matrix",
		Attributes: Attributes{
			Definition: "1080p",
			Origin:     "BluRay",
			Extension:  ".mkv",
		},
	}
	assert.Equal(t, "The.Matrix.----.1080p.BluRay.mkv", FormatMovie(m))
	assert.Equal(t, FormatMovie(m), m.String())

	m.Year = "1999"
	m.MultipleAudioCount = 2
	assert.Equal(t, "The.Matrix.1999.1080p.BluRay.2Audio.mkv", m.String())

	back, ok := TryParseMovie(m.String())
	require.True(t, ok)
	assert.Equal(t, m, back)
}

func TestMovie_Validate(t *testing.T) {
	valid := Movie{Title: "Inception", Year: "2010", Attributes: Attributes{Definition: "1080p", Extension: ".mkv"}}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Movie)
	}{
		{"empty title", func(m *Movie) { m.Title = "" }},
		{"path in title", func(m *Movie) { m.Title = "a/b" }},
		{"short year", func(m *Movie) { m.Year = "99" }},
		{"definition outside vocabulary", func(m *Movie) { m.Definition = "1080P" }},
		{"unknown origin", func(m *Movie) { m.Origin = "Laserdisc" }},
		{"single audio", func(m *Movie) { m.MultipleAudioCount = 1 }},
		{"unknown encoder", func(m *Movie) { m.EncoderTool = "x264-cli" }},
		{"missing extension", func(m *Movie) { m.Extension = "" }},
		{"bad part", func(m *Movie) { m.Part = ".cd0" }},
		{"title that swallows the year", func(m *Movie) { m.Title = "Inception " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			err := m.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidField))
		})
	}
}

func TestAttributes_Flags(t *testing.T) {
	a := Attributes{Edition: "Extended.Upscale", Origin: "BluRay", EncoderTool: EncoderNvenc}
	assert.True(t, a.IsUpscaled())
	assert.True(t, a.IsBluRay())
	assert.True(t, a.IsEncoded())

	b := Attributes{Edition: "Upscaled", Origin: "WEB-DL"}
	assert.False(t, b.IsUpscaled())
	assert.False(t, b.IsBluRay())
	assert.False(t, b.IsEncoded())
}
