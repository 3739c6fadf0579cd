package naming

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryParseEpisode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Episode
	}{
		{
			name:  "season and episode kept as written",
			input: "Show.S02E05.720p.WEBRip.x264.eng.mkv",
			want: Episode{
				Title:   "Show",
				Season:  "02",
				Episode: "05",
				Attributes: Attributes{
					Definition:          "720p",
					Origin:              "WEBRip",
					VideoCodec:          "x264",
					SubtitleLanguageTag: "eng",
					Extension:           ".mkv",
				},
			},
		},
		{
			name:  "double episode with year and title",
			input: "Show.2019.S01E01E02.Pilot.1080p.WEB-DL.H265.EAC3.5.1-NTb.mkv",
			want: Episode{
				Title:             "Show",
				Year:              "2019",
				Season:            "01",
				Episode:           "01",
				AdditionalEpisode: "02",
				EpisodeTitle:      "Pilot",
				Attributes: Attributes{
					Definition: "1080p",
					Origin:     "WEB-DL",
					VideoCodec: "H265",
					AudioCodec: "EAC3.5.1",
					Version:    "NTb",
					Extension:  ".mkv",
				},
			},
		},
		{
			name:  "episode title with dots yields to the tail",
			input: "The.Office.S05E14.Stress.Relief.720p.BluRay.x264.handbrake.mkv",
			want: Episode{
				Title:        "The.Office",
				Season:       "05",
				Episode:      "14",
				EpisodeTitle: "Stress.Relief",
				Attributes: Attributes{
					Definition:  "720p",
					Origin:      "BluRay",
					VideoCodec:  "x264",
					EncoderTool: EncoderHandbrake,
					Extension:   ".mkv",
				},
			},
		},
		{
			name:  "four digit numbers",
			input: "Long.Running.Show.S2019E0120.mp4",
			want: Episode{
				Title:      "Long.Running.Show",
				Season:     "2019",
				Episode:    "0120",
				Attributes: Attributes{Extension: ".mp4"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TryParseEpisode(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, FormatEpisode(got))
		})
	}
}

func TestTryParseEpisode_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"single digit season", "Show.S2E05.720p.mkv"},
		{"missing episode", "Show.S02.720p.mkv"},
		{"lowercase marker", "Show.s02e05.720p.mkv"},
		{"movie name", "Inception.2010.1080p.BluRay.mkv"},
		{"stray whitespace before extension", "Show.S02E05.720p.WEBRip.x264 .mkv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := TryParseEpisode(tt.input)
			assert.False(t, ok)
		})
	}
}

func TestEpisode_Numbers(t *testing.T) {
	e := MustParseEpisode("Show.S02E05E06.mkv")
	assert.Equal(t, 2, e.SeasonNumber())
	assert.Equal(t, 5, e.EpisodeNumber())
	assert.Equal(t, 6, e.AdditionalEpisodeNumber())

	e = MustParseEpisode("Show.S02E05.mkv")
	assert.Equal(t, 0, e.AdditionalEpisodeNumber())
}

func TestEpisode_NumbersKeepPadding(t *testing.T) {
	parsed := MustParseEpisode("Show.S0002E0105.mkv")
	assert.Equal(t, "0002", parsed.Season)
	assert.Equal(t, "0105", parsed.Episode)

	built := Episode{Title: "Show", Season: "2", Episode: "105", Attributes: Attributes{Extension: ".mkv"}}
	assert.NotEqual(t, built.Season, parsed.Season)
	assert.Equal(t, built.SeasonNumber(), parsed.SeasonNumber())
	assert.Equal(t, built.EpisodeNumber(), parsed.EpisodeNumber())
	assert.Equal(t, "Show.S02E105.mkv", built.String())
}

func TestFormatEpisode_Pads(t *testing.T) {
	e := Episode{
		Title:   "Show",
		Season:  "2",
		Episode: "5",
		Attributes: Attributes{
			Definition: "720p",
			Extension:  ".mkv",
		},
	}
	assert.Equal(t, "Show.S02E05.720p.mkv", FormatEpisode(e))
	assert.NoError(t, e.Validate())

	e.Season = "123"
	assert.Equal(t, "Show.S123E05.720p.mkv", e.String())
}

func TestEpisode_Validate(t *testing.T) {
	valid := Episode{Title: "Show", Season: "01", Episode: "02", Attributes: Attributes{Extension: ".mkv"}}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Episode)
	}{
		{"empty title", func(e *Episode) { e.Title = "" }},
		{"missing season", func(e *Episode) { e.Season = "" }},
		{"season too long", func(e *Episode) { e.Season = "12345" }},
		{"non numeric episode", func(e *Episode) { e.Episode = "xx" }},
		{"episode title parsed as subtitle", func(e *Episode) { e.EpisodeTitle = "eng" }},
		{"bad subtitle", func(e *Episode) { e.SubtitleLanguageTag = "English" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidField))
		})
	}
}

func TestParseEpisode(t *testing.T) {
	_, err := ParseEpisode("Inception.2010.mkv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedName))
	assert.Panics(t, func() { MustParseEpisode("Inception.2010.mkv") })
}
