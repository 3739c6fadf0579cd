package naming

import (
	"testing"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"Inception.2010.1080p.BluRay.x265.mkv", KindMovie},
		{"Show.S02E05.720p.WEBRip.x264.eng.mkv", KindEpisode},
		{"Show.2019.S01E01.mkv", KindEpisode},
		{"Inception.2010[8.8-2.4M-PG-13][1080x2]", KindDirectory},
		{"Inception (2010) [1080p].mkv", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DetectKind(tt.input); got != tt.want {
				t.Errorf("DetectKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestGuessKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"Inception (2010) [1080p].mkv", KindMovie},
		{"show name - s02e05 - the one.mkv", KindEpisode},
		{"Show 2x05.avi", KindEpisode},
		{"random clip.mp4", KindUnknown},
		{"Inception.2010.mkv", KindMovie},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := GuessKind(tt.input); got != tt.want {
				t.Errorf("GuessKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindMovie, "movie"},
		{KindEpisode, "episode"},
		{KindDirectory, "directory"},
		{KindUnknown, "unknown"},
		{Kind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
		if tt.kind != Kind(42) && ParseKind(tt.want) != tt.kind {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.want, ParseKind(tt.want), tt.kind)
		}
	}
}
