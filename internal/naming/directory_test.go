package naming

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryParseDirectory(t *testing.T) {
	got, ok := TryParseDirectory("Spider-Man：No Way Home=Spider-Man.2021.蜘蛛侠：英雄无归[8.2-850K-PG-13][2160X0][HDR]")
	require.True(t, ok)

	assert.Equal(t, [3]string{"Spider", "-Man", "：No Way Home"}, got.DefaultTitle)
	assert.Equal(t, [3]string{"Spider", "-Man", ""}, got.OriginalTitle)
	assert.Equal(t, [4]string{"蜘蛛侠", "：英雄无归", "", ""}, got.TranslatedTitle)
	assert.Equal(t, "Spider-Man：No Way Home", got.Title())
	assert.Equal(t, "Spider-Man", got.Original())
	assert.Equal(t, "蜘蛛侠：英雄无归", got.Translated())
	assert.Equal(t, "2021", got.Year)
	assert.Equal(t, "8.2", got.AggregateRating)
	assert.Equal(t, "850K", got.AggregateRatingCount)
	assert.Equal(t, "PG-13", got.ContentRating)
	assert.Equal(t, "2160", got.Resolution)
	assert.Equal(t, "X0", got.Source)
	assert.Equal(t, "[2160X0]", got.FormattedDefinition())
	assert.False(t, got.Is3D)
	assert.True(t, got.Hdr)
}

func TestTryParseDirectory_Unknowns(t *testing.T) {
	got, ok := TryParseDirectory("/media/movies/Metropolis.----[-----]/")
	require.True(t, ok)

	assert.Equal(t, "Metropolis", got.Title())
	assert.Empty(t, got.Year)
	assert.Empty(t, got.AggregateRating)
	assert.Empty(t, got.AggregateRatingCount)
	assert.Empty(t, got.ContentRating)
	assert.Empty(t, got.FormattedDefinition())
	assert.Equal(t, "Metropolis.----[-----]", got.String())

	got, ok = TryParseDirectory("Metropolis.1927[8.3---NR]")
	require.True(t, ok)
	assert.Equal(t, "8.3", got.AggregateRating)
	assert.Empty(t, got.AggregateRatingCount)
	assert.Equal(t, "NR", got.ContentRating)
}

func TestTryParseDirectory_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing rating block", "Inception.2010[1080x2]"},
		{"missing year", "Inception[8.8-2.4M-PG-13]"},
		{"file name", "Inception.2010.1080p.mkv"},
		{"dangling boundary", "Inception-.2010[8.8-2.4M-PG-13]"},
		{"empty original title", "Inception=.2010[8.8-2.4M-PG-13]"},
		{"too many default parts", "A-B-C-D.2010[8.8-2.4M-PG-13]"},
		{"rating out of range", "Inception.2010[12.5-2.4M-PG-13]"},
		{"flags out of order", "Inception.2010[8.8-2.4M-PG-13][HDR][3D]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := TryParseDirectory(tt.input)
			assert.False(t, ok)
		})
	}

	_, err := ParseDirectory("Inception")
	assert.True(t, errors.Is(err, ErrMalformedName))
}

func TestDirectory_SetTitles(t *testing.T) {
	var d Directory
	require.NoError(t, d.SetTitles("Spider-Man: No Way Home", "Spider-Man: No Way Home", "Homem-Aranha: Sem Volta a Casa"))
	d.Year = "2021"
	d.AggregateRating = "8.2"
	d.Resolution = "1080"
	d.Source = "x2"

	assert.Equal(t, [3]string{"Spider", "-Man", "：No Way Home"}, d.DefaultTitle)
	assert.Equal(t, [3]string{}, d.OriginalTitle, "original equal to default is omitted")
	assert.Equal(t, "Homem-Aranha：Sem Volta a Casa", d.Translated())
	assert.Equal(t, "Spider-Man：No Way Home.2021.Homem-Aranha：Sem Volta a Casa[8.2----][1080x2]", d.String())
	assert.NoError(t, d.Validate())

	assert.Error(t, d.SetTitles("A-B-C-D", "", ""))
	assert.Error(t, d.SetTitles("", "", ""))
}

func TestSplitTitle(t *testing.T) {
	tests := []struct {
		title   string
		max     int
		want    []string
		wantErr bool
	}{
		{title: "Inception", max: 3, want: []string{"Inception"}},
		{title: "Mission: Impossible - Fallout", max: 3, want: []string{"Mission", "：Impossible ", "- Fallout"}},
		{title: "Mr. Smith Goes to Washington", max: 3, want: []string{"Mr Smith Goes to Washington"}},
		{title: "Face/Off", max: 3, want: []string{"Face Off"}},
		{title: "X-Men: Days of Future Past", max: 3, want: []string{"X", "-Men", "：Days of Future Past"}},
		{title: "A-B-C-D", max: 3, wantErr: true},
		{title: "A-B-C-D", max: 4, want: []string{"A", "-B", "-C", "-D"}},
		{title: "Double--Dash", max: 3, wantErr: true},
		{title: "Trailing-", max: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, err := SplitTitle(tt.title, tt.max)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirectory_Validate(t *testing.T) {
	d := Directory{DefaultTitle: [3]string{"Inception"}, Year: "2010"}
	require.NoError(t, d.Validate())
	assert.Equal(t, "Inception.2010[-----]", d.String())

	bad := d
	bad.DefaultTitle = [3]string{"Incep", "tion"}
	assert.Error(t, bad.Validate(), "second part without boundary does not survive")

	bad = d
	bad.Source = "x2"
	assert.Error(t, bad.Validate(), "source without resolution")

	bad = d
	bad.DefaultTitle = [3]string{}
	assert.Error(t, bad.Validate())
}
