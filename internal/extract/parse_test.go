package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want float64
	}{
		{name: "decimal with suffix", in: "4.5 stars", want: 4.5},
		{name: "integer", in: "Rated 5", want: 5},
		{name: "embedded", in: "rating: 3.8 out of 5", want: 3.8},
		{name: "no number", in: "no rating", want: 0},
		{name: "empty", in: "", want: 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.InDelta(t, tc.want, ParseRating(tc.in), 1e-9)
		})
	}
}

func TestParseCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "thousands separated", in: "1,234 reviews", want: 1234},
		{name: "plain", in: "87 reviews", want: 87},
		{name: "millions", in: "1,234,567", want: 1234567},
		{name: "no number", in: "no reviews yet", want: 0},
		{name: "empty", in: "", want: 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, ParseCount(tc.in))
		})
	}
}

func TestParseStars(t *testing.T) {
	t.Parallel()

	require.Equal(t, 5, ParseStars("5 stars"))
	require.Equal(t, 1, ParseStars("1 star"))
	require.Equal(t, 0, ParseStars("unrated"))
}

func TestParsePercent(t *testing.T) {
	t.Parallel()

	got, ok := ParsePercent("Usually 62% busy")
	require.True(t, ok)
	require.Equal(t, 62, got)

	got, ok = ParsePercent("0% busy")
	require.True(t, ok)
	require.Equal(t, 0, got)

	_, ok = ParsePercent("Currently closed")
	require.False(t, ok)
}

func TestSplitCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "typical line",
			in:   "Japanese · $$ · Sushi",
			want: []string{"Japanese", "$$", "Sushi"},
		},
		{
			name: "empty segments dropped",
			in:   " · Cafe ·  · Bakery · ",
			want: []string{"Cafe", "Bakery"},
		},
		{
			name: "no delimiter",
			in:   "Steakhouse",
			want: []string{"Steakhouse"},
		},
		{
			name: "all empty",
			in:   " · ",
			want: []string{},
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, SplitCategories(tc.in))
		})
	}
}

func TestParseCoordinates(t *testing.T) {
	t.Parallel()

	lat, lng, ok := ParseCoordinates("https://www.google.com/maps/place/Cafe/@-33.899109,151.209469,17z/data=abc")
	require.True(t, ok)
	require.InDelta(t, -33.899109, lat, 1e-9)
	require.InDelta(t, 151.209469, lng, 1e-9)

	_, _, ok = ParseCoordinates("https://www.google.com/maps/place/Cafe")
	require.False(t, ok)

	_, _, ok = ParseCoordinates("https://example.com/@not,numbers")
	require.False(t, ok)
}

func TestNativeID(t *testing.T) {
	t.Parallel()

	link := "https://www.google.com/maps/place/Cafe/data=!4m2!3m1!1s0x6b12b1d842ee6aab:0x3133d4f29b1f74a5"
	require.Equal(t, "0x6b12b1d842ee6aab", NativeID(link))
	require.Empty(t, NativeID("https://www.google.com/maps/place/Cafe"))
}
