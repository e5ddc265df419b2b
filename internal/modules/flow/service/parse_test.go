package service

import (
	"testing"
	"time"

	filterDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseButtons(t *testing.T) {
	buttons, err := ParseButtons("A = http://x.com, B - https://y.com/watch?v=1&t=2, [Season 1], C=tg://resolve?domain=foo")
	require.NoError(t, err)
	assert.Equal(t, []filterDomain.Button{
		{Text: "A", Link: "http://x.com"},
		{Text: "B", Link: "https://y.com/watch?v=1&t=2"},
		{Text: "Season 1"},
		{Text: "C", Link: "tg://resolve?domain=foo"},
	}, buttons)
}

func TestParseButtonsRejectsBadItems(t *testing.T) {
	for _, input := range []string{
		"",
		" , ",
		"just text",
		"A = ",
		"= http://x.com",
		"A = ftp://x.com",
		"A = not a link",
		"[]",
		"A = http://x.com, broken",
	} {
		_, err := ParseButtons(input)
		assert.ErrorIs(t, err, sharedErrors.ErrInvalidFormat, input)
	}
}

func TestParseSwapPairs(t *testing.T) {
	pairs, err := ParseSwapPairs("1-3, 2 - 4")
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 4}}, pairs)

	for _, input := range []string{"", "1", "1-", "a-b", "0-2", "1-2-3"} {
		_, err := ParseSwapPairs(input)
		assert.ErrorIs(t, err, sharedErrors.ErrInvalidFormat, input)
	}
}

func TestParseIndices(t *testing.T) {
	indices, err := ParseIndices("2, 5-7, 2, 9")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5, 6, 7, 9}, indices)

	for _, input := range []string{"", "x", "0", "7-5", "1-100000", "-3"} {
		_, err := ParseIndices(input)
		assert.ErrorIs(t, err, sharedErrors.ErrInvalidFormat, input)
	}
}

func TestParseAutoDelete(t *testing.T) {
	tests := map[string]time.Duration{
		"off": 0,
		"OFF": 0,
		"30m": 30 * time.Minute,
		"1h":  time.Hour,
		"12h": 12 * time.Hour,
		"24h": 24 * time.Hour,
		"2d":  48 * time.Hour,
	}
	for input, want := range tests {
		got, err := ParseAutoDelete(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	for _, input := range []string{"", "0m", "1w", "h", "-1h", "soon"} {
		_, err := ParseAutoDelete(input)
		assert.ErrorIs(t, err, sharedErrors.ErrInvalidFormat, input)
	}
}

func TestParseUserID(t *testing.T) {
	id, err := ParseUserID(" 123456789 ")
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), id)

	_, err = ParseUserID("abc")
	assert.ErrorIs(t, err, sharedErrors.ErrInvalidFormat)
}

func TestParseKeywords(t *testing.T) {
	keywords, err := ParseKeywords("Movie1, #movie2,, movie1")
	require.NoError(t, err)
	assert.Equal(t, []string{"movie1", "movie2"}, keywords)

	_, err = ParseKeywords(" , ")
	assert.ErrorIs(t, err, sharedErrors.ErrInvalidFormat)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "30m", FormatDuration(30*time.Minute))
	assert.Equal(t, "12h", FormatDuration(12*time.Hour))
	assert.Equal(t, "1d", FormatDuration(24*time.Hour))
}
