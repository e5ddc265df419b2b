package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	filterDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	"github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/pager"
	membershipDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/membership/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buttonFilter(n int) *filterDomain.Filter {
	f := &filterDomain.Filter{Keyword: "anime", Kind: filterDomain.KindButton}
	for i := range n {
		f.Buttons = append(f.Buttons, filterDomain.Button{
			Text: fmt.Sprintf("B%d", i+1),
			Link: fmt.Sprintf("https://x.com/%d", i+1),
		})
	}
	return f
}

func TestViewWithinOnePageHasNoNavigation(t *testing.T) {
	f := &filterDomain.Filter{
		Keyword: "anime",
		Kind:    filterDomain.KindButton,
		Buttons: []filterDomain.Button{
			{Text: "A", Link: "http://x.com"},
			{Text: "B", Link: "http://y.com"},
		},
	}
	kb := FilterKeyboard(f, pager.New(f.Len(), 0, 10), false)

	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "http://x.com", kb.InlineKeyboard[1][0].URL)
	assert.Equal(t, "A", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, "http://y.com", kb.InlineKeyboard[2][0].URL)
}

func TestNavigationRow(t *testing.T) {
	f := buttonFilter(25)

	first := FilterKeyboard(f, pager.New(f.Len(), 0, 10), false)
	nav := first.InlineKeyboard[len(first.InlineKeyboard)-1]
	require.Len(t, nav, 2)
	assert.Equal(t, "1/3", nav[0].Text)
	assert.Equal(t, actionNoop, nav[0].CallbackData)
	assert.Equal(t, pageCallback(f.ShortID(), 1, false), nav[1].CallbackData)

	middle := FilterKeyboard(f, pager.New(f.Len(), 1, 10), false)
	nav = middle.InlineKeyboard[len(middle.InlineKeyboard)-1]
	require.Len(t, nav, 3)
	assert.Equal(t, "2/3", nav[1].Text)

	last := FilterKeyboard(f, pager.New(f.Len(), 2, 10), false)
	require.Len(t, last.InlineKeyboard, 1+5+1)
	nav = last.InlineKeyboard[len(last.InlineKeyboard)-1]
	require.Len(t, nav, 2)
	assert.Equal(t, "3/3", nav[1].Text)
}

func TestEditModeNumbersAreAbsolute(t *testing.T) {
	f := buttonFilter(23)
	prev := 0
	for page := range 3 {
		kb := FilterKeyboard(f, pager.New(f.Len(), page, 10), true)
		for _, row := range kb.InlineKeyboard[1:] {
			n, ok := leadingNumber(row[0].Text)
			if !ok {
				continue
			}
			assert.Greater(t, n, prev)
			prev = n
		}
	}
	assert.Equal(t, 23, prev)
}

func TestEditModeManagementRows(t *testing.T) {
	kb := FilterKeyboard(buttonFilter(2), pager.New(2, 0, 10), true)
	rows := kb.InlineKeyboard
	require.Len(t, rows, 1+2+2+1)
	assert.True(t, strings.HasPrefix(rows[3][0].CallbackData, actionAdd+":"))
	assert.True(t, strings.HasPrefix(rows[3][1].CallbackData, actionDelete+":"))
	assert.True(t, strings.HasPrefix(rows[3][2].CallbackData, actionSwap+":"))
	assert.True(t, strings.HasPrefix(rows[4][0].CallbackData, actionReplace+":"))
	assert.True(t, strings.HasPrefix(rows[5][0].CallbackData, actionDeleteFilter+":"))
}

func TestFileFilterButtonsSendFiles(t *testing.T) {
	f := &filterDomain.Filter{Keyword: "movie1", Kind: filterDomain.KindFile, Files: []filterDomain.FileRef{101, 102}}
	kb := FilterKeyboard(f, pager.New(f.Len(), 0, 10), true)

	assert.Equal(t, "1. File 1", kb.InlineKeyboard[1][0].Text)
	cb, err := parseCallback(kb.InlineKeyboard[2][0].CallbackData)
	require.NoError(t, err)
	assert.Equal(t, actionSendFile, cb.Action)
	assert.Equal(t, filterDomain.FileRef(102), cb.Ref)
	assert.Equal(t, f.ShortID(), cb.ID)

	// no button management for file filters
	assert.Len(t, kb.InlineKeyboard, 1+2+1)
}

func TestLabelButtonsAreInert(t *testing.T) {
	f := &filterDomain.Filter{Keyword: "k", Kind: filterDomain.KindButton, Buttons: []filterDomain.Button{{Text: "Season 1"}}}
	kb := FilterKeyboard(f, pager.New(1, 0, 10), false)
	assert.Equal(t, actionNoop, kb.InlineKeyboard[1][0].CallbackData)
	assert.Empty(t, kb.InlineKeyboard[1][0].URL)
}

func TestEmptyFilterRendersHeaderOnly(t *testing.T) {
	f := &filterDomain.Filter{Keyword: "k", Kind: filterDomain.KindButton}
	kb := FilterKeyboard(f, pager.New(0, 0, 10), false)
	assert.Len(t, kb.InlineKeyboard, 1)
}

func TestCallbackDataFitsLimit(t *testing.T) {
	f := buttonFilter(1)
	f.Keyword = strings.Repeat("long keyword ", 20)
	kb := FilterKeyboard(f, pager.New(2000, 150, 10), true)
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			assert.LessOrEqual(t, len(btn.CallbackData), 64, btn.CallbackData)
		}
	}
}

func TestParseCallback(t *testing.T) {
	cb, err := parseCallback(pageCallback("abc", 4, true))
	require.NoError(t, err)
	assert.Equal(t, callback{Action: actionPage, ID: "abc", Page: 4, Edit: true}, cb)

	cb, err = parseCallback("cj:")
	require.NoError(t, err)
	assert.Equal(t, actionCheckJoin, cb.Action)
	assert.Empty(t, cb.ID)

	for _, data := range []string{"", "zz:1", "pg:abc", "pg:abc:x:e", "sf:abc:nope", "dx:", "ad:abc"} {
		_, err := parseCallback(data)
		assert.Error(t, err, data)
	}
}

func TestJoinKeyboard(t *testing.T) {
	missing := []membershipDomain.Channel{
		{Name: "News", Link: "https://t.me/news"},
		{Name: "Updates", Link: "https://t.me/updates"},
	}
	kb := JoinKeyboard(missing, "sharebot", "movie1")
	require.Len(t, kb.InlineKeyboard, 4)
	assert.Equal(t, "https://t.me/news", kb.InlineKeyboard[0][0].URL)
	assert.Equal(t, "https://t.me/sharebot?start=movie1", kb.InlineKeyboard[2][0].URL)
	assert.Equal(t, encodeCallback(actionCheckJoin, filterDomain.ShortKeywordID("movie1")), kb.InlineKeyboard[3][0].CallbackData)
}

func leadingNumber(text string) (int, bool) {
	head, _, ok := strings.Cut(text, ".")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(head)
	return n, err == nil
}
