package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"
	filterDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	"github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/pager"
	membershipDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/membership/domain"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
	"github.com/samber/oops"
)

// Callback data prefixes. Data stays well under Telegram's 64 byte limit
// because keywords travel as short ids.
const (
	actionPage         = "pg"
	actionSendFile     = "sf"
	actionAdd          = "ad"
	actionDelete       = "dl"
	actionSwap         = "sw"
	actionReplace      = "rb"
	actionDeleteFilter = "df"
	actionDeleteFinal  = "dx"
	actionCheckJoin    = "cj"
	actionNoop         = "no"
)

const (
	modeView = "v"
	modeEdit = "e"
)

// callback is decoded callback data
type callback struct {
	Action string
	ID     string
	Page   int
	Edit   bool
	Ref    filterDomain.FileRef
}

func encodeCallback(action string, parts ...string) string {
	return strings.Join(append([]string{action}, parts...), ":")
}

func pageCallback(id string, page int, edit bool) string {
	mode := modeView
	if edit {
		mode = modeEdit
	}
	return encodeCallback(actionPage, id, strconv.Itoa(page), mode)
}

func parseCallback(data string) (callback, error) {
	parts := strings.Split(data, ":")
	cb := callback{Action: parts[0]}
	invalid := oops.With("data", data).Wrap(sharedErrors.ErrInvalidFormat)

	switch cb.Action {
	case actionNoop:
		return cb, nil
	case actionCheckJoin:
		if len(parts) > 1 {
			cb.ID = parts[1]
		}
		return cb, nil
	case actionReplace, actionDeleteFilter, actionDeleteFinal:
		if len(parts) != 2 || parts[1] == "" {
			return cb, invalid
		}
		cb.ID = parts[1]
		return cb, nil
	case actionAdd, actionDelete, actionSwap:
		if len(parts) != 3 {
			return cb, invalid
		}
		page, err := strconv.Atoi(parts[2])
		if err != nil {
			return cb, invalid
		}
		cb.ID, cb.Page = parts[1], page
		return cb, nil
	case actionSendFile:
		if len(parts) != 3 {
			return cb, invalid
		}
		ref, err := strconv.Atoi(parts[2])
		if err != nil {
			return cb, invalid
		}
		cb.ID, cb.Ref = parts[1], filterDomain.FileRef(ref)
		return cb, nil
	case actionPage:
		if len(parts) != 4 {
			return cb, invalid
		}
		page, err := strconv.Atoi(parts[2])
		if err != nil {
			return cb, invalid
		}
		cb.ID, cb.Page, cb.Edit = parts[1], page, parts[3] == modeEdit
		return cb, nil
	}
	return cb, invalid
}

// FilterKeyboard renders one page of a filter. Edit mode numbers every
// button with its absolute position and adds the management rows.
func FilterKeyboard(f *filterDomain.Filter, w pager.Window, edit bool) *models.InlineKeyboardMarkup {
	id := f.ShortID()
	rows := [][]models.InlineKeyboardButton{
		{{Text: fmt.Sprintf("🎬 %s 🎬", f.Keyword), CallbackData: actionNoop}},
	}

	for offset, item := range pager.Slice(f.Items(), w) {
		text := item.Text
		if edit {
			text = fmt.Sprintf("%d. %s", w.Number(offset), item.Text)
		}
		btn := models.InlineKeyboardButton{Text: text}
		switch {
		case item.IsFileReference():
			btn.CallbackData = encodeCallback(actionSendFile, id, strconv.Itoa(int(item.FileRef)))
		case item.IsLabel():
			btn.CallbackData = actionNoop
		default:
			btn.URL = item.Link
		}
		rows = append(rows, []models.InlineKeyboardButton{btn})
	}

	if w.ShowNavigation() {
		var nav []models.InlineKeyboardButton
		if w.HasPrev {
			nav = append(nav, models.InlineKeyboardButton{Text: "⬅️ Previous", CallbackData: pageCallback(id, w.Page-1, edit)})
		}
		nav = append(nav, models.InlineKeyboardButton{
			Text:         fmt.Sprintf("%d/%d", w.Page+1, w.Pages),
			CallbackData: actionNoop,
		})
		if w.HasNext {
			nav = append(nav, models.InlineKeyboardButton{Text: "Next ➡️", CallbackData: pageCallback(id, w.Page+1, edit)})
		}
		rows = append(rows, nav)
	}

	if edit {
		page := strconv.Itoa(w.Page)
		if f.Kind == filterDomain.KindButton {
			rows = append(rows,
				[]models.InlineKeyboardButton{
					{Text: "➕ Add Button", CallbackData: encodeCallback(actionAdd, id, page)},
					{Text: "🗑️ Delete Button", CallbackData: encodeCallback(actionDelete, id, page)},
					{Text: "🔄 Set Button", CallbackData: encodeCallback(actionSwap, id, page)},
				},
				[]models.InlineKeyboardButton{
					{Text: "✏️ Edit Links", CallbackData: encodeCallback(actionReplace, id)},
				},
			)
		}
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: "❌ Delete Filter", CallbackData: encodeCallback(actionDeleteFilter, id)},
		})
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ConfirmDeleteKeyboard asks for the final delete of a filter
func ConfirmDeleteKeyboard(f *filterDomain.Filter) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{
			{Text: "✅ Yes, delete", CallbackData: encodeCallback(actionDeleteFinal, f.ShortID())},
			{Text: "↩️ Back", CallbackData: pageCallback(f.ShortID(), 0, true)},
		},
	}}
}

// JoinKeyboard lists a join button per missing channel and a retry link
// that reopens the original request
func JoinKeyboard(missing []membershipDomain.Channel, botUsername, keyword string) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(missing)+2)
	for _, ch := range missing {
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: fmt.Sprintf("✅ Join %s", ch.Name), URL: ch.Link},
		})
	}

	retry := "https://t.me/" + botUsername
	id := ""
	if keyword != "" {
		retry = filterDomain.ShareLink(botUsername, keyword)
		id = filterDomain.ShortKeywordID(keyword)
	}
	rows = append(rows,
		[]models.InlineKeyboardButton{{Text: "🔄 Try Again", URL: retry}},
		[]models.InlineKeyboardButton{{Text: "☑️ I joined", CallbackData: encodeCallback(actionCheckJoin, id)}},
	)
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
