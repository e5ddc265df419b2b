package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// FileRef is the id of a post in the source channel that can be copied
// to a user without uploading the media again
type FileRef int

// Filter is a keyword bound to either file references or buttons
type Filter struct {
	Keyword     string    `json:"keyword" bson:"keyword" firestore:"keyword"`
	Kind        Kind      `json:"kind" bson:"kind" firestore:"kind"`
	MessageText string    `json:"message_text,omitempty" bson:"message_text,omitempty" firestore:"message_text,omitempty"`
	Buttons     []Button  `json:"buttons" bson:"buttons" firestore:"buttons"`
	Files       []FileRef `json:"files" bson:"files" firestore:"files"`
	SourcePost  int       `json:"source_post,omitempty" bson:"source_post,omitempty" firestore:"source_post,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" firestore:"created_at"`
}

// Button is a link, a file reference, or an inert label
type Button struct {
	Text    string  `json:"text" bson:"text" firestore:"text"`
	Link    string  `json:"link,omitempty" bson:"link,omitempty" firestore:"link,omitempty"`
	FileRef FileRef `json:"file_ref,omitempty" bson:"file_ref,omitempty" firestore:"file_ref,omitempty"`
}

// IsFileReference reports whether pressing the button re-sends a stored post
func (b Button) IsFileReference() bool {
	return b.FileRef != 0
}

// IsLabel reports whether the button is non-interactive filler
func (b Button) IsLabel() bool {
	return b.Link == "" && b.FileRef == 0
}

// NormalizeKeyword lower-cases and trims a keyword and drops hashtag marks
func NormalizeKeyword(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "#", ""))
}

// ShortKeywordID is the stable short id used in callback data
func ShortKeywordID(keyword string) string {
	return strconv.FormatUint(xxhash.Sum64String(keyword), 16)
}

// ShareLink is the deep link that opens the bot with keyword as start payload
func ShareLink(botUsername, keyword string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, keyword)
}

// ShortID returns the callback id of this filter
func (f *Filter) ShortID() string {
	return ShortKeywordID(f.Keyword)
}

// Items returns the buttons a viewer sees. File filters expose one
// file-reference button per stored post.
func (f *Filter) Items() []Button {
	if f.Kind == KindButton {
		return f.Buttons
	}
	items := make([]Button, 0, len(f.Files))
	for i, ref := range f.Files {
		items = append(items, Button{Text: fmt.Sprintf("File %d", i+1), FileRef: ref})
	}
	return items
}

// Len is the number of stored items regardless of kind
func (f *Filter) Len() int {
	if f.Kind == KindButton {
		return len(f.Buttons)
	}
	return len(f.Files)
}

func (f *Filter) Clone() *Filter {
	if f == nil {
		return nil
	}
	c := *f
	c.Buttons = append([]Button(nil), f.Buttons...)
	c.Files = append([]FileRef(nil), f.Files...)
	return &c
}
