//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Status is a user's standing in a chat as reported by Telegram
// ENUM(owner,administrator,member,restricted,left,kicked)
type Status string
