//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Kind tells whether a filter carries forwarded files or buttons
// ENUM(file,button)
type Kind string
