package telegram

import (
	"github.com/go-telegram/bot"
	"github.com/samber/oops"
)

// NewBot creates a bot that handles updates one at a time in arrival
// order. Intake depends on it: a media post must see the keyword post
// that came before it.
func NewBot(token, serverURL string, defaultHandler bot.HandlerFunc, opts ...bot.Option) (*bot.Bot, error) {
	options := []bot.Option{
		bot.WithDefaultHandler(defaultHandler),
		bot.WithNotAsyncHandlers(),
		bot.WithWorkers(1),
	}
	if serverURL != "" {
		options = append(options, bot.WithServerURL(serverURL))
	}
	options = append(options, opts...)

	b, err := bot.New(token, options...)
	if err != nil {
		return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
	}
	return b, nil
}
