package service

import (
	"fmt"
	"slices"
	"time"

	"github.com/gorilla/feeds"
	filterDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	filterService "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/service"
)

// MaxItems caps the number of filters listed in the feed
const MaxItems = 100

// Service builds the RSS catalog of shared filters
type Service struct {
	filters     *filterService.Service
	botUsername string
}

// New creates a new feed service
func New(filters *filterService.Service, botUsername string) *Service {
	return &Service{
		filters:     filters,
		botUsername: botUsername,
	}
}

// GenerateFeed lists filters, newest first, each linking to its deep link
func (s *Service) GenerateFeed(baseURL string) *feeds.Feed {
	filters := s.filters.All()
	slices.SortStableFunc(filters, func(a, b *filterDomain.Filter) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(filters) > MaxItems {
		filters = filters[:MaxItems]
	}

	updated := time.Time{}
	if len(filters) > 0 {
		updated = filters[0].CreatedAt
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("@%s filters", s.botUsername),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/feed", baseURL)},
		Description: "Keywords shared by the bot",
		Author:      &feeds.Author{Name: s.botUsername},
		Updated:     updated,
	}

	for _, f := range filters {
		feed.Items = append(feed.Items, s.filterToFeedItem(f))
	}
	return feed
}

func (s *Service) filterToFeedItem(f *filterDomain.Filter) *feeds.Item {
	link := filterDomain.ShareLink(s.botUsername, f.Keyword)

	description := fmt.Sprintf("%d file(s)", len(f.Files))
	if f.Kind == filterDomain.KindButton {
		description = fmt.Sprintf("%d button(s)", len(f.Buttons))
	}

	return &feeds.Item{
		Id:          f.ShortID(),
		Title:       f.Keyword,
		Link:        &feeds.Link{Href: link},
		Description: description,
		Created:     f.CreatedAt,
	}
}
