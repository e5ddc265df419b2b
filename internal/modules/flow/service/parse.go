package service

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	filterDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const maxIndexRange = 1000

var autoDeletePattern = regexp.MustCompile(`^(\d+)\s*([mhd])$`)

// ParseButtons reads a comma separated batch of buttons. Each item is
// `text = link`, `text - link` or a `[label]`.
func ParseButtons(input string) ([]filterDomain.Button, error) {
	items := splitList(input)
	if len(items) == 0 {
		return nil, oops.With("input", input).Wrap(sharedErrors.ErrInvalidFormat)
	}

	buttons := make([]filterDomain.Button, 0, len(items))
	for _, item := range items {
		b, err := parseButton(item)
		if err != nil {
			return nil, err
		}
		buttons = append(buttons, b)
	}
	return buttons, nil
}

func parseButton(item string) (filterDomain.Button, error) {
	if strings.HasPrefix(item, "[") && strings.HasSuffix(item, "]") {
		label := strings.TrimSpace(item[1 : len(item)-1])
		if label == "" {
			return filterDomain.Button{}, oops.With("item", item).Wrap(sharedErrors.ErrInvalidFormat)
		}
		return filterDomain.Button{Text: label}, nil
	}

	// the separator that comes first wins so links may carry '=' or ' - '
	sep := " - "
	eq := strings.Index(item, "=")
	dash := strings.Index(item, sep)
	if eq >= 0 && (dash < 0 || eq < dash) {
		sep = "="
	}
	text, link, ok := strings.Cut(item, sep)
	text, link = strings.TrimSpace(text), strings.TrimSpace(link)
	if !ok || text == "" || !validLink(link) {
		return filterDomain.Button{}, oops.With("item", item).Wrap(sharedErrors.ErrInvalidFormat)
	}
	return filterDomain.Button{Text: text, Link: link}, nil
}

func validLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "tg":
		return u.Host != "" || u.Opaque != ""
	default:
		return false
	}
}

// ParseSwapPairs reads `i-j, k-l`
func ParseSwapPairs(input string) ([][2]int, error) {
	items := splitList(input)
	if len(items) == 0 {
		return nil, oops.With("input", input).Wrap(sharedErrors.ErrInvalidFormat)
	}

	pairs := make([][2]int, 0, len(items))
	for _, item := range items {
		left, right, ok := strings.Cut(item, "-")
		if !ok {
			return nil, oops.With("item", item).Wrap(sharedErrors.ErrInvalidFormat)
		}
		i, err := parseIndex(left)
		if err != nil {
			return nil, err
		}
		j, err := parseIndex(right)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, [2]int{i, j})
	}
	return pairs, nil
}

// ParseIndices reads `n, m, p-q` where ranges are inclusive
func ParseIndices(input string) ([]int, error) {
	items := splitList(input)
	if len(items) == 0 {
		return nil, oops.With("input", input).Wrap(sharedErrors.ErrInvalidFormat)
	}

	var indices []int
	for _, item := range items {
		from, to, isRange := strings.Cut(item, "-")
		first, err := parseIndex(from)
		if err != nil {
			return nil, err
		}
		if !isRange {
			indices = append(indices, first)
			continue
		}
		last, err := parseIndex(to)
		if err != nil {
			return nil, err
		}
		if last < first || last-first > maxIndexRange {
			return nil, oops.With("item", item).Wrap(sharedErrors.ErrInvalidFormat)
		}
		for n := first; n <= last; n++ {
			indices = append(indices, n)
		}
	}
	return lo.Uniq(indices), nil
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, oops.With("index", s).Wrap(sharedErrors.ErrInvalidFormat)
	}
	return n, nil
}

// ParseAutoDelete reads `off` or a count of minutes, hours or days such as
// `30m`, `12h` or `2d`. Zero means never.
func ParseAutoDelete(input string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "off" {
		return 0, nil
	}

	m := autoDeletePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, oops.With("input", input).Wrap(sharedErrors.ErrInvalidFormat)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, oops.With("input", input).Wrap(sharedErrors.ErrInvalidFormat)
	}

	unit := map[string]time.Duration{
		"m": time.Minute,
		"h": time.Hour,
		"d": 24 * time.Hour,
	}[m[2]]
	return time.Duration(n) * unit, nil
}

// ParseUserID reads a Telegram user id
func ParseUserID(input string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil || id == 0 {
		return 0, oops.With("input", input).Wrap(sharedErrors.ErrInvalidFormat)
	}
	return id, nil
}

// ParseKeywords reads comma separated keywords in order, dropping repeats
func ParseKeywords(input string) ([]string, error) {
	keywords := lo.Uniq(lo.FilterMap(splitList(input), func(item string, _ int) (string, bool) {
		kw := filterDomain.NormalizeKeyword(item)
		return kw, kw != ""
	}))
	if len(keywords) == 0 {
		return nil, oops.With("input", input).Wrap(sharedErrors.ErrInvalidFormat)
	}
	return keywords, nil
}

func splitList(input string) []string {
	return lo.FilterMap(strings.Split(input, ","), func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	})
}
