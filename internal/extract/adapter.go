// Package extract turns raw page structure into typed venue fields. Every
// field lookup runs through a prioritized strategy list so the adapter
// tolerates upstream markup drift between UI variants without branching
// extraction logic per variant.
package extract

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/chenmingwei23/smart-dine/internal/crawler"
)

// Strategy is one selector/attribute lookup. An empty Attr reads text
// content; the attr "aria-label" reads the accessible label; an empty
// Selector targets the scoped node itself.
type Strategy struct {
	Selector string
	Attr     string
}

// Prioritized lookup strategies per stub field. The first strategy yielding
// non-empty text wins.
var (
	linkStrategies = []Strategy{
		{Selector: "", Attr: "href"},
		{Selector: `a[href*="maps/place"]`, Attr: "href"},
	}
	nameStrategies = []Strategy{
		{Selector: `div[role="heading"]`},
		{Selector: "div.fontHeadlineSmall"},
		{Selector: "", Attr: "aria-label"},
	}
	ratingStrategies = []Strategy{
		{Selector: `span[aria-label*="stars"]`, Attr: "aria-label"},
		{Selector: `span[aria-label*="rating"]`, Attr: "aria-label"},
	}
	reviewCountStrategies = []Strategy{
		{Selector: `span[aria-label*="review"]`, Attr: "aria-label"},
	}
	thumbnailStrategies = []Strategy{
		{Selector: `img[src*="photo"]`, Attr: "src"},
		{Selector: `img[src*="place"]`, Attr: "src"},
	}
	priceStrategies = []Strategy{
		{Selector: `span[aria-label*="$"]`},
	}
	websiteStrategies = []Strategy{
		{Selector: `a[data-item-id="authority"]`, Attr: "href"},
	}
	phoneStrategies = []Strategy{
		{Selector: `button[data-item-id*="phone"]`},
		{Selector: `button[aria-label*="Phone"]`, Attr: "aria-label"},
	}
	statusStrategies = []Strategy{
		{Selector: `span[aria-label*="Open"]`, Attr: "aria-label"},
		{Selector: `span[aria-label*="Closed"]`, Attr: "aria-label"},
	}
)

const (
	categoryLineSelector = `div[class*="fontBodyMedium"], div[jsaction*="placeCard"]`
	hoursRowSelector     = "table.WgFkxc tr, table.eK4R0e tr"
	popularDaySelector   = `div[aria-label="Popular times"] div[role="img"] > *`
	popularHourSelector  = "div[aria-label]"
	coordinateSelector   = `a[href*="/@"]`
	reviewNodeSelector   = "div.jftiEf"
)

var weekdayNames = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Adapter applies the field-extraction contract in both the feed (stub) pass
// and the deep (detail) pass.
type Adapter struct {
	hasher crawler.Hasher
	clock  crawler.Clock
	logger *zap.Logger
}

// New constructs an Adapter.
func New(hasher crawler.Hasher, clock crawler.Clock, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		hasher: hasher,
		clock:  clock,
		logger: logger,
	}
}

// Lookup runs the strategies in order against node and returns the first
// non-empty value, "" if every strategy comes up empty. Strategy errors are
// treated as misses: a selector unsupported by one UI variant must not stop
// the rest of the list.
func (a *Adapter) Lookup(node crawler.PageQuery, strategies []Strategy) string {
	for _, s := range strategies {
		var (
			val string
			err error
		)
		switch s.Attr {
		case "":
			val, err = node.Text(s.Selector)
		case "aria-label":
			val, err = node.Label(s.Selector)
		default:
			val, err = node.Attribute(s.Selector, s.Attr)
		}
		if err != nil {
			continue
		}
		if val != "" {
			return val
		}
	}
	return ""
}

// Stub builds a venue from one feed node. It returns an error when the node
// fails required-field validation (missing name or link); the caller drops
// the node and moves on.
func (a *Adapter) Stub(node crawler.PageQuery) (crawler.Venue, error) {
	venue := crawler.Venue{
		Link: a.Lookup(node, linkStrategies),
		Name: a.Lookup(node, nameStrategies),
	}
	if !venue.Valid() {
		return crawler.Venue{}, fmt.Errorf("feed node missing required fields: name=%q link=%q", venue.Name, venue.Link)
	}

	venue.Rating = clampRating(ParseRating(a.Lookup(node, ratingStrategies)))
	venue.ReviewCount = ParseCount(a.Lookup(node, reviewCountStrategies))
	venue.Thumbnail = a.Lookup(node, thumbnailStrategies)
	venue.PriceRange = a.Lookup(node, priceStrategies)
	a.categoryAndAddress(node, &venue)

	venue.Cid = NativeID(venue.Link)
	id, err := a.deriveID(venue)
	if err != nil {
		return crawler.Venue{}, fmt.Errorf("derive venue id: %w", err)
	}
	venue.ID = id
	venue.CreatedAt = a.clock.Now()
	return venue, nil
}

// categoryAndAddress scans the card's body lines: the first line containing
// the middle-dot delimiter is the category line, the next non-empty line is
// the address.
func (a *Adapter) categoryAndAddress(node crawler.PageQuery, venue *crawler.Venue) {
	lines, err := node.Texts(categoryLineSelector)
	if err != nil {
		return
	}
	foundCategory := false
	for _, line := range lines {
		switch {
		case !foundCategory && strings.Contains(line, "·"):
			cats := SplitCategories(line)
			venue.Categories = cats
			if len(cats) > 0 {
				venue.Category = cats[0]
			}
			foundCategory = true
		case foundCategory && venue.Address == "":
			venue.Address = line
		}
	}
}

// Details enriches venue from a fully loaded place page. Individual field
// failures degrade that field to its zero value and never abort the pass.
func (a *Adapter) Details(page crawler.PageQuery, venue *crawler.Venue) {
	venue.Website = a.Lookup(page, websiteStrategies)
	venue.Phone = a.Lookup(page, phoneStrategies)
	venue.Status = a.Lookup(page, statusStrategies)

	if link, err := page.Attribute(coordinateSelector, "href"); err == nil {
		if lat, lng, ok := ParseCoordinates(link); ok {
			venue.Latitude = lat
			venue.Longitude = lng
		}
	}

	if hours := a.openHours(page); len(hours) > 0 {
		venue.OpenHours = hours
	}
	if popular := a.popularTimes(page); len(popular) > 0 {
		venue.PopularTimes = popular
	}
	venue.Reviews = a.Reviews(page)
}

// openHours reads the day/slots table. A day with unreadable cells is simply
// absent from the map.
func (a *Adapter) openHours(page crawler.PageQuery) map[string][]string {
	rows, err := page.Each(hoursRowSelector)
	if err != nil {
		return nil
	}
	hours := make(map[string][]string)
	for _, row := range rows {
		day, err := row.Text("th")
		if err != nil || day == "" {
			continue
		}
		slotText, err := row.Text("td")
		if err != nil || slotText == "" {
			continue
		}
		hours[day] = splitSlots(slotText)
	}
	return hours
}

// popularTimes parses the per-day busyness bars from their percentage-bearing
// accessibility labels. Days with no discoverable data are absent, not
// zero-filled.
func (a *Adapter) popularTimes(page crawler.PageQuery) map[string][]int {
	days, err := page.Each(popularDaySelector)
	if err != nil {
		return nil
	}
	popular := make(map[string][]int)
	for i, day := range days {
		if i >= len(weekdayNames) {
			break
		}
		labels, err := day.Labels(popularHourSelector)
		if err != nil {
			continue
		}
		loads := make([]int, 0, len(labels))
		for _, label := range labels {
			pct, _ := ParsePercent(label)
			loads = append(loads, pct)
		}
		if len(loads) > 0 {
			popular[weekdayNames[i]] = loads
		}
	}
	return popular
}

// Reviews extracts the visible review list. Reviews lacking both author and
// rating are discarded.
func (a *Adapter) Reviews(page crawler.PageQuery) []crawler.Review {
	nodes, err := page.Each(reviewNodeSelector)
	if err != nil {
		return nil
	}
	reviews := make([]crawler.Review, 0, len(nodes))
	for _, node := range nodes {
		review := a.review(node)
		if !review.Valid() {
			continue
		}
		reviews = append(reviews, review)
	}
	if len(reviews) == 0 {
		return nil
	}
	return reviews
}

func (a *Adapter) review(node crawler.PageQuery) crawler.Review {
	review := crawler.Review{CreatedAt: a.clock.Now()}

	if author, err := node.Text("div.d4r55"); err == nil {
		review.Author = author
	}
	if authorLink, err := node.Attribute("div.d4r55 a", "href"); err == nil {
		review.AuthorLink = authorLink
	}
	if label, err := node.Label("span.kvMYJc"); err == nil {
		review.Rating = ParseStars(label)
	}

	// Expand truncated text before reading it. Best effort; the collapsed
	// text is still worth keeping.
	if err := node.Click(`button[aria-label="More"]`); err != nil {
		a.logger.Debug("review expansion click failed", zap.Error(err))
	}
	if text, err := node.Text("span.wiI7pd"); err == nil {
		review.Text = text
	}
	if when, err := node.Text("span.rsqaWe"); err == nil {
		review.Time = when
	}
	if label, err := node.Label(`button[aria-label*="like"]`); err == nil {
		review.LikeCount = ParseCount(label)
	}
	if label, err := node.Label(`button[aria-label*="repl"]`); err == nil {
		review.ReplyCount = ParseCount(label)
	}
	if photos, err := node.Attributes(`button[jsaction*="reviewPhoto"] img`, "src"); err == nil && len(photos) > 0 {
		review.Photos = photos
	}
	return review
}

// deriveID prefers the platform's own identifier; otherwise the ID is a
// deterministic hash over name+address, making it a pure function of content.
func (a *Adapter) deriveID(venue crawler.Venue) (string, error) {
	if venue.Cid != "" {
		return venue.Cid, nil
	}
	sum, err := a.hasher.Hash([]byte(venue.Name + venue.Address))
	if err != nil {
		return "", fmt.Errorf("hash name+address: %w", err)
	}
	return sum, nil
}

func clampRating(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}

// splitSlots splits a day's "11 am–3 pm, 5–10 pm" cell into trimmed ranges.
func splitSlots(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
