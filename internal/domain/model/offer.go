package model

import (
	"sort"
	"time"
)

// FreeGame is a promotion with a zero discount percentage, claimable right now.
type FreeGame struct {
	Title string
	Start time.Time
	End   time.Time
}

// UpcomingGame is a promotion scheduled to start in the future.
type UpcomingGame struct {
	Title string
	Start time.Time
	End   time.Time
}

// Offers is one normalized snapshot of the storefront promotions.
type Offers struct {
	FreeNow    []FreeGame
	ComingSoon []UpcomingGame
	FetchedAt  time.Time
}

// FreeTitles returns the free-now titles in storefront order.
func (o *Offers) FreeTitles() []string {
	if o == nil {
		return nil
	}
	titles := make([]string, 0, len(o.FreeNow))
	for _, g := range o.FreeNow {
		titles = append(titles, g.Title)
	}
	return titles
}

// FreeByTitle looks up a free-now offer by title.
func (o *Offers) FreeByTitle(title string) (FreeGame, bool) {
	if o == nil {
		return FreeGame{}, false
	}
	for _, g := range o.FreeNow {
		if g.Title == title {
			return g, true
		}
	}
	return FreeGame{}, false
}

// IsEmpty reports whether there is nothing to show.
func (o *Offers) IsEmpty() bool {
	return o == nil || (len(o.FreeNow) == 0 && len(o.ComingSoon) == 0)
}

// SortComingSoon orders upcoming offers by start time, keeping storefront order for ties.
func (o *Offers) SortComingSoon() {
	sort.SliceStable(o.ComingSoon, func(i, j int) bool {
		return o.ComingSoon[i].Start.Before(o.ComingSoon[j].Start)
	})
}
