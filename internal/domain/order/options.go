package order

import (
	"time"

	"github.com/ganot/shipdash/internal/domain/workclock"
)

// DefaultWebsites are the storefronts fetched when none are configured.
var DefaultWebsites = []string{"Pure Form", "Limit-X Nutrition", "APX Energy"}

const (
	// DefaultLocalCity decides local versus exterior delivery.
	DefaultLocalCity = "Tijuana"
	// DefaultPerPage is the dashboard page size.
	DefaultPerPage = 4
)

// Options configures the fetch pipeline.
type Options struct {
	Websites  []string
	LocalCity string
	PerPage   int
	// Now defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if len(o.Websites) == 0 {
		o.Websites = DefaultWebsites
	}
	if o.LocalCity == "" {
		o.LocalCity = DefaultLocalCity
	}
	if o.PerPage <= 0 {
		o.PerPage = DefaultPerPage
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Query selects part of the dashboard. Zero values match everything.
type Query struct {
	Status  workclock.Status
	Website string
	Page    int
}
