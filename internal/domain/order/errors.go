package order

import "errors"

var (
	// ErrNoWebsites indicates none of the configured storefronts exist on the ERP.
	ErrNoWebsites = errors.New("no websites found")

	// ErrInvalidQuery indicates an unusable dashboard filter or page.
	ErrInvalidQuery = errors.New("invalid dashboard query")
)
