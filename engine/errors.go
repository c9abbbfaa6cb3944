package engine

import "errors"

// Structural failure kinds surfaced to the caller. The boundary layer maps
// these to transport responses; messages stay generic and never carry
// upstream diagnostic detail.
var (
	ErrInvalidRequest        = errors.New("invalid analysis request")
	ErrUpstreamUnavailable   = errors.New("upstream unavailable")
	ErrMalformedEnrichedData = errors.New("malformed enriched social data")
)
