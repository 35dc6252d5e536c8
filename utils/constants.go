package utils

import (
	"time"
)

// Token constants
const (
	// AccessTokenTTL is the time-to-live for admin access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for admin refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Quote constants
const (
	// QuoteValidity is how long a new quote stays valid (30 days)
	QuoteValidity = 30 * 24 * time.Hour

	// MoneyScale is the number of decimal places kept on stored prices
	MoneyScale = 2

	// DefaultPageSize and MaxPageSize bound list endpoints
	DefaultPageSize = 20
	MaxPageSize     = 100
)
