package constants

import (
	"time"
)

// Pagination limits for list endpoints
const (
	// PageMaxSize - largest page the platform will return for any list endpoint (25 records)
	PageMaxSize = 25

	// DefaultListRecords - records shown by 'list' when neither --all nor --limit is given
	DefaultListRecords = 25

	// MaxListRecords - hard ceiling on records materialized by a single list invocation (1000)
	// --all and --limit are both clamped to this value
	MaxListRecords = 1000
)

// Access token handling
const (
	// TokenSecurityMargin - a token whose expiry falls within this margin is refreshed
	// before the next authenticated call (2 seconds)
	TokenSecurityMargin = 2 * time.Second

	// TokenSettleDelay - extra wait on top of the margin before asking for a new token,
	// so the issuer's clock has moved past the old token's expiry
	TokenSettleDelay = 1 * time.Second
)

// Rate limits (Commerce Layer API, non-cacheable endpoints)
const (
	// RequestsMaxNumBurst / RequestsMaxSecsBurst - burst window: 50 requests every 10 seconds
	RequestsMaxNumBurst  = 50
	RequestsMaxSecsBurst = 10

	// RequestsMaxNumAvg / RequestsMaxSecsAvg - average window: 200 requests every 60 seconds
	RequestsMaxNumAvg  = 200
	RequestsMaxSecsAvg = 60
)

// HTTP client timeouts
const (
	// HTTPDialTimeout - timeout for establishing TCP connections
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - TCP keep-alive interval
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPIdleConnTimeout - how long idle connections stay in the pool
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for the TLS handshake
	HTTPTLSHandshakeTimeout = 30 * time.Second

	// HTTPExpectContinueTimeout - timeout waiting for 100-continue
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPRequestTimeout - default overall timeout of a single API request
	HTTPRequestTimeout = 60 * time.Second
)

// Export status values reported by the platform
const (
	StatusPending     = "pending"
	StatusInProgress  = "in_progress"
	StatusCompleted   = "completed"
	StatusInterrupted = "interrupted"
)

// Default domain and application kinds accepted by the export commands
const (
	DefaultDomain = "commercelayer.io"

	// ApplicationKindIntegration and ApplicationKindCLI are the token application kinds
	// allowed to create and list exports
	ApplicationKindIntegration = "integration"
	ApplicationKindCLI         = "cli"
)
