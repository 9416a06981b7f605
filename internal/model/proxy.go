package model

// Proxy is a named network egress record accounts can be bound to.
// AccountCount is informational only: it is initialized to zero at creation
// and never maintained afterwards. Callers that need the real occupancy must
// ask the store, which recomputes it from the live account list.
type Proxy struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	AccountCount int    `json:"accountCount"`
}

// MaxAccountsPerProxy is the occupancy cap enforced by callers before an
// assignment. The store itself does not reject over-capacity assigns.
const MaxAccountsPerProxy = 5
