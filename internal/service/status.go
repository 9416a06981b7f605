package service

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"mc-console-api/internal/model"
)

// AccountLister supplies the current account list to the status checker.
type AccountLister interface {
	Accounts() []model.Account
}

// ReconcileFunc receives every probe outcome, success or failure. It is
// responsible for writing the online flag and check time back into the
// store and for retaining the result for diagnostics.
type ReconcileFunc func(result model.StatusResult)

// StatusCheckerConfig holds configuration for the status checker.
type StatusCheckerConfig struct {
	// LookupURL is the base URL the username is appended to.
	LookupURL string

	// APIKey, when non-empty, is sent as the Authorization header.
	APIKey string

	// PollInterval is the cycle period. Default: 10 seconds.
	PollInterval time.Duration

	// ProbeTimeout bounds each probe request. Default: 12 seconds, kept
	// below the poll interval so probes cannot pile up unboundedly.
	ProbeTimeout time.Duration
}

// StatusChecker periodically probes the lookup endpoint for every account
// that has a username and reduces each outcome to a StatusResult. Probes
// within a cycle run concurrently with no ordering guarantee. An account
// with a probe still in flight is skipped until it completes, so a slow
// endpoint never accumulates duplicate requests for the same account.
//
// A probe never surfaces an error to the caller: HTTP failures become
// non-200 statuses, transport failures become status 0 with the failure
// message captured.
type StatusChecker struct {
	accounts  AccountLister
	onResult  ReconcileFunc
	client    *http.Client
	config    StatusCheckerConfig
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewStatusChecker creates a new status checker.
func NewStatusChecker(accounts AccountLister, config StatusCheckerConfig, onResult ReconcileFunc) *StatusChecker {
	if config.PollInterval == 0 {
		config.PollInterval = 10 * time.Second
	}
	if config.ProbeTimeout == 0 {
		config.ProbeTimeout = 12 * time.Second
	}

	return &StatusChecker{
		accounts: accounts,
		onResult: onResult,
		client:   &http.Client{Timeout: config.ProbeTimeout},
		config:   config,
		stopCh:   make(chan struct{}),
		inFlight: make(map[string]bool),
	}
}

// Start begins the polling loop with an immediate first cycle.
func (c *StatusChecker) Start() {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return
	}
	c.isRunning = true
	c.ticker = time.NewTicker(c.config.PollInterval)
	c.mu.Unlock()

	log.Printf("[StatusChecker] Started - Interval: %v, Lookup: %s",
		c.config.PollInterval, c.config.LookupURL)

	go c.CheckAll()
	go c.run()
}

// run is the main polling loop.
func (c *StatusChecker) run() {
	for {
		select {
		case <-c.ticker.C:
			c.CheckAll()
		case <-c.stopCh:
			log.Printf("[StatusChecker] Stopped")
			return
		}
	}
}

// Stop cancels the polling timer. In-flight probes are not aborted; their
// results are simply the last ones delivered.
func (c *StatusChecker) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.ticker != nil {
			c.ticker.Stop()
		}
		close(c.stopCh)
		c.isRunning = false
	})
}

// CheckAll runs one probe cycle: one concurrent probe per account with a
// non-empty username, skipping accounts whose previous probe is still in
// flight.
func (c *StatusChecker) CheckAll() {
	for _, account := range c.accounts.Accounts() {
		if account.Username == "" {
			continue
		}

		c.mu.Lock()
		if c.inFlight[account.ID] {
			c.mu.Unlock()
			continue
		}
		c.inFlight[account.ID] = true
		c.mu.Unlock()

		go func(acc model.Account) {
			result := c.CheckAccount(context.Background(), acc)

			c.mu.Lock()
			delete(c.inFlight, acc.ID)
			c.mu.Unlock()

			c.onResult(result)
		}(account)
	}
}

// CheckAccount issues a single liveness probe for the account and reduces
// the outcome to a StatusResult. It never returns an error.
func (c *StatusChecker) CheckAccount(ctx context.Context, account model.Account) model.StatusResult {
	requestURL := c.config.LookupURL + url.PathEscape(account.Username)
	requestHeaders := map[string]string{}
	if c.config.APIKey != "" {
		requestHeaders["Authorization"] = c.config.APIKey
	}

	result := model.StatusResult{
		AccountID: account.ID,
		Request: model.StatusRequest{
			URL:     requestURL,
			Headers: requestHeaders,
		},
		Timestamp: time.Now().UTC(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	for k, v := range requestHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Transport failure: no response at all, status stays 0.
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	result.IsOnline = resp.StatusCode == http.StatusOK
	result.Response = readProbeBody(resp.Body)

	return result
}

// readProbeBody parses the response body as JSON if possible, falls back to
// the raw text, and gives up with nil if the body is unreadable.
func readProbeBody(body io.Reader) any {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err == nil {
		return parsed
	}
	return string(data)
}

// StatusLog retains the most recent probe result per account for the
// console's diagnostic view. The checker itself keeps no history.
type StatusLog struct {
	mu      sync.RWMutex
	results map[string]model.StatusResult
}

// NewStatusLog creates an empty status log.
func NewStatusLog() *StatusLog {
	return &StatusLog{results: make(map[string]model.StatusResult)}
}

// Record stores the latest result for its account.
func (l *StatusLog) Record(result model.StatusResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results[result.AccountID] = result
}

// Latest returns the most recent result for an account, if any.
func (l *StatusLog) Latest(accountID string) (model.StatusResult, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result, ok := l.results[accountID]
	return result, ok
}

// Forget drops the retained result for an account, e.g. after deletion.
func (l *StatusLog) Forget(accountID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.results, accountID)
}
