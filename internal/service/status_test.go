package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"mc-console-api/internal/model"
)

// listerFunc adapts a function to the AccountLister interface.
type listerFunc func() []model.Account

func (f listerFunc) Accounts() []model.Account { return f() }

func staticLister(accounts ...model.Account) AccountLister {
	return listerFunc(func() []model.Account { return accounts })
}

func TestCheckAccountOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"online":true,"server":"hub-1"}`))
	}))
	defer srv.Close()

	checker := NewStatusChecker(staticLister(), StatusCheckerConfig{
		LookupURL: srv.URL + "/v1/lookup/",
	}, func(model.StatusResult) {})

	result := checker.CheckAccount(context.Background(), model.Account{ID: "a1", Username: "Steve"})

	if result.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", result.Status)
	}
	if !result.IsOnline {
		t.Fatal("a 200 response means online")
	}
	if result.Error != "" {
		t.Fatalf("unexpected error: %q", result.Error)
	}
	body, ok := result.Response.(map[string]any)
	if !ok {
		t.Fatalf("response = %T, want parsed JSON object", result.Response)
	}
	if body["server"] != "hub-1" {
		t.Fatalf("response body = %v", body)
	}
	if result.Request.URL != srv.URL+"/v1/lookup/Steve" {
		t.Fatalf("request url = %q", result.Request.URL)
	}
}

func TestCheckAccountNon200IsOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "player not found", http.StatusNotFound)
	}))
	defer srv.Close()

	checker := NewStatusChecker(staticLister(), StatusCheckerConfig{
		LookupURL: srv.URL + "/v1/lookup/",
	}, func(model.StatusResult) {})

	result := checker.CheckAccount(context.Background(), model.Account{ID: "a1", Username: "Ghost"})

	if result.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", result.Status)
	}
	if result.IsOnline {
		t.Fatal("any non-200 status means offline")
	}
	if body, ok := result.Response.(string); !ok || body == "" {
		t.Fatalf("non-JSON body should be retained as raw text, got %#v", result.Response)
	}
}

func TestCheckAccountTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	checker := NewStatusChecker(staticLister(), StatusCheckerConfig{
		LookupURL: srv.URL + "/v1/lookup/",
	}, func(model.StatusResult) {})

	result := checker.CheckAccount(context.Background(), model.Account{ID: "a1", Username: "Steve"})

	if result.Status != 0 {
		t.Fatalf("status = %d, want 0 on transport failure", result.Status)
	}
	if result.IsOnline {
		t.Fatal("a failed probe means offline")
	}
	if result.Error == "" {
		t.Fatal("transport failures must capture the error message")
	}
}

func TestCheckAccountEscapesUsername(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
	}))
	defer srv.Close()

	checker := NewStatusChecker(staticLister(), StatusCheckerConfig{
		LookupURL: srv.URL + "/v1/lookup/",
	}, func(model.StatusResult) {})

	checker.CheckAccount(context.Background(), model.Account{ID: "a1", Username: "name with/slash"})

	if gotPath != "/v1/lookup/name%20with%2Fslash" {
		t.Fatalf("escaped path = %q", gotPath)
	}
}

func TestCheckAccountAuthorizationHeader(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	withKey := NewStatusChecker(staticLister(), StatusCheckerConfig{
		LookupURL: srv.URL + "/",
		APIKey:    "secret-key",
	}, func(model.StatusResult) {})
	result := withKey.CheckAccount(context.Background(), model.Account{ID: "a1", Username: "Steve"})
	if gotAuth.Load() != "secret-key" {
		t.Fatalf("Authorization = %v, want the configured key", gotAuth.Load())
	}
	if result.Request.Headers["Authorization"] != "secret-key" {
		t.Fatal("sent headers must be echoed in the result")
	}

	withoutKey := NewStatusChecker(staticLister(), StatusCheckerConfig{
		LookupURL: srv.URL + "/",
	}, func(model.StatusResult) {})
	result = withoutKey.CheckAccount(context.Background(), model.Account{ID: "a1", Username: "Steve"})
	if gotAuth.Load() != "" {
		t.Fatal("no Authorization header without a configured key")
	}
	if len(result.Request.Headers) != 0 {
		t.Fatalf("headers = %v, want none", result.Request.Headers)
	}
}

func TestCheckAllProbesEveryNamedAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	lister := staticLister(
		model.Account{ID: "a1", Username: "one"},
		model.Account{ID: "a2", Username: ""},
		model.Account{ID: "a3", Username: "three"},
	)

	results := make(chan model.StatusResult, 3)
	checker := NewStatusChecker(lister, StatusCheckerConfig{
		LookupURL: srv.URL + "/",
	}, func(result model.StatusResult) {
		results <- result
	})

	checker.CheckAll()

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case result := <-results:
			got[result.AccountID] = result.IsOnline
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for probe results")
		}
	}

	if !got["a1"] || !got["a3"] {
		t.Fatalf("results = %v, want a1 and a3 online", got)
	}

	select {
	case result := <-results:
		t.Fatalf("unexpected extra result for %s; accounts without a username are skipped", result.AccountID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCheckAllSkipsInFlightAccounts(t *testing.T) {
	release := make(chan struct{})
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release
	}))
	defer srv.Close()
	defer close(release)

	lister := staticLister(model.Account{ID: "a1", Username: "slow"})

	results := make(chan model.StatusResult, 2)
	checker := NewStatusChecker(lister, StatusCheckerConfig{
		LookupURL: srv.URL + "/",
	}, func(result model.StatusResult) {
		results <- result
	})

	checker.CheckAll()

	// Wait until the first probe is blocked inside the handler.
	deadline := time.Now().Add(5 * time.Second)
	for requests.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first probe never reached the server")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A second cycle while the probe is stuck must not issue another request.
	checker.CheckAll()
	time.Sleep(100 * time.Millisecond)
	if got := requests.Load(); got != 1 {
		t.Fatalf("requests = %d, want 1 while the first probe is in flight", got)
	}
}

func TestStatusLogRetainsLatestPerAccount(t *testing.T) {
	log := NewStatusLog()

	if _, ok := log.Latest("a1"); ok {
		t.Fatal("empty log must report no result")
	}

	log.Record(model.StatusResult{AccountID: "a1", Status: 404})
	log.Record(model.StatusResult{AccountID: "a1", Status: 200, IsOnline: true})
	log.Record(model.StatusResult{AccountID: "a2", Status: 0, Error: "dial refused"})

	latest, ok := log.Latest("a1")
	if !ok || latest.Status != 200 {
		t.Fatalf("latest for a1 = %+v, want the newer 200 result", latest)
	}

	log.Forget("a1")
	if _, ok := log.Latest("a1"); ok {
		t.Fatal("forgotten account must report no result")
	}
	if _, ok := log.Latest("a2"); !ok {
		t.Fatal("forgetting one account must not touch another")
	}
}

func TestStatusCheckerStopIsIdempotent(t *testing.T) {
	checker := NewStatusChecker(staticLister(), StatusCheckerConfig{
		LookupURL:    "http://127.0.0.1:0/",
		PollInterval: time.Hour,
	}, func(model.StatusResult) {})

	checker.Start()
	checker.Stop()
	checker.Stop()
}
