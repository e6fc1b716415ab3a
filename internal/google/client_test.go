package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"cleancal/internal/model"
)

const credentials = `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"secret",
"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token",
"redirect_uris":["http://localhost"]}}`

func writeToken(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token.json")
	data, err := json.Marshal(&oauth2.Token{
		AccessToken: "test-token",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestClient(t *testing.T, tokenFile string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient([]byte(credentials), tokenFile, "", time.UTC,
		WithEndpoint(srv.URL+"/"),
		WithRetrySleep(time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

var (
	from = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	to   = time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)
)

func TestFetchEvents(t *testing.T) {
	var query atomic.Value
	c := newTestClient(t, writeToken(t), func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/calendars/primary/events") {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			http.Error(w, "bad auth "+got, http.StatusUnauthorized)
			return
		}
		query.Store(r.URL.Query())

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			w.Write([]byte(`{"items":[
				{"id":"a","summary":"Team Meeting","start":{"dateTime":"2024-03-15T09:00:00Z"},"end":{"dateTime":"2024-03-15T10:00:00Z"}},
				{"id":"b","status":"cancelled","summary":"Dropped","start":{"dateTime":"2024-03-15T11:00:00Z"}}
			],"nextPageToken":"p2"}`))
			return
		}
		w.Write([]byte(`{"items":[
			{"id":"c","summary":"Sam's Birthday","start":{"date":"2024-03-20"},"end":{"date":"2024-03-21"}},
			{"id":"d","start":{"dateTime":"2024-03-22T18:00:00+01:00"},"end":{"dateTime":"2024-03-22T19:00:00+01:00"}}
		]}`))
	})

	list, err := c.FetchEvents(context.Background(), from, to)
	if err != nil {
		t.Fatalf("FetchEvents: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d events: %+v", len(list), list)
	}

	q := query.Load().(url.Values)
	if q.Get("singleEvents") != "true" || q.Get("orderBy") != "startTime" {
		t.Errorf("query = %v", q)
	}

	meeting, bday, untitledEv := list[0], list[1], list[2]
	if meeting.Category != model.Work || meeting.Start.Hour() != 9 {
		t.Errorf("meeting = %+v", meeting)
	}
	if bday.Category != model.Birthday || !bday.StartDate().Equal(model.NewDate(2024, time.March, 20)) {
		t.Errorf("birthday = %+v", bday)
	}
	if !bday.End.Before(time.Date(2024, time.March, 21, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("all-day end spills into the next day: %v", bday.End)
	}
	if untitledEv.Title != "No Title" || untitledEv.Start.Hour() != 17 {
		t.Errorf("untitled = %+v", untitledEv)
	}
}

func TestFetchEventsRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, writeToken(t), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":403,"message":"slow down","errors":[{"reason":"rateLimitExceeded","message":"slow down"}]}}`))
			return
		}
		w.Write([]byte(`{"items":[{"id":"a","summary":"Gym","start":{"dateTime":"2024-03-12T18:00:00Z"},"end":{"dateTime":"2024-03-12T19:00:00Z"}}]}`))
	})

	list, err := c.FetchEvents(context.Background(), from, to)
	if err != nil {
		t.Fatalf("FetchEvents: %v", err)
	}
	if len(list) != 1 || calls.Load() != 2 {
		t.Fatalf("events %d, calls %d", len(list), calls.Load())
	}
}

func TestFetchEventsWithoutToken(t *testing.T) {
	c := newTestClient(t, filepath.Join(t.TempDir(), "missing.json"), func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a token")
	})
	if c.SignedIn() {
		t.Fatal("SignedIn without token file")
	}
	if _, err := c.FetchEvents(context.Background(), from, to); !errors.Is(err, ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}
}

func TestFetchEventsServerError(t *testing.T) {
	c := newTestClient(t, writeToken(t), func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	})
	if _, err := c.FetchEvents(context.Background(), from, to); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewClientRejectsBadCredentials(t *testing.T) {
	if _, err := NewClient([]byte("{}"), "", "", nil); err == nil {
		t.Fatal("expected error")
	}
}
