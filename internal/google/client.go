// Package google reads events from a Google Calendar with a read-only
// OAuth token stored on disk.
package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	appLog "cleancal/internal/log"
	"cleancal/internal/model"
)

// ErrNoToken means the user has not signed in yet (`cleancal login`).
var ErrNoToken = errors.New("google: not signed in")

const (
	defaultCalendarID = "primary"
	defaultSleep      = 5 * time.Second
	maxRetries        = 3
	untitled          = "No Title"
)

type Client struct {
	oauthCfg   *oauth2.Config
	tokenFile  string
	calendarID string
	loc        *time.Location

	endpoint   string
	retrySleep time.Duration
}

type Option func(*Client)

// WithEndpoint points the client at another API root, for tests.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

func WithRetrySleep(d time.Duration) Option {
	return func(c *Client) { c.retrySleep = d }
}

// NewClient builds a client from an OAuth client credentials file as
// downloaded from the Google Cloud console.
func NewClient(credJSON []byte, tokenFile, calendarID string, loc *time.Location, opts ...Option) (*Client, error) {
	cfg, err := google.ConfigFromJSON(credJSON, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("google: parsing credentials file: %w", err)
	}
	if calendarID == "" {
		calendarID = defaultCalendarID
	}
	if loc == nil {
		loc = time.Local
	}
	c := &Client{
		oauthCfg:   cfg,
		tokenFile:  tokenFile,
		calendarID: calendarID,
		loc:        loc,
		retrySleep: defaultSleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SignedIn reports whether a token is stored.
func (c *Client) SignedIn() bool {
	_, err := c.loadToken()
	return err == nil
}

// FetchEvents lists the single (expanded) events of the calendar in
// [start, end], ordered by start time.
func (c *Client) FetchEvents(ctx context.Context, start, end time.Time) ([]model.CalendarEvent, error) {
	svc, err := c.calendarSvc(ctx)
	if err != nil {
		return nil, err
	}

	call := svc.Events.List(c.calendarID).
		Context(ctx).
		ShowDeleted(false).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339))

	var (
		out       []model.CalendarEvent
		pageToken string
		retries   int
	)
	for {
		res, err := call.PageToken(pageToken).Do()
		if err != nil {
			if shouldRetry(err) && retries < maxRetries {
				retries++
				appLog.Warn("google rate limited, retrying", "attempt", retries)
				if err := sleep(ctx, c.retrySleep); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("google: listing events: %w", err)
		}
		retries = 0

		for _, item := range res.Items {
			if ev, ok := c.newEvent(item); ok {
				out = append(out, ev)
			}
		}
		pageToken = res.NextPageToken
		if pageToken == "" {
			break
		}
	}

	appLog.Debug("google events listed", "calendar", c.calendarID, "count", len(out))
	return out, nil
}

func (c *Client) newEvent(item *calendar.Event) (model.CalendarEvent, bool) {
	if item.Status == "cancelled" || item.Start == nil {
		return model.CalendarEvent{}, false
	}

	start, allDay, err := c.parseDateTime(item.Start)
	if err != nil {
		appLog.Warn("google event skipped", "id", item.Id, "err", err)
		return model.CalendarEvent{}, false
	}
	end := start
	if item.End != nil {
		if t, _, err := c.parseDateTime(item.End); err == nil {
			end = t
		}
	}
	// All-day ends are exclusive dates.
	if allDay && end.After(start) {
		end = end.Add(-time.Minute)
	}

	title := item.Summary
	if title == "" {
		title = untitled
	}
	return model.NewEvent(item.Id, title, start, end, model.CategoryForTitle(title), item.Description), true
}

// parseDateTime reads either a timed value or an all-day date, which is
// placed at midnight in the display location.
func (c *Client) parseDateTime(dt *calendar.EventDateTime) (time.Time, bool, error) {
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, false, err
		}
		return t.In(c.loc), false, nil
	}
	if dt.Date != "" {
		t, err := time.ParseInLocation(time.DateOnly, dt.Date, c.loc)
		return t, true, err
	}
	return time.Time{}, false, errors.New("event without date")
}

func (c *Client) calendarSvc(ctx context.Context) (*calendar.Service, error) {
	tok, err := c.loadToken()
	if err != nil {
		return nil, err
	}
	opts := []option.ClientOption{option.WithHTTPClient(c.oauthCfg.Client(ctx, tok))}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	return calendar.NewService(ctx, opts...)
}

func (c *Client) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.tokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("google: reading token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("google: decoding token: %w", err)
	}
	return &tok, nil
}

func (c *Client) saveToken(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.tokenFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.tokenFile, data, 0o600)
}

// Login runs the consent flow: it prints the consent URL to out, waits for
// the redirect on a local callback server at addr and stores the token.
func (c *Client) Login(ctx context.Context, addr string, out io.Writer) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("google: callback listener: %w", err)
	}
	c.oauthCfg.RedirectURL = "http://" + ln.Addr().String() + "/callback"

	state := randomState()
	authURL := c.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(out, "\nGo to the following link in your browser\n%s\n", authURL)

	var (
		tok     *oauth2.Token
		authErr error
		once    sync.Once
		done    = make(chan struct{})
	)
	mux := http.NewServeMux()
	server := &http.Server{Handler: mux}
	mux.HandleFunc("/callback", func(w http.ResponseWriter, req *http.Request) {
		handled := false
		once.Do(func() {
			handled = true
			defer close(done)

			query := req.URL.Query()
			if query.Get("state") != state {
				authErr = errors.New("oauth link is not valid")
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			tok, authErr = c.oauthCfg.Exchange(req.Context(), query.Get("code"))
			if authErr != nil {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprintln(w, "Unable to retrieve token:", authErr)
				return
			}
			fmt.Fprintln(w, "All good, you can close this window!")
		})
		if !handled {
			http.Error(w, "sign-in already handled", http.StatusGone)
		}
	})

	go server.Serve(ln)
	defer server.Shutdown(context.Background())

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}
	if authErr != nil {
		return authErr
	}
	if err := c.saveToken(tok); err != nil {
		return fmt.Errorf("google: saving token: %w", err)
	}
	appLog.Info("google sign-in stored", "token_file", c.tokenFile)
	return nil
}

func randomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return "cleancal-" + hex.EncodeToString(b)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func shouldRetry(err error) bool {
	return errIsReason(err, "rateLimitExceeded")
}

func errIsReason(err error, reason string) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}
	for _, e := range gErr.Errors {
		if e.Reason == reason {
			return true
		}
	}
	return false
}
