package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"

	appLog "cleancal/internal/log"
)

// Subscription is one ICS feed the user subscribed to.
type Subscription struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// cacheMeta is what we remember about the last good response of a feed.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// fetcher downloads feeds with conditional requests. The last good body of
// each feed is kept in a diskv store and served when the server says 304 or the
// network is down.
type fetcher struct {
	client *http.Client
	cache  *diskv.Diskv
}

func newFetcher(client *http.Client, cacheDir string) *fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &fetcher{client: client, cache: newCache(cacheDir)}
}

// fetch returns the feed body and whether it came from the disk cache.
func (f *fetcher) fetch(ctx context.Context, sub Subscription) ([]byte, bool, error) {
	if sub.URL == "" {
		return nil, false, fmt.Errorf("subscription %q: empty url", sub.ID)
	}

	key := cacheKey(sub.URL)
	meta, cached := f.readCache(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sub.URL, nil)
	if err != nil {
		return nil, false, err
	}
	if len(cached) > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	appLog.Debug("ics fetch start", "id", sub.ID, "url", redactURL(sub.URL))

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cached) > 0 {
			appLog.Warn("ics fetch failed, using cached feed", "id", sub.ID, "url", redactURL(sub.URL), "err", err)
			return cached, true, nil
		}
		return nil, false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, false, err
		}
		meta := cacheMeta{
			URL:          sub.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := f.writeCache(key, meta, body); err != nil {
			appLog.Error("ics cache write failed", err, "id", sub.ID)
		}
		appLog.Info("ics fetched", "id", sub.ID, "url", redactURL(sub.URL), "bytes", len(body))
		return body, false, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return nil, false, errors.New("304 Not Modified without a cached feed")
		}
		appLog.Debug("ics not modified", "id", sub.ID)
		return cached, true, nil
	}

	if len(cached) > 0 {
		appLog.Warn("ics fetch non-OK, using cached feed", "id", sub.ID, "url", redactURL(sub.URL), "status", resp.StatusCode)
		return cached, true, nil
	}
	return nil, false, fmt.Errorf("ics fetch %s: %s", redactURL(sub.URL), resp.Status)
}

// cacheKey is the diskv key prefix of a feed, a hash of its URL.
func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:8])
}

// newCache opens the feed cache under dir; keys "<hash>-<part>" are stored as
// dir/<hash>/<part>. An empty dir disables the cache.
func newCache(dir string) *diskv.Diskv {
	if dir == "" {
		return nil
	}
	return diskv.New(diskv.Options{
		BasePath:          dir,
		AdvancedTransform: keyToPath,
		InverseTransform:  pathToKey,
		PathPerm:          0o700,
		FilePerm:          0o600,
		CacheSizeMax:      4 << 20,
	})
}

func keyToPath(key string) *diskv.PathKey {
	hash, part, _ := strings.Cut(key, "-")
	return &diskv.PathKey{Path: []string{hash}, FileName: part}
}

func pathToKey(pk *diskv.PathKey) string {
	return strings.Join(pk.Path, "") + "-" + pk.FileName
}

func (f *fetcher) readCache(key string) (cacheMeta, []byte) {
	var meta cacheMeta
	if f.cache == nil {
		return meta, nil
	}
	if data, err := f.cache.Read(key + "-meta"); err == nil {
		_ = json.Unmarshal(data, &meta)
	}
	body, _ := f.cache.Read(key + "-body")
	return meta, body
}

func (f *fetcher) writeCache(key string, meta cacheMeta, body []byte) error {
	if f.cache == nil {
		return nil
	}
	// Body first so the metadata never describes a missing body.
	if err := f.cache.Write(key+"-body", body); err != nil {
		return err
	}
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return f.cache.Write(key+"-meta", data)
}

// redactURL keeps scheme and host only; feed URLs usually embed a secret
// token in the path or query.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
