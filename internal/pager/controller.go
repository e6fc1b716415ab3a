package pager

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"cleancal/internal/events"
	appLog "cleancal/internal/log"
	"cleancal/internal/model"
)

// SwitchPolicy decides which page becomes current after a view switch.
type SwitchPolicy int

const (
	// ReAnchor jumps back to the start page, i.e. the window holding the
	// anchor date, whatever was scrolled to before.
	ReAnchor SwitchPolicy = iota

	// PreserveVisibleDate keeps the first day of the visible window on
	// screen under the new view.
	PreserveVisibleDate
)

func (p SwitchPolicy) String() string {
	if p == PreserveVisibleDate {
		return "preserve"
	}
	return "reanchor"
}

func ParseSwitchPolicy(s string) (SwitchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reanchor":
		return ReAnchor, nil
	case "preserve":
		return PreserveVisibleDate, nil
	}
	return ReAnchor, fmt.Errorf("unknown switch policy %q", s)
}

// maxMaterialized bounds the page cache; older pages are dropped and laid
// out again on demand.
const maxMaterialized = 32

// Controller owns the mutable paging state: the active view, the current page
// and the event store. Layout itself stays in the pure functions above.
type Controller struct {
	anchor model.Date
	policy SwitchPolicy
	store  *events.Holder

	mu       sync.Mutex
	view     model.ViewType
	page     model.PageIndex
	pages    map[model.PageIndex]Page
	pagesGen *events.Store // store the cached pages were laid out from
}

type Option func(*Controller)

func WithSwitchPolicy(p SwitchPolicy) Option {
	return func(c *Controller) { c.policy = p }
}

func WithStore(s *events.Store) Option {
	return func(c *Controller) { c.store.Swap(s) }
}

// New starts a session anchored on anchor (normally today) at the start page.
func New(anchor model.Date, view model.ViewType, opts ...Option) *Controller {
	if !view.Valid() {
		view = model.DefaultViewType
	}
	c := &Controller{
		anchor: anchor,
		policy: ReAnchor,
		store:  events.NewHolder(events.Empty()),
		view:   view,
		page:   model.CenterIndex,
		pages:  make(map[model.PageIndex]Page),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartPage is the page whose window contains the anchor date.
func (c *Controller) StartPage() model.PageIndex {
	return model.CenterIndex
}

// PageCount is the size of the virtual axis.
func (c *Controller) PageCount() model.PageIndex {
	return model.PageCount
}

func (c *Controller) Anchor() model.Date {
	return c.anchor
}

func (c *Controller) Policy() SwitchPolicy {
	return c.policy
}

func (c *Controller) ViewType() model.ViewType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) CurrentPage() model.PageIndex {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Store returns the event store currently in use.
func (c *Controller) Store() *events.Store {
	return c.store.Load()
}

// ScrollTo makes page current.
func (c *Controller) ScrollTo(page model.PageIndex) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = page
}

// Scroll moves the current page by delta and returns the new page.
func (c *Controller) Scroll(delta int) model.PageIndex {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page += model.PageIndex(delta)
	return c.page
}

// JumpTo makes the page containing d current.
func (c *Controller) JumpTo(d model.Date) model.PageIndex {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = PageFor(c.view, d, c.anchor)
	return c.page
}

// SwitchViewType changes the layout. Switching to the active view does
// nothing. Otherwise the current page is recomputed under the policy and
// every materialized page is dropped.
func (c *Controller) SwitchViewType(view model.ViewType) {
	if !view.Valid() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if view == c.view {
		return
	}

	visible := WindowFor(c.view, c.page, c.anchor).Start
	prevView, prevPage := c.view, c.page

	switch c.policy {
	case PreserveVisibleDate:
		c.page = PageFor(view, visible, c.anchor)
	default:
		c.page = c.StartPage()
	}
	c.view = view
	c.pages = make(map[model.PageIndex]Page)

	appLog.Debug("view switched",
		"from", prevView,
		"to", view,
		"from_page", prevPage,
		"to_page", c.page,
		"visible", visible,
		"policy", c.policy,
	)
}

// UpdateEvents installs a new store. View and current page stay as they
// are; every materialized page is laid out again from the new store.
func (c *Controller) UpdateEvents(s *events.Store) {
	c.store.Swap(s)

	c.mu.Lock()
	c.pages = make(map[model.PageIndex]Page)
	c.mu.Unlock()

	appLog.Debug("events updated", "count", s.Len(), "origin", s.Origin())
}

// Page returns the laid-out page at index under the current view. The
// returned cells are shared with the cache and must not be modified.
func (c *Controller) Page(index model.PageIndex) Page {
	store := c.store.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pagesGen != store {
		c.pages = make(map[model.PageIndex]Page)
		c.pagesGen = store
	}
	if p, ok := c.pages[index]; ok && p.View == c.view {
		return p
	}

	p := Build(c.view, index, c.anchor, store)
	c.evictLocked()
	c.pages[index] = p
	return p
}

// CurrentPageLayout is Page(CurrentPage()).
func (c *Controller) CurrentPageLayout() Page {
	return c.Page(c.CurrentPage())
}

// evictLocked keeps the cache near the current page.
func (c *Controller) evictLocked() {
	if len(c.pages) < maxMaterialized {
		return
	}
	for idx := range c.pages {
		d := idx - c.page
		if d < -maxMaterialized/4 || d > maxMaterialized/4 {
			delete(c.pages, idx)
		}
	}
	if len(c.pages) >= maxMaterialized {
		c.pages = make(map[model.PageIndex]Page)
	}
}

// materialized reports the cached page indexes.
func (c *Controller) materialized() []model.PageIndex {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.PageIndex, 0, len(c.pages))
	for idx := range c.pages {
		out = append(out, idx)
	}
	return out
}

// State is a point-in-time summary of the controller.
type State struct {
	View       model.ViewType   `json:"view"`
	Page       model.PageIndex  `json:"page"`
	StartPage  model.PageIndex  `json:"start_page"`
	PageCount  model.PageIndex  `json:"page_count"`
	Anchor     model.Date       `json:"anchor"`
	Window     model.DateWindow `json:"window"`
	Policy     string           `json:"switch_policy"`
	Origin     events.Origin    `json:"origin"`
	EventCount int              `json:"event_count"`
	LoadedAt   time.Time        `json:"loaded_at"`
}

func (c *Controller) Snapshot() State {
	store := c.store.Load()

	c.mu.Lock()
	view, page := c.view, c.page
	c.mu.Unlock()

	return State{
		View:       view,
		Page:       page,
		StartPage:  c.StartPage(),
		PageCount:  c.PageCount(),
		Anchor:     c.anchor,
		Window:     WindowFor(view, page, c.anchor),
		Policy:     c.policy.String(),
		Origin:     store.Origin(),
		EventCount: store.Len(),
		LoadedAt:   store.LoadedAt(),
	}
}
