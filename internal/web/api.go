package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	appLog "cleancal/internal/log"
	"cleancal/internal/model"
	"cleancal/internal/pager"
	"cleancal/internal/prefs"
)

const maxBodyBytes = 1 << 16

type stateResponse struct {
	pager.State
	DefaultView model.ViewType   `json:"default_view"`
	Views       []model.ViewType `json:"views"`
	LastRefresh *time.Time       `json:"last_refresh,omitempty"`
}

type pageResponse struct {
	pager.Page
	GridCells int  `json:"grid_cells"`
	Current   bool `json:"current"`
}

func (s *Server) state(r *http.Request) stateResponse {
	resp := stateResponse{
		State:       s.ctrl.Snapshot(),
		DefaultView: model.DefaultViewType,
		Views:       model.ViewTypes(),
	}
	if s.prefs != nil {
		resp.DefaultView = prefs.DefaultView(r.Context(), s.prefs)
	}
	if s.refresher != nil {
		if t := s.refresher.LastRun(); !t.IsZero() {
			resp.LastRefresh = &t
		}
	}
	return resp
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state(r))
}

// pageParam resolves ?page=N (absolute) or ?offset=K (relative to the
// current page). Neither means the current page.
func (s *Server) pageParam(r *http.Request) (model.PageIndex, error) {
	q := r.URL.Query()
	current := s.ctrl.CurrentPage()

	if v := q.Get("page"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("page %q is not an integer", v)
		}
		return checkPage(model.PageIndex(n))
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("offset %q is not an integer", v)
		}
		return checkPage(current + model.PageIndex(n))
	}
	return current, nil
}

// checkPage rejects indexes off the page axis [0, PageCount).
func checkPage(idx model.PageIndex) (model.PageIndex, error) {
	if idx < 0 || idx >= model.PageCount {
		return 0, fmt.Errorf("page %d is outside [0, %d)", idx, model.PageCount)
	}
	return idx, nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	idx, err := s.pageParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := s.ctrl.Page(idx)
	writeJSON(w, http.StatusOK, pageResponse{
		Page:      p,
		GridCells: p.GridCells(),
		Current:   idx == s.ctrl.CurrentPage(),
	})
}

type viewRequest struct {
	View string `json:"view"`
}

// handleView switches the layout and stores it as the default view, the way
// picking a view in settings does.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := model.ParseViewType(req.View)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.ctrl.SwitchViewType(view)

	if s.prefs != nil {
		if err := prefs.SetDefaultView(r.Context(), s.prefs, view); err != nil {
			appLog.Error("store default view failed", err, "view", view)
			writeError(w, http.StatusInternalServerError, "failed to store default view")
			return
		}
		if s.refresher != nil {
			s.refresher.NoteDefaultView(view)
		}
	}
	writeJSON(w, http.StatusOK, s.state(r))
}

type scrollRequest struct {
	Page  *int64 `json:"page,omitempty"`
	Delta *int   `json:"delta,omitempty"`
	Date  string `json:"date,omitempty"`
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	set := 0
	for _, given := range []bool{req.Page != nil, req.Delta != nil, req.Date != ""} {
		if given {
			set++
		}
	}
	if set != 1 {
		writeError(w, http.StatusBadRequest, "exactly one of page, delta or date is required")
		return
	}

	switch {
	case req.Page != nil, req.Delta != nil:
		target := s.ctrl.CurrentPage()
		if req.Page != nil {
			target = model.PageIndex(*req.Page)
		} else {
			target += model.PageIndex(*req.Delta)
		}
		idx, err := checkPage(target)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.ctrl.ScrollTo(idx)
	default:
		d, err := model.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.ctrl.JumpTo(d)
	}
	writeJSON(w, http.StatusOK, s.state(r))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh not configured")
		return
	}
	// The refresh outlives a client that hangs up.
	if _, ran := s.refresher.RefreshNow(context.WithoutCancel(r.Context())); !ran {
		writeError(w, http.StatusConflict, "refresh already running")
		return
	}
	writeJSON(w, http.StatusOK, s.state(r))
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
