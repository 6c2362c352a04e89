package web

import (
	"net/http"

	"github.com/goccy/go-json"

	"moviematch/internal/logging"
)

// TitlesResponse is the /api/titles payload.
type TitlesResponse struct {
	Count  int      `json:"count"`
	Titles []string `json:"titles"`
}

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status         string `json:"status"`
	Titles         int    `json:"titles"`
	PostersEnabled bool   `json:"posters_enabled"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		Titles:         len(s.svc.Titles()),
		PostersEnabled: len(s.svc.StartupNotices()) == 0,
	})
}

func (s *Server) handleTitles(w http.ResponseWriter, r *http.Request) {
	titles := s.svc.Titles()
	s.writeJSON(w, http.StatusOK, TitlesResponse{Count: len(titles), Titles: titles})
}

// handleRecommendations answers with the service result. A blank selection
// is a 400 and an unknown title a 404; both still carry the result body.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	result := s.svc.Recommend(r.Context(), title)

	status := http.StatusOK
	switch {
	case result.NotFound:
		status = http.StatusNotFound
	case len(result.Items) == 0 && isBlank(title):
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, result)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	view := pageView{
		Theme:    normalizeTheme(query.Get("theme")),
		Titles:   s.svc.Titles(),
		Selected: query.Get("title"),
		Notices:  s.svc.StartupNotices(),
	}
	view.OtherTheme = otherTheme(view.Theme)

	css, notice := s.customStylesheet()
	view.CustomCSS = css
	if notice != nil {
		view.Notices = append(view.Notices, *notice)
	}

	if query.Has("title") {
		result := s.svc.Recommend(r.Context(), view.Selected)
		view.Result = &result
		view.Submitted = !isBlank(view.Selected)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.render(w, view); err != nil {
		logging.WithContext(r.Context(), s.logger).Error("render page failed", logging.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response failed", logging.Error(err))
	}
}
