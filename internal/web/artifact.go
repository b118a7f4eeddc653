package web

import (
	"errors"
	"net/http"
	"strconv"

	"configgate/internal/auth"
	"configgate/internal/metrics"
)

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if err := auth.ParseBearer(r, s.settings.Token()); err != nil {
		if errors.Is(err, auth.ErrMissingAuthorization) {
			metrics.ObserveConfig(metrics.ConfigMissingToken)
		} else {
			metrics.ObserveConfig(metrics.ConfigInvalidToken)
		}
		s.Logger.Info("config request rejected", "reason", err)
		writeEmpty(w, auth.StatusFor(err))
		return
	}
	metrics.ObserveConfig(metrics.ConfigServed)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(s.settings.ArtifactSize()))
	w.WriteHeader(http.StatusOK)
	if _, err := s.settings.WriteArtifact(w); err != nil {
		s.Logger.Debug("write artifact", "error", err)
	}
}
