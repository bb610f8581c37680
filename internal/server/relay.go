package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// maxRelayBody bounds both the forwarded request and the relayed answer.
const maxRelayBody = 1 << 20

const proxyFailed = "Proxy failed"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpstreamHealth(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Upstream == nil {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "upstream": "mock"})
		return
	}
	if err := s.cfg.Upstream.HealthCheck(r.Context()); err != nil {
		s.log.Warn().Err(err).Msg("upstream health check failed")
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down", "error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRelay forwards the body verbatim to the upstream URL and relays
// a successful JSON answer with its status. Anything else is a 500.
func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRelayBody))
	if err != nil {
		s.log.Error().Err(err).Msg("relay: read request body")
		s.writeError(w, http.StatusInternalServerError, proxyFailed)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, s.cfg.UpstreamURL, bytes.NewReader(body))
	if err != nil {
		s.log.Error().Err(err).Msg("relay: build upstream request")
		s.writeError(w, http.StatusInternalServerError, proxyFailed)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().Err(err).Str("upstream", s.cfg.UpstreamURL).Msg("relay: upstream request failed")
		s.writeError(w, http.StatusInternalServerError, proxyFailed)
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRelayBody))
	if err != nil {
		s.log.Error().Err(err).Msg("relay: read upstream body")
		s.writeError(w, http.StatusInternalServerError, proxyFailed)
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Error().Int("status", resp.StatusCode).Msg("relay: upstream returned an error status")
		s.writeError(w, http.StatusInternalServerError, proxyFailed)
		return
	}
	if !json.Valid(data) {
		s.log.Error().Int("bytes", len(data)).Msg("relay: upstream body is not JSON")
		s.writeError(w, http.StatusInternalServerError, proxyFailed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(data); err != nil {
		s.log.Error().Err(err).Msg("relay: write response")
	}
}
