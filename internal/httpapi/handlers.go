package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrEthical07/authgraph"
	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/middleware"
)

type credentialsBody struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Token string `json:"token"`
}

// authenticateRequest is the JSON body for POST /v1/authenticate.
type authenticateRequest struct {
	Graph          string          `json:"graph"`
	Provider       string          `json:"provider"`
	Credentials    credentialsBody `json:"credentials"`
	ExistingUserID string          `json:"existing_user_id"`
	Metadata       map[string]any  `json:"metadata"`
}

type authenticateResponse struct {
	AttemptID              string            `json:"attempt_id"`
	Graph                  string            `json:"graph"`
	Provider               string            `json:"provider,omitempty"`
	UserID                 string            `json:"user_id,omitempty"`
	CrossPlatformAccountID string            `json:"cross_platform_account_id,omitempty"`
	AuthAttributes         map[string]string `json:"auth_attributes,omitempty"`
	Metadata               map[string]any    `json:"metadata,omitempty"`
	Diagnostics            []string          `json:"diagnostics,omitempty"`
	Error                  string            `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var body authenticateRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.AttemptTimeout)
	defer cancel()

	out, err := s.engine.Run(ctx, authgraph.Request{
		Graph:    body.Graph,
		Provider: body.Provider,
		Credentials: graph.Credentials{
			Type:  body.Credentials.Type,
			ID:    body.Credentials.ID,
			Token: body.Credentials.Token,
		},
		ExistingUserID: graph.UserID(body.ExistingUserID),
		Metadata:       body.Metadata,
	})
	if out == nil {
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	resp := authenticateResponse{
		AttemptID:      out.AttemptID,
		Graph:          out.Graph,
		Provider:       out.Provider,
		UserID:         out.UserID.String(),
		AuthAttributes: out.AuthAttributes,
		Metadata:       out.Metadata,
		Diagnostics:    out.Diagnostics,
	}
	if out.CrossPlatformAccountID != nil && out.CrossPlatformAccountID.IsValid() {
		resp.CrossPlatformAccountID = out.CrossPlatformAccountID.String()
	}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = statusFor(err)
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleGraphs(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Graphs())
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Providers())
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.IdentityFromContext(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]string{
		"subject": claims.Subject,
		"name":    claims.Name,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"in_flight": s.engine.InFlight(),
	})
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, authgraph.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, authgraph.ErrGraphNotFound), errors.Is(err, authgraph.ErrProviderNotFound):
		return http.StatusNotFound
	case errors.Is(err, authgraph.ErrEngineClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
