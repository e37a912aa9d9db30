// Package handler exposes voter login, logout and profile over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"votegate/internal/auth/service"
	"votegate/internal/voter/models"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	authmw "votegate/pkg/platform/middleware/auth"
	"votegate/pkg/requestcontext"
)

type Service interface {
	authmw.TokenVerifier
	VerifyCredentials(ctx context.Context, voterID id.VoterID, password string) (*service.TokenResult, error)
	VerifyFace(ctx context.Context, in service.FaceLogin) (*service.FaceResult, error)
	Logout(ctx context.Context, voterID id.VoterID, jti string, expiresAt time.Time) error
	Me(ctx context.Context, voterID id.VoterID) (*models.Voter, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts /login, /verify-face (limited token) and /logout, /me (full token).
func (h *Handler) Register(r chi.Router) {
	r.Post("/login", h.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireToken(h.service, authmw.PhaseLimited, h.logger))
		r.Post("/verify-face", h.HandleVerifyFace)
	})

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireVoter(h.service, h.logger))
		r.Post("/logout", h.HandleLogout)
		r.Get("/me", h.HandleMe)
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.VerifyCredentials(ctx, req.voterID, req.Password)
	if err != nil {
		h.fail(ctx, w, "login failed", err)
		return
	}
	resp := toTokenResponse(*res)
	resp.Next = "/verify-face"
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleVerifyFace runs behind the limited-token middleware; the token's identity
// is read from the request context.
func (h *Handler) HandleVerifyFace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyFaceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.VerifyFace(ctx, service.FaceLogin{
		VoterID:       requestcontext.VoterID(ctx),
		LimitedJTI:    requestcontext.TokenID(ctx),
		LimitedExpiry: requestcontext.TokenExpiry(ctx),
		Sample:        req.sample(),
	})
	if err != nil {
		h.fail(ctx, w, "face verification failed", err)
		return
	}
	h.logger.InfoContext(ctx, "voter logged in",
		"request_id", requestID,
		"voter_id", res.VoterID,
	)
	httputil.WriteJSON(w, http.StatusOK, faceResponse{
		tokenResponse: toTokenResponse(res.TokenResult),
		Confidence:    res.Confidence,
		Voter:         toVoterResponse(res.Voter),
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := h.service.Logout(ctx, requestcontext.VoterID(ctx), requestcontext.TokenID(ctx), requestcontext.TokenExpiry(ctx))
	if err != nil {
		h.fail(ctx, w, "logout failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, logoutResponse{Revoked: true})
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v, err := h.service.Me(ctx, requestcontext.VoterID(ctx))
	if err != nil {
		h.fail(ctx, w, "profile lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVoterResponse(v))
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"code", dErrors.CodeOf(err),
		"reason", dErrors.ReasonOf(err),
		"error", err,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
