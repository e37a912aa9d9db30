// Package handler exposes the registration and verification flow over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	biomodels "votegate/internal/biometric/models"
	otpmodels "votegate/internal/otp/models"
	"votegate/internal/verification/service"
	"votegate/internal/voter/models"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	adminmw "votegate/pkg/platform/middleware/admin"
	authmw "votegate/pkg/platform/middleware/auth"
	"votegate/pkg/requestcontext"
)

// Service is the verification flow the handler drives.
type Service interface {
	RequestContactCode(ctx context.Context, contact string, purpose otpmodels.Purpose) (*service.CodeRequestResult, error)
	RedeemContactCode(ctx context.Context, contact string, purpose otpmodels.Purpose, code string) (*service.CodeRedemptionResult, error)
	Register(ctx context.Context, in service.RegistrationInput) (*models.Voter, error)
	VerifyDocument(ctx context.Context, voterID id.VoterID, nationalID string, dob time.Time) (*models.Voter, error)
	EnrollBiometric(ctx context.Context, voterID id.VoterID, sample biomodels.Sample, caller id.VoterID) (*service.EnrollResult, error)
	AdminVerifyID(ctx context.Context, voterID id.VoterID, actor string) (*models.Voter, error)
	Deactivate(ctx context.Context, voterID id.VoterID, actor string) (*models.Voter, error)
}

type Handler struct {
	service    Service
	verifier   authmw.TokenVerifier
	adminToken string
	logger     *slog.Logger
}

// New creates the handler. verifier is used only to recognise the caller on
// biometric re-enrollment; it may be nil, in which case re-enrollment is refused.
func New(svc Service, verifier authmw.TokenVerifier, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{service: svc, verifier: verifier, adminToken: adminToken, logger: logger}
}

// Register mounts the public verification routes and the admin voter routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/send-otp", h.HandleSendCode)
	r.Post("/verify-otp", h.HandleVerifyCode)
	r.Post("/register", h.HandleRegister)
	r.Post("/verify-id", h.HandleVerifyDocument)
	r.Post("/register-face/{voterId}", h.HandleEnrollFace)

	r.Group(func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/admin/voters/{voterId}/verify-id", h.HandleAdminVerifyID)
		r.Post("/admin/voters/{voterId}/deactivate", h.HandleAdminDeactivate)
	})
}

func (h *Handler) HandleSendCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ContactCodeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.RequestContactCode(ctx, req.Contact, otpmodels.Purpose(req.Purpose))
	if err != nil {
		h.fail(ctx, w, "code request failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, codeRequestResponse{
		Contact:   res.Contact,
		Channel:   string(res.Channel),
		Sent:      res.Sent,
		Delivered: res.Delivered,
		ExpiresAt: res.ExpiresAt,
	})
}

// HandleVerifyCode redeems a code. Wrong, expired and already used codes are
// answered identically.
func (h *Handler) HandleVerifyCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RedeemCodeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.RedeemContactCode(ctx, req.Contact, otpmodels.Purpose(req.Purpose), req.Code)
	if err != nil {
		switch dErrors.ReasonOf(err) {
		case dErrors.ReasonCodeInvalid, dErrors.ReasonCodeExpired, dErrors.ReasonCodeAlreadyUsed:
			h.logger.InfoContext(ctx, "code rejected",
				"request_id", requestID,
				"reason", dErrors.ReasonOf(err),
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid or expired code").
				WithReason(dErrors.ReasonCodeInvalid))
			return
		}
		h.fail(ctx, w, "code redemption failed", err)
		return
	}

	resp := codeRedemptionResponse{
		Verified: true,
		Contact:  res.Contact,
		Purpose:  string(res.Purpose),
	}
	if res.Voter != nil {
		resp.Voter = toVoterResponse(res.Voter)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	v, err := h.service.Register(ctx, req.toInput())
	if err != nil {
		h.fail(ctx, w, "registration failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toVoterResponse(v))
}

func (h *Handler) HandleVerifyDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	v, err := h.service.VerifyDocument(ctx, req.voterID, req.NationalID, req.dob)
	if err != nil {
		h.fail(ctx, w, "document verification failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVoterResponse(v))
}

// HandleEnrollFace enrolls the first template without a token. A bearer token, when
// present, must be valid and identifies the caller for re-enrollment.
func (h *Handler) HandleEnrollFace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	voterID, err := id.ParseVoterID(chi.URLParam(r, "voterId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	caller, err := h.caller(ctx, r)
	if err != nil {
		h.fail(ctx, w, "enrollment token rejected", err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[EnrollFaceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.EnrollBiometric(ctx, voterID, req.sample(), caller)
	if err != nil {
		h.fail(ctx, w, "biometric enrollment failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, enrollResponse{
		VoterID:            res.Voter.VoterID.String(),
		TemplateID:         res.Template.ID,
		Replaced:           res.Replaced,
		FaceVerified:       res.Voter.FaceVerified,
		RegistrationStatus: string(res.Voter.Status),
		MissingSteps:       missingSteps(res.Voter),
	})
}

func (h *Handler) caller(ctx context.Context, r *http.Request) (id.VoterID, error) {
	token := authmw.BearerToken(r)
	if token == "" || h.verifier == nil {
		return "", nil
	}
	claims, err := h.verifier.VerifyToken(ctx, token)
	if err != nil {
		return "", err
	}
	if claims.Phase != authmw.PhaseFull {
		return "", dErrors.New(dErrors.CodeUnauthorized, "token not valid for this operation").
			WithReason(dErrors.ReasonTokenInvalid)
	}
	return claims.VoterID, nil
}

func (h *Handler) HandleAdminVerifyID(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, "admin id verification failed", h.service.AdminVerifyID)
}

func (h *Handler) HandleAdminDeactivate(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, "deactivation failed", h.service.Deactivate)
}

func (h *Handler) adminAction(w http.ResponseWriter, r *http.Request, failMsg string,
	action func(context.Context, id.VoterID, string) (*models.Voter, error),
) {
	ctx := r.Context()
	voterID, err := id.ParseVoterID(chi.URLParam(r, "voterId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	v, err := action(ctx, voterID, adminActor(r))
	if err != nil {
		h.fail(ctx, w, failMsg, err)
		return
	}
	h.logger.InfoContext(ctx, "admin voter action",
		"request_id", requestcontext.RequestID(ctx),
		"voter_id", voterID,
		"path", r.URL.Path,
	)
	httputil.WriteJSON(w, http.StatusOK, toVoterResponse(v))
}

// adminActor names the operator for the audit trail.
func adminActor(r *http.Request) string {
	if actor := r.Header.Get("X-Admin-Actor"); actor != "" {
		return actor
	}
	return "admin"
}

// fail logs at a level matching the error's kind and renders it.
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
