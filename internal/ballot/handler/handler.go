// Package handler exposes elections, voting and results over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"votegate/internal/ballot/models"
	"votegate/internal/ballot/service"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	adminmw "votegate/pkg/platform/middleware/admin"
	authmw "votegate/pkg/platform/middleware/auth"
	"votegate/pkg/requestcontext"
)

type Service interface {
	CastVote(ctx context.Context, b service.Ballot) (*service.Receipt, error)
	HasVoted(ctx context.Context, voterID id.VoterID, electionID uuid.UUID) (bool, error)
	GetResults(ctx context.Context, electionID uuid.UUID) (*service.Results, error)
	ListElections(ctx context.Context) ([]service.ElectionView, error)
	GetElection(ctx context.Context, electionID uuid.UUID) (*service.ElectionView, error)
	CreateElection(ctx context.Context, in service.ElectionInput, actor string) (*models.Election, error)
	AddCandidate(ctx context.Context, electionID uuid.UUID, in service.CandidateInput, actor string) (*models.Candidate, error)
	SetStatus(ctx context.Context, electionID uuid.UUID, next models.ElectionStatus, actor string) (*models.Election, error)
	Reconcile(ctx context.Context, electionID uuid.UUID, actor string) (*models.Reconciliation, error)
}

type Handler struct {
	service    Service
	verifier   authmw.TokenVerifier
	adminToken string
	logger     *slog.Logger
}

func New(svc Service, verifier authmw.TokenVerifier, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{service: svc, verifier: verifier, adminToken: adminToken, logger: logger}
}

// Register mounts the public election reads, the voter routes (full token) and
// the admin election routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/elections", h.HandleListElections)
	r.Get("/elections/{electionId}", h.HandleGetElection)
	r.Get("/results/{electionId}", h.HandleResults)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireVoter(h.verifier, h.logger))
		r.Post("/vote", h.HandleCastVote)
		r.Get("/votes/me/{electionId}", h.HandleHasVoted)
	})

	r.Group(func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/admin/elections", h.HandleCreateElection)
		r.Post("/admin/elections/{electionId}/candidates", h.HandleAddCandidate)
		r.Post("/admin/elections/{electionId}/status", h.HandleSetStatus)
		r.Post("/admin/elections/{electionId}/reconcile", h.HandleReconcile)
	})
}

func (h *Handler) HandleListElections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.service.ListElections(ctx)
	if err != nil {
		h.fail(ctx, w, "list elections failed", err)
		return
	}
	resp := electionListResponse{Elections: make([]electionResponse, 0, len(views)), Count: len(views)}
	for _, v := range views {
		resp.Elections = append(resp.Elections, toElectionResponse(v))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetElection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	electionID, ok := electionParam(w, r)
	if !ok {
		return
	}
	view, err := h.service.GetElection(ctx, electionID)
	if err != nil {
		h.fail(ctx, w, "get election failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toElectionResponse(*view))
}

func (h *Handler) HandleResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	electionID, ok := electionParam(w, r)
	if !ok {
		return
	}
	res, err := h.service.GetResults(ctx, electionID)
	if err != nil {
		h.fail(ctx, w, "results failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResultsResponse(res))
}

// HandleCastVote records the authenticated voter's ballot. Client metadata is
// taken from the request context, as populated by the metadata middleware.
func (h *Handler) HandleCastVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CastVoteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	userAgent := requestcontext.UserAgent(ctx)
	if userAgent == "" {
		userAgent = r.UserAgent()
	}
	receipt, err := h.service.CastVote(ctx, service.Ballot{
		VoterID:     requestcontext.VoterID(ctx),
		ElectionID:  req.electionID,
		CandidateID: req.candidateID,
		ClientIP:    requestcontext.ClientIP(ctx),
		UserAgent:   userAgent,
	})
	if err != nil {
		h.fail(ctx, w, "vote rejected", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) HandleHasVoted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	electionID, ok := electionParam(w, r)
	if !ok {
		return
	}
	voterID := requestcontext.VoterID(ctx)
	voted, err := h.service.HasVoted(ctx, voterID, electionID)
	if err != nil {
		h.fail(ctx, w, "has-voted lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, hasVotedResponse{
		ElectionID: electionID.String(),
		VoterID:    voterID.String(),
		HasVoted:   voted,
	})
}

func (h *Handler) HandleCreateElection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateElectionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	e, err := h.service.CreateElection(ctx, req.toInput(), adminActor(r))
	if err != nil {
		h.fail(ctx, w, "create election failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) HandleAddCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	electionID, ok := electionParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddCandidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.AddCandidate(ctx, electionID, service.CandidateInput{Name: req.Name, Party: req.Party}, adminActor(r))
	if err != nil {
		h.fail(ctx, w, "add candidate failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	electionID, ok := electionParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	e, err := h.service.SetStatus(ctx, electionID, req.status, adminActor(r))
	if err != nil {
		h.fail(ctx, w, "status change failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	electionID, ok := electionParam(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Reconcile(ctx, electionID, adminActor(r))
	if err != nil {
		h.fail(ctx, w, "reconcile failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func electionParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	eid, err := id.ParseElectionID(chi.URLParam(r, "electionId"))
	if err != nil {
		httputil.WriteError(w, err)
		return uuid.Nil, false
	}
	return uuid.UUID(eid), true
}

func adminActor(r *http.Request) string {
	if actor := r.Header.Get("X-Admin-Actor"); actor != "" {
		return actor
	}
	return "admin"
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
		h.logger.InfoContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
