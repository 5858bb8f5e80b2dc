// Package handler exposes the deletion guard and cache invalidator over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"deletionguard/internal/cache/invalidation"
	"deletionguard/internal/deletion/models"
	"deletionguard/internal/deletion/rules"
	"deletionguard/internal/deletion/service/guard"
	dErrors "deletionguard/pkg/domain-errors"
	"deletionguard/pkg/platform/httputil"
	"deletionguard/pkg/platform/middleware/admin"
	"deletionguard/pkg/platform/privacy"
	"deletionguard/pkg/requestcontext"
)

// Guard is the admission and administration surface of the deletion guard.
type Guard interface {
	Admit(ctx context.Context, in guard.Admission) (*models.Decision, error)
	RecordOutcome(ctx context.Context, in guard.Outcome) (*guard.OutcomeResult, error)
	BlockUser(ctx context.Context, userID string, duration time.Duration, reason, actor string) (*models.BlockEntry, error)
	UnblockUser(ctx context.Context, userID, actor string) (bool, error)
	ListBlockedUsers(ctx context.Context) ([]*models.BlockEntry, error)
	Stats(ctx context.Context, userID string) (*models.GuardStats, error)
	UpdateRules(ctx context.Context, rs []rules.Rule, actor string) (*rules.RuleSet, error)
	Rules() *rules.RuleSet
	UpdateUserQuota(ctx context.Context, userID string, limits models.QuotaLimits, actor string) (*models.UserQuota, error)
}

// Invalidator purges cached copies of deleted entities.
type Invalidator interface {
	Invalidate(ctx context.Context, req invalidation.Request, opts invalidation.Options) (*invalidation.Result, error)
	History(entityID string) []invalidation.Event
	Stats() invalidation.Stats
}

type Handler struct {
	guard       Guard
	invalidator Invalidator
	logger      *slog.Logger
}

func New(g Guard, inv Invalidator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		guard:       g,
		invalidator: inv,
		logger:      logger,
	}
}

// Register registers the caller-facing routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/deletions/admit", h.HandleAdmit)
	r.Post("/deletions/outcome", h.HandleOutcome)
	r.Post("/deletions/invalidate", h.HandleInvalidate)
}

// RegisterAdmin registers operator routes. The caller applies the admin
// token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Route("/admin/deletion-guard", func(r chi.Router) {
		r.Get("/blocks", h.HandleListBlocks)
		r.Post("/blocks", h.HandleBlock)
		r.Delete("/blocks/{user_id}", h.HandleUnblock)
		r.Get("/stats", h.HandleStats)
		r.Get("/rules", h.HandleGetRules)
		r.Put("/rules", h.HandleUpdateRules)
		r.Put("/quotas/{user_id}", h.HandleUpdateQuota)
		r.Get("/invalidations/{entity_id}", h.HandleInvalidationHistory)
	})
}

func metadataFrom(ctx context.Context, targetID, sessionID string) *models.RequestMetadata {
	return &models.RequestMetadata{
		UserAgent: requestcontext.UserAgent(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		TargetID:  targetID,
		SessionID: sessionID,
	}
}

// rejectionStatus maps a rejection reason onto the response status.
func rejectionStatus(reason models.RejectReason) int {
	if reason == models.ReasonBlockCheckUnavailable {
		return http.StatusServiceUnavailable
	}
	return httputil.DomainCodeToHTTPStatus(reason.Code())
}

// HandleAdmit implements POST /deletions/admit. Rejections are 429 for
// rate and quota limits and 403 for blocked users, with Retry-After set
// when the wait is known.
func (h *Handler) HandleAdmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.AdmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	kind, err := models.ParseRequestKind(req.Kind)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	decision, err := h.guard.Admit(ctx, guard.Admission{
		UserID:   req.UserID,
		Kind:     kind,
		Metadata: metadataFrom(ctx, req.TargetID, req.SessionID),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "admission failed",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := models.NewDecisionResponse(decision)
	if decision.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	}
	if !decision.Allowed {
		h.logger.InfoContext(ctx, "deletion rejected",
			"request_id", requestID,
			"user_id", req.UserID,
			"reason", string(decision.Reason),
			"rule", decision.Rule,
			"client_ip", privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
		)
		httputil.SetRetryAfter(w, decision.RetryAfter)
		httputil.WriteJSON(w, rejectionStatus(decision.Reason), resp)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleOutcome implements POST /deletions/outcome.
func (h *Handler) HandleOutcome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.OutcomeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	kind, err := models.ParseRequestKind(req.Kind)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.guard.RecordOutcome(ctx, guard.Outcome{
		UserID:    req.UserID,
		TargetID:  req.TargetID,
		Kind:      kind,
		Success:   req.Success,
		ErrorCode: req.ErrorCode,
		Metadata:  metadataFrom(ctx, req.TargetID, req.SessionID),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to record outcome",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &models.OutcomeResponse{
		Recorded:      res.Recorded,
		QuotaConsumed: res.QuotaConsumed,
	})
}

// HandleInvalidate implements POST /deletions/invalidate. A result with no
// key invalidated is returned with 502.
func (h *Handler) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[InvalidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.invalidator.Invalidate(ctx, req.Request, req.Options())
	if err != nil {
		h.logger.ErrorContext(ctx, "cache invalidation aborted",
			"error", err,
			"request_id", requestID,
			"entity_id", req.EntityID,
		)
		httputil.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	httputil.WriteJSON(w, status, result)
}

func (h *Handler) HandleListBlocks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	blocks, err := h.guard.ListBlockedUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list blocks",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	if blocks == nil {
		blocks = []*models.BlockEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, &models.BlockListResponse{Blocks: blocks, Total: len(blocks)})
}

// HandleBlock implements POST /admin/deletion-guard/blocks. A zero
// duration blocks until an operator unblocks.
func (h *Handler) HandleBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.BlockRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	entry, err := h.guard.BlockUser(ctx, req.UserID, req.Duration(), req.Reason, admin.ActorID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to block user",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) HandleUnblock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := strings.TrimSpace(chi.URLParam(r, "user_id"))

	removed, err := h.guard.UnblockUser(ctx, userID, admin.ActorID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to unblock user",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &models.UnblockResponse{UserID: userID, Unblocked: removed})
}

// HandleStats implements GET /admin/deletion-guard/stats. The optional
// user_id query parameter adds that user's activity, quota, and block.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.guard.Stats(ctx, strings.TrimSpace(r.URL.Query().Get("user_id")))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get stats",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &StatsResponse{
		Guard:        stats,
		Invalidation: h.invalidator.Stats(),
	})
}

func (h *Handler) HandleGetRules(w http.ResponseWriter, _ *http.Request) {
	rs := h.guard.Rules()
	httputil.WriteJSON(w, http.StatusOK, &RulesResponse{Document: rules.ToDocument(rs), Count: rs.Len()})
}

// HandleUpdateRules implements PUT /admin/deletion-guard/rules. The body
// replaces the whole rule list.
func (h *Handler) HandleUpdateRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	doc, ok := httputil.DecodeJSON[rules.Document](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	parsed, err := doc.Build()
	if err != nil {
		h.logger.WarnContext(ctx, "invalid rules",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	rs, err := h.guard.UpdateRules(ctx, parsed.Rules(), admin.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &RulesResponse{Document: rules.ToDocument(rs), Count: rs.Len()})
}

func (h *Handler) HandleUpdateQuota(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := strings.TrimSpace(chi.URLParam(r, "user_id"))

	req, ok := httputil.DecodeAndPrepare[models.UpdateQuotaRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	quota, err := h.guard.UpdateUserQuota(ctx, userID, req.Limits(), admin.ActorID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update quota",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, quota)
}

func (h *Handler) HandleInvalidationHistory(w http.ResponseWriter, r *http.Request) {
	entityID := strings.TrimSpace(chi.URLParam(r, "entity_id"))
	if entityID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "entity_id is required"))
		return
	}
	events := h.invalidator.History(entityID)
	if events == nil {
		events = []invalidation.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, &HistoryResponse{EntityID: entityID, Events: events, Total: len(events)})
}
