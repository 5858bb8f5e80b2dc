package guard

import (
	"context"
	"strings"
	"time"

	"deletionguard/internal/deletion/models"
	"deletionguard/internal/deletion/rules"
	dErrors "deletionguard/pkg/domain-errors"
	"deletionguard/pkg/platform/audit"
)

// BlockUser blocks a user on an operator's behalf. A zero duration blocks
// until UnblockUser.
func (s *Service) BlockUser(ctx context.Context, userID string, duration time.Duration, reason, actor string) (*models.BlockEntry, error) {
	entry, err := s.blocks.Block(ctx, userID, duration, reason, models.SourceOperator)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementBlocksCreated(string(models.SourceOperator))
	}
	s.logAudit(ctx, audit.EventUserBlocked,
		"user_id", entry.UserID,
		"decision", "blocked",
		"reason", reason,
		"source", string(models.SourceOperator),
		"actor", actor,
		"indefinite", entry.Indefinite(),
	)
	return entry, nil
}

// UnblockUser reports whether an active block was lifted.
func (s *Service) UnblockUser(ctx context.Context, userID, actor string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, dErrors.New(dErrors.CodeInvalidInput, "user_id is required")
	}
	lifted, err := s.blocks.Unblock(ctx, userID)
	if err != nil {
		return false, err
	}
	if lifted {
		s.logAudit(ctx, audit.EventUserUnblocked,
			"user_id", userID,
			"decision", "unblocked",
			"actor", actor,
		)
	}
	return lifted, nil
}

func (s *Service) ListBlockedUsers(ctx context.Context) ([]*models.BlockEntry, error) {
	entries, err := s.blocks.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SetActiveBlocks(len(entries))
	}
	return entries, nil
}

// Stats summarizes guard state. With a user ID it also reports that user's
// activity, quota, block, and current abuse score.
func (s *Service) Stats(ctx context.Context, userID string) (*models.GuardStats, error) {
	ledgerStats, err := s.ledger.Stats(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read ledger stats")
	}
	blocks, err := s.blocks.List(ctx)
	if err != nil {
		return nil, err
	}
	quotas, err := s.quotas.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := &models.GuardStats{
		Ledger:       ledgerStats,
		BlockedUsers: len(blocks),
		QuotaUsers:   len(quotas),
		RuleCount:    s.rules.Load().Len(),
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return stats, nil
	}
	stats.UserID = userID
	if stats.Activity, err = s.abuse.Activity(ctx, userID); err != nil {
		return nil, err
	}
	if stats.Quota, err = s.quotas.Get(ctx, userID); err != nil {
		return nil, err
	}
	if stats.Block, err = s.blocks.Check(ctx, userID); err != nil {
		return nil, err
	}
	if stats.Abuse, err = s.abuse.Detect(ctx, userID, nil); err != nil {
		return nil, err
	}
	return stats, nil
}

// UpdateRules validates and atomically swaps the rate-limit rules. An
// invalid set leaves the current rules in place.
func (s *Service) UpdateRules(ctx context.Context, rs []rules.Rule, actor string) (*rules.RuleSet, error) {
	set, err := rules.NewRuleSet(rs)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementRulesReload("api", "invalid")
		}
		return nil, err
	}
	s.rules.Swap(set)
	if s.metrics != nil {
		s.metrics.IncrementRulesReload("api", "success")
	}
	s.logAudit(ctx, audit.EventRulesUpdated,
		"subject", "rate_limit_rules",
		"decision", "updated",
		"actor", actor,
		"rule_count", set.Len(),
	)
	return set, nil
}

// Rules returns the active rule set.
func (s *Service) Rules() *rules.RuleSet {
	return s.rules.Load()
}

func (s *Service) UpdateUserQuota(ctx context.Context, userID string, limits models.QuotaLimits, actor string) (*models.UserQuota, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user_id is required")
	}
	q, err := s.quotas.UpdateLimits(ctx, userID, limits)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventQuotaUpdated,
		"user_id", userID,
		"decision", "updated",
		"actor", actor,
		"daily", limits.Daily,
		"weekly", limits.Weekly,
		"monthly", limits.Monthly,
	)
	return q, nil
}
