package models

// LedgerStats summarizes the attempt ledger.
type LedgerStats struct {
	TrackedUsers  int `json:"tracked_users"`
	UserEntries   int `json:"user_entries"`
	GlobalEntries int `json:"global_entries"`
}

// UserActivity is a windowed view of one user's attempts.
type UserActivity struct {
	AttemptsLastHour  int `json:"attempts_last_hour"`
	FailuresLastHour  int `json:"failures_last_hour"`
	RejectedLastHour  int `json:"rejected_last_hour"`
	AttemptsLast24h   int `json:"attempts_last_24h"`
	DistinctTargets1h int `json:"distinct_targets_last_hour"`
}

// GuardStats is returned by the admin stats endpoint. The user-scoped
// fields are only populated when a user ID is requested.
type GuardStats struct {
	Ledger       LedgerStats   `json:"ledger"`
	BlockedUsers int           `json:"blocked_users"`
	QuotaUsers   int           `json:"quota_users"`
	RuleCount    int           `json:"rule_count"`
	UserID       string        `json:"user_id,omitempty"`
	Activity     *UserActivity `json:"activity,omitempty"`
	Quota        *UserQuota    `json:"quota,omitempty"`
	Block        *BlockEntry   `json:"block,omitempty"`
	Abuse        *AbuseSignal  `json:"abuse,omitempty"`
}
