package abuse

import (
	"regexp"
	"strings"

	"github.com/mssola/useragent"

	"deletionguard/internal/deletion/models"
)

// features are the window aggregates the signal predicates read.
type features struct {
	attempts1h        int
	completed1h       int
	failures1h        int
	distinctTargets1h int
	distinctSession1h int
	attempts24h       int
	// metadata is nil when the caller supplied no client context.
	metadata *models.RequestMetadata
}

// signal is one row of the heuristic table.
type signal struct {
	name   string
	reason string
	weight int
	fires  func(f features) bool
}

var botPattern = regexp.MustCompile(`(?i)bot|crawler|spider|scraper|curl|wget|python|requests|test`)

// signals is evaluated top to bottom; every row that fires adds its weight.
var signals = []signal{
	{
		name:   "excessive_requests",
		reason: "excessive requests",
		weight: 30,
		fires:  func(f features) bool { return f.attempts1h > 50 },
	},
	{
		name:   "high_failure_rate",
		reason: "high failure rate",
		weight: 25,
		fires: func(f features) bool {
			return f.completed1h > 10 && float64(f.failures1h)/float64(f.completed1h) > 0.8
		},
	},
	{
		name:   "repeated_target",
		reason: "repeated target",
		weight: 20,
		fires:  func(f features) bool { return f.attempts1h > 20 && f.distinctTargets1h < 5 },
	},
	{
		name:   "bot_user_agent",
		reason: "suspicious user agent",
		weight: 15,
		fires: func(f features) bool {
			return f.metadata != nil && isBotUserAgent(f.metadata.UserAgent)
		},
	},
	{
		name:   "multi_session",
		reason: "multi-session pattern",
		weight: 20,
		fires:  func(f features) bool { return f.attempts1h > 30 && f.distinctSession1h > 10 },
	},
	{
		name:   "extreme_daily_volume",
		reason: "extreme daily volume",
		weight: 35,
		fires:  func(f features) bool { return f.attempts24h > 500 },
	},
}

func isBotUserAgent(ua string) bool {
	ua = strings.TrimSpace(ua)
	if ua == "" {
		return true
	}
	if botPattern.MatchString(ua) {
		return true
	}
	return useragent.New(ua).Bot()
}
