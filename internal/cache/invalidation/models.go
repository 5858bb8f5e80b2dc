package invalidation

import (
	"time"

	dErrors "deletionguard/pkg/domain-errors"
	s "deletionguard/pkg/platform/strings"
	"deletionguard/pkg/validation"
)

// KeyKind distinguishes cache tags from cached paths.
type KeyKind string

const (
	KindTag  KeyKind = "tag"
	KindPath KeyKind = "path"
)

// Key is one entry of an invalidation closure.
type Key struct {
	Kind  KeyKind `json:"kind"`
	Value string  `json:"value"`
}

func (k Key) String() string {
	return string(k.Kind) + ":" + k.Value
}

// Request names the deleted entity. Slug and CategorySlug are optional and
// normalized before use.
type Request struct {
	EntityID     string   `json:"entity_id" validate:"required,notblank,targetid"`
	Slug         string   `json:"slug" validate:"cachekeylen"`
	CategorySlug string   `json:"category_slug" validate:"cachekeylen"`
	ExtraTags    []string `json:"extra_tags" validate:"cachekeys,dive,cachekeylen,cachekey"`
	ExtraPaths   []string `json:"extra_paths" validate:"cachekeys,dive,cachekeylen,cachekey"`
}

func (r *Request) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.EntityID, &r.Slug, &r.CategorySlug)
	r.ExtraTags = s.DedupeAndTrim(r.ExtraTags)
	r.ExtraPaths = s.DedupeAndTrim(r.ExtraPaths)
}

func (r *Request) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// Options tune one invalidation. Zero fields take the service defaults.
type Options struct {
	// SkipVerify disables the post-invalidation probe.
	SkipVerify bool `json:"skip_verify"`
	// RetryAttempts is the total number of cycles, including the first.
	RetryAttempts int `json:"retry_attempts"`
	// RetryDelay is the base of the linear backoff between cycles.
	RetryDelay time.Duration `json:"-"`
}

// KeyFailure is a key that was never confirmed invalidated.
type KeyFailure struct {
	Kind  KeyKind `json:"kind"`
	Key   string  `json:"key"`
	Error string  `json:"error"`
}

// Verification is the probe outcome of the final cycle.
type Verification struct {
	Checked     int      `json:"checked"`
	StillCached []string `json:"still_cached"`
	ProbeErrors int      `json:"probe_errors"`
	Verified    bool     `json:"verified"`
}

// Result aggregates every cycle. A key invalidated in any cycle is
// reported as invalidated.
type Result struct {
	Success          bool          `json:"success"`
	EntityID         string        `json:"entity_id"`
	InvalidatedTags  []string      `json:"invalidated_tags"`
	InvalidatedPaths []string      `json:"invalidated_paths"`
	FailedTags       []string      `json:"failed_tags"`
	FailedPaths      []string      `json:"failed_paths"`
	Failures         []KeyFailure  `json:"failures,omitempty"`
	Verification     *Verification `json:"verification,omitempty"`
	RetryCount       int           `json:"retry_count"`
	Duration         time.Duration `json:"-"`
	DurationMs       int64         `json:"duration_ms"`
	Error            string        `json:"error,omitempty"`
}

// Event is one invalidation cycle as kept in the history.
type Event struct {
	ID        string        `json:"id"`
	EntityID  string        `json:"entity_id"`
	Tags      []string      `json:"tags"`
	Paths     []string      `json:"paths"`
	Timestamp time.Time     `json:"timestamp"`
	Attempt   int           `json:"attempt"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
}

// Stats summarizes the retained history.
type Stats struct {
	TotalEvents     int           `json:"total_events"`
	Successful      int           `json:"successful"`
	Failed          int           `json:"failed"`
	SuccessRate     float64       `json:"success_rate"`
	AverageDuration time.Duration `json:"average_duration_ns"`
	TrackedEntities int           `json:"tracked_entities"`
	RecentFailures  []Event       `json:"recent_failures"`
}
