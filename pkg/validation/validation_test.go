package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "deletionguard/pkg/domain-errors"
)

type sample struct {
	UserID string   `validate:"required,notblank,max=8"`
	Kind   string   `validate:"omitempty,oneof=single bulk"`
	Tags   []string `validate:"max=2,dive,cachekey"`
	Limit  int      `validate:"min=0"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		wantMsg string
	}{
		{name: "valid", in: sample{UserID: "u1", Kind: "bulk", Tags: []string{"a"}}},
		{name: "missing user", in: sample{}, wantMsg: "user_id is required"},
		{name: "blank user", in: sample{UserID: "   "}, wantMsg: "user_id must not be blank"},
		{name: "long user", in: sample{UserID: "123456789"}, wantMsg: "user_id must be at most 8"},
		{name: "bad kind", in: sample{UserID: "u", Kind: "other"}, wantMsg: "kind must be one of [single bulk]"},
		{name: "too many tags", in: sample{UserID: "u", Tags: []string{"a", "b", "c"}}, wantMsg: "tags must be at most 2"},
		{name: "tag with space", in: sample{UserID: "u", Tags: []string{"a b"}}, wantMsg: "tags[0] must not contain whitespace"},
		{name: "negative limit", in: sample{UserID: "u", Limit: -1}, wantMsg: "limit must be at least 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

type limited struct {
	UserID   string   `validate:"userid"`
	TargetID string   `validate:"targetid"`
	Keys     []string `validate:"cachekeys,dive,cachekeylen,cachekey"`
}

func TestValidate_LimitsFollowConstants(t *testing.T) {
	keys := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("tag:%d", i)
		}
		return out
	}

	tests := []struct {
		name    string
		in      limited
		wantMsg string
	}{
		{
			name: "at every limit",
			in: limited{
				UserID:   strings.Repeat("u", MaxUserIDLength),
				TargetID: strings.Repeat("t", MaxTargetIDLength),
				Keys:     append(keys(MaxExtraKeys-1), strings.Repeat("k", MaxCacheKeyLength)),
			},
		},
		{name: "missing user", in: limited{}, wantMsg: "user_id is required"},
		{name: "blank user", in: limited{UserID: " "}, wantMsg: "user_id must not be blank"},
		{
			name:    "user id over limit",
			in:      limited{UserID: strings.Repeat("u", MaxUserIDLength+1)},
			wantMsg: fmt.Sprintf("user_id must be at most %d", MaxUserIDLength),
		},
		{
			name:    "target id over limit",
			in:      limited{UserID: "u", TargetID: strings.Repeat("t", MaxTargetIDLength+1)},
			wantMsg: fmt.Sprintf("target_id must be at most %d", MaxTargetIDLength),
		},
		{
			name:    "too many keys",
			in:      limited{UserID: "u", Keys: keys(MaxExtraKeys + 1)},
			wantMsg: fmt.Sprintf("keys must be at most %d", MaxExtraKeys),
		},
		{
			name:    "key over limit",
			in:      limited{UserID: "u", Keys: []string{strings.Repeat("k", MaxCacheKeyLength+1)}},
			wantMsg: fmt.Sprintf("keys[0] must be at most %d", MaxCacheKeyLength),
		},
		{name: "key with space", in: limited{UserID: "u", Keys: []string{"tag:a b"}}, wantMsg: "keys[0] must not contain whitespace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}
