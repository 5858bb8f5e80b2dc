package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deletionguard/internal/deletion/models"
	dErrors "deletionguard/pkg/domain-errors"
)

const sampleYAML = `
rules:
  - name: user_per_minute
    window: 1m
    max_requests: 3
  - name: failures
    window: 30s
    max_requests: 2
    count_only_failures: true
  - name: site_wide
    window: 1m
    max_requests: 100
    scope: global
    applies_to: [single, bulk]
    skip_validation: true
`

func TestParse(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		rs, err := Parse([]byte(sampleYAML))
		require.NoError(t, err)
		require.Equal(t, 3, rs.Len())

		got := rs.Rules()
		assert.Equal(t, time.Minute, got[0].Window)
		assert.Equal(t, ScopeUser, got[0].Scope)
		assert.True(t, got[1].CountOnlyFailures)
		assert.Equal(t, 30*time.Second, got[1].Window)
		assert.Equal(t, ScopeGlobal, got[2].Scope)
		assert.Equal(t, []models.RequestKind{models.KindSingle, models.KindBulk}, got[2].AppliesTo)
	})

	t.Run("json is accepted", func(t *testing.T) {
		rs, err := Parse([]byte(`{"rules":[{"name":"a","window":"10s","max_requests":1}]}`))
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, rs.Rules()[0].Window)
	})

	errCases := map[string]string{
		"empty":         "",
		"unknown field": "rules:\n  - name: a\n    window: 1m\n    max_requests: 1\n    maxrequests: 2\n",
		"bad window":    "rules:\n  - name: a\n    window: soon\n    max_requests: 1\n",
		"no rules":      "rules: []\n",
		"bad yaml":      "rules: [",
	}
	for name, doc := range errCases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	rs, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default().Rules(), rs.Rules())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	rs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, rs.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
}
