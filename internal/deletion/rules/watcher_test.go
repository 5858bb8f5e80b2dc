package rules

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	holder := NewHolder(nil)
	var changes atomic.Int32
	w, err := NewWatcher(path, holder, &WatcherConfig{
		Debounce: 10 * time.Millisecond,
		OnChange: func(*RuleSet) { changes.Add(1) },
	}, slog.Default())
	require.NoError(t, err)
	w.Start()
	defer func() { require.NoError(t, w.Stop()) }()

	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - name: only\n    window: 5s\n    max_requests: 1\n"), 0o600))

	require.Eventually(t, func() bool {
		return holder.Load().Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, changes.Load(), int32(1))
}

func TestWatcher_InvalidFileKeepsActiveRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: ["), 0o600))

	holder := NewHolder(nil)
	var errs atomic.Int32
	w, err := NewWatcher(path, holder, &WatcherConfig{
		Debounce: time.Millisecond,
		OnError:  func(error) { errs.Add(1) },
	}, slog.Default())
	require.NoError(t, err)

	w.Reload()

	assert.Equal(t, int32(1), errs.Load())
	assert.Equal(t, 5, holder.Load().Len())
	require.NoError(t, w.Stop())
}
