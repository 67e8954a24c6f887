package ops

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/inklings/internal/config"
	"github.com/hpungsan/inklings/internal/db"
	"github.com/hpungsan/inklings/internal/logging"
	"github.com/hpungsan/inklings/internal/vault"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

type fixture struct {
	deps  *Deps
	root  string
	clock *testClock
}

// setup builds a vault in a temp dir with the given files and a fixed clock
// at 2024-01-05 10:00 local time.
func setup(t *testing.T, cfg *config.Config, files map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	}

	database, err := db.Init(config.StateDir(root))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	v, err := vault.Open(root, cfg.NoteGlob, logging.Discard())
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2024, 1, 5, 10, 0, 0, 0, time.Local)}
	deps := NewDeps(database, v, cfg,
		WithClock(clock.Now),
		WithRand(rand.New(rand.NewPCG(3, 4))),
		WithLogger(logging.Discard()),
	)
	return &fixture{deps: deps, root: root, clock: clock}
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func intPtr(n int) *int {
	return &n
}
