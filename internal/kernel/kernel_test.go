package kernel

import (
	"path/filepath"
	"testing"

	"github.com/go-pennos/pennos/cfg"
	"github.com/go-pennos/pennos/clock"
	"github.com/go-pennos/pennos/internal/block"
	"github.com/go-pennos/pennos/internal/logger"
	"github.com/go-pennos/pennos/internal/vfs"
	"github.com/stretchr/testify/require"
)

func newTestKernel(t *testing.T) *Kernel {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disk.img")
	dev, err := block.Format(path, 1, 0)
	require.NoError(t, err)
	t.Cleanup(func() { dev.Close() })

	dir, err := vfs.NewDirectory(dev, &clock.FakeClock{})
	require.NoError(t, err)

	log, err := newTestLogger()
	require.NoError(t, err)

	k := New(dir, log, &clock.FakeClock{})
	k.Registry.Spawn(0, PriorityNormal, "init") // reserve PID 1 as the conventional init process
	return k
}

func newTestLogger() (*logger.Logger, error) {
	return logger.New(cfg.GetDefaultLoggingConfig())
}
