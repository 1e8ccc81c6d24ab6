package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/config"
	"github.com/l1jgo/simcore/internal/system"
)

// repoFile resolves a path under the repository root.
func repoFile(t *testing.T, rel string) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("..", "..", rel))
	require.NoError(t, err)
	return abs
}

func sampleConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(repoFile(t, "config/simcore.toml"))
	require.NoError(t, err)
	cfg.Scene.Path = repoFile(t, cfg.Scene.Path)
	cfg.Scripts.Dir = repoFile(t, cfg.Scripts.Dir)
	cfg.Scripts.Manifest = repoFile(t, cfg.Scripts.Manifest)
	return cfg
}

func TestBuildSimulation_SampleFiles(t *testing.T) {
	cfg := sampleConfig(t)
	sim, err := buildSimulation(cfg, zap.NewNop())
	require.NoError(t, err)
	defer sim.Close()

	assert.Equal(t, 2, sim.spawned)
	require.Len(t, sim.scripts, 1)

	order, err := sim.world.Order()
	require.NoError(t, err)
	assert.Len(t, order, 10)
	assert.Equal(t, "Colorize", order[len(order)-1])

	for i := 0; i < 50; i++ {
		require.NoError(t, sim.world.Advance(cfg.Sim.TickRate.Seconds()))
	}
	assert.Equal(t, uint64(50), sim.world.Frame())
}

func TestBuildSimulation_DefaultScene(t *testing.T) {
	cfg := config.Defaults()
	sim, err := buildSimulation(cfg, zap.NewNop())
	require.NoError(t, err)
	defer sim.Close()

	assert.Equal(t, 2, sim.spawned)
	assert.Empty(t, sim.scripts)

	sim.input.Press(system.DirLeft)
	require.NoError(t, sim.world.Advance(0.05))
}

func TestBuildSimulation_BadManifest(t *testing.T) {
	cfg := config.Defaults()
	cfg.Scripts.Manifest = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := buildSimulation(cfg, zap.NewNop())
	assert.Error(t, err)
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simcore.toml")
	body := fmt.Sprintf(`
[scene]
path = %q

[scripts]
dir = %q
manifest = %q
`, repoFile(t, "scenes/snake.yaml"), repoFile(t, "scripts/lib"), repoFile(t, "scripts/systems.yaml"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestOrderCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"order", "--config", writeTestConfig(t)})
	require.NoError(t, cmd.Execute())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "order", out.Bytes())
}

func TestCheckCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check", "--config", writeTestConfig(t), "--frames", "5"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "is valid")
}

func TestConfigPathResolution(t *testing.T) {
	o := &rootOptions{}
	t.Setenv("SIMCORE_CONFIG", "")
	assert.Equal(t, defaultConfigPath, o.configPath())

	t.Setenv("SIMCORE_CONFIG", "/etc/simcore.toml")
	assert.Equal(t, "/etc/simcore.toml", o.configPath())

	o.ConfigPath = "local.toml"
	assert.Equal(t, "local.toml", o.configPath())
}
