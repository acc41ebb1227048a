package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecontrol-mt/calendario/internal/calendar"
	"github.com/telecontrol-mt/calendario/internal/catalog"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/config"
	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/modal"
	"github.com/telecontrol-mt/calendario/internal/output"
	"github.com/telecontrol-mt/calendario/internal/session"
)

func TestMain(m *testing.M) {
	output.DisableColor()
	m.Run()
}

func useConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := config.Init(dir, "")
	require.NoError(t, err)
	flagDir = dir
	t.Cleanup(func() { flagDir = "" })
	return dir
}

func TestConfigSetFiltersChecksOnlyListed(t *testing.T) {
	dir := useConfigDir(t)

	require.NoError(t, runConfigSet(nil, []string{"filters", "ensayo, Ajuste"}))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	var checked []string
	for _, f := range cfg.Filters {
		if f.Checked {
			checked = append(checked, f.Value)
		}
	}
	assert.Equal(t, []string{"ENSAYO", "AJUSTE"}, checked)
	assert.Len(t, cfg.Filters, len(config.DefaultFilters))
}

func TestConfigSetRejects(t *testing.T) {
	useConfigDir(t)

	tests := []struct {
		key, value string
	}{
		{"filters", "INSPECCION"},
		{"gate.policy", "queue"},
		{"calendar.refetch_after_move", "quizás"},
		{"version", "9"},
		{"nope", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := runConfigSet(nil, []string{tt.key, tt.value})
			require.Error(t, err)
			assert.True(t, clierr.Is(err, clierr.InvalidInput), "got %v", err)
		})
	}
}

func TestConfigSetRefetchAfterMove(t *testing.T) {
	dir := useConfigDir(t)

	require.NoError(t, runConfigSet(nil, []string{"calendar.refetch_after_move", "false"}))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.False(t, cfg.RefetchAfterMove())
}

func TestLoadConfigWithMissingDirFlag(t *testing.T) {
	flagDir = t.TempDir()
	t.Cleanup(func() { flagDir = "" })

	_, err := loadConfig()
	assert.True(t, clierr.Is(err, clierr.ConfigNotFound), "got %v", err)
}

func formFixture(t *testing.T, args ...string) (*modal.Modal, *cobra.Command) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addFormFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))

	m := modal.New(session.New(calendar.New(), nil), nil)
	m.OpenNew(date.New(2024, 3, 5))
	return m, cmd
}

func fieldValue(m *modal.Modal, key string) string {
	for _, f := range m.View().Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

func TestApplyFormFlagsSetsCascadeFirst(t *testing.T) {
	brands := catalog.Brands("RECONECTADOR")
	require.NotEmpty(t, brands)
	brand := brands[len(brands)-1]

	m, cmd := formFixture(t,
		"--set", "marca="+brand,
		"--set", "ut=U77",
		"--set", "tipo=RECONECTADOR",
	)
	require.NoError(t, applyFormFlags(cmd, m))

	assert.Equal(t, "RECONECTADOR", fieldValue(m, modal.KeyTipo))
	assert.Equal(t, brand, fieldValue(m, modal.KeyMarca))
	assert.Equal(t, "U77", fieldValue(m, modal.KeyUT))
}

func TestApplyFormFlagsAliases(t *testing.T) {
	m, cmd := formFixture(t, "--comment", "revisar **tierra**", "--status", "suspendido")
	require.NoError(t, applyFormFlags(cmd, m))

	assert.Equal(t, "revisar **tierra**", fieldValue(m, modal.KeyComentario))
	assert.Equal(t, "SUSPENDIDO", fieldValue(m, modal.KeyEstado))
}

func TestApplyFormFlagsRejectsBadAssignment(t *testing.T) {
	m, cmd := formFixture(t, "--set", "sin-igual")
	err := applyFormFlags(cmd, m)
	assert.True(t, clierr.Is(err, clierr.InvalidInput), "got %v", err)
}

func TestZonasRejectsUnknownCode(t *testing.T) {
	require.NoError(t, runZonas(nil, []string{"3pi"}))

	err := runZonas(nil, []string{"9XX"})
	assert.True(t, clierr.Is(err, clierr.InvalidInput), "got %v", err)
}
