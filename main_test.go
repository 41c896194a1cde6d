package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	body := fmt.Sprintf("database:\n  driver: sqlite\n  url: %s\nreport:\n  timezone: UTC\nlog:\n  level: error\n", filepath.Join(dir, "crm.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "warn"
	logger, err := newLogger(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	cfg.Log.Level = "loud"
	_, err = newLogger(cfg)
	assert.Error(t, err)
}

func TestImportThenReport(t *testing.T) {
	cfgPath := writeConfig(t)

	_, err := run(t, "--config", cfgPath, "migrate", "up")
	require.NoError(t, err)

	out, err := run(t, "--config", cfgPath, "import", "internal/importer/testdata/fixture.yml")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 3 products, 3 contacts, 3 messages")

	out, err = run(t, "--config", cfgPath, "report", "--periodo", "todos")
	require.NoError(t, err)

	var rep struct {
		Success bool   `json:"success"`
		Periodo string `json:"periodo"`
		Metricas struct {
			TotalContatos int `json:"totalContatos"`
		} `json:"metricas"`
		Produtos struct {
			Desconhecidos int `json:"desconhecidos"`
		} `json:"produtos"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.True(t, rep.Success)
	assert.Equal(t, "todos", rep.Periodo)
	assert.Equal(t, 3, rep.Metricas.TotalContatos)
	// One contact has no product and one is interested in an inactive one.
	assert.Equal(t, 2, rep.Produtos.Desconhecidos)
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	_, err := run(t, "--config", writeConfig(t), "migrate", "sideways")
	assert.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "none.yml"), "report")
	assert.ErrorContains(t, err, "failed to load config")
}

type failingCloser struct{ err error }

func (f failingCloser) Close(context.Context) error { return f.err }

func TestCloseStoreLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := &app{logger: zap.New(core)}

	a.closeStore(failingCloser{})
	assert.Zero(t, logs.Len())

	a.closeStore(failingCloser{err: errors.New("connection reset")})
	entries := logs.FilterMessage("Failed to close store").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "connection reset", entries[0].ContextMap()["error"])
}
