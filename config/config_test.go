package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadYamlConfDefaults(t *testing.T) {
	path := writeConf(t, `
chain: mainnet
share_rpc:
  bitcoin:
    host: 127.0.0.1
    port: 8332
    user: test
    password: test
`)
	cfg, err := LoadYamlConf(path)
	require.NoError(t, err)

	assert.Equal(t, "mainnet", cfg.Chain)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Projector.MaxBlocks)
	assert.Equal(t, int64(4000000), cfg.Projector.MaxBlockWeight)
	assert.Equal(t, 5, cfg.Projector.PollInterval)
	assert.Equal(t, "bitcoind", cfg.Projector.DataSource)
	assert.Equal(t, "0.0.0.0:80", cfg.RPCService.Addr)
	assert.Equal(t, "/", cfg.RPCService.Proxy)
	assert.Equal(t, []string{"http"}, cfg.RPCService.Swagger.Schemes)
}

func TestLoadYamlConfExplicit(t *testing.T) {
	path := writeConf(t, `
chain: testnet
log:
  level: debug
projector:
  max_blocks: 3
  max_block_weight: 1000000
  poll_interval: 10
  data_source: esplora
  esplora_url: https://mempool.space/api
rpc_service:
  addr: 0.0.0.0:8019
  proxy: testnet
`)
	cfg, err := LoadYamlConf(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Projector.MaxBlocks)
	assert.Equal(t, int64(1000000), cfg.Projector.MaxBlockWeight)
	assert.Equal(t, 10, cfg.Projector.PollInterval)
	assert.Equal(t, "esplora", cfg.Projector.DataSource)
	assert.Equal(t, "https://mempool.space/api", cfg.Projector.EsploraURL)
	assert.Equal(t, "0.0.0.0:8019", cfg.RPCService.Addr)
	// Proxy is normalized to a leading slash.
	assert.Equal(t, "/testnet", cfg.RPCService.Proxy)
}

func TestLoadYamlConfBadLevel(t *testing.T) {
	path := writeConf(t, `
log:
  level: shouting
`)
	cfg, err := LoadYamlConf(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadYamlConfMissingFile(t *testing.T) {
	_, err := LoadYamlConf(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
