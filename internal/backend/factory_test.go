package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insights/internal/config"
)

func TestCreateMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	seed := `[{"id":1,"transaction":"Feira","value":"50","type":"Expense","category":"Mercado","date":"02/01/2024","effectiveValue":"-50"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transactions.json"), []byte(seed), 0644))

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	require.NoError(t, err)
	assert.Nil(t, res.Publisher)
	assert.Nil(t, res.Cleanup)

	txs, err := res.Backend.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Mercado", txs[0].Category)
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insights.db")

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)
	require.NotNil(t, res.Cleanup)
	defer res.Cleanup()

	goals, err := res.Backend.LoadGoals(context.Background())
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestCreateSQLiteBackendSeedsTransactions(t *testing.T) {
	dir := t.TempDir()
	seed := `[{"id":7,"transaction":"Feira","value":"50","type":"Expense","category":"Mercado","date":"02/01/2024","effectiveValue":"-50"},
		{"id":8,"transaction":"Pix","value":"80","type":"Transferencia","category":"Casa","date":"02/01/2024","effectiveValue":"-80"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transactions.json"), []byte(seed), 0644))
	cfg := Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "insights.db"), DataDirectory: dir}

	// Seeding twice upserts rather than duplicating.
	for i := 0; i < 2; i++ {
		res, err := NewFactory(nil).CreateBackend(context.Background(), cfg)
		require.NoError(t, err)

		txs, err := res.Backend.ListTransactions(context.Background())
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, int64(7), txs[0].ID)
		assert.False(t, txs[1].IsIncome())
		require.NoError(t, res.Cleanup())
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown type", Config{Type: "postgres"}},
		{"sqlite without path", Config{Type: SQLiteBackend}},
		{"sheets without spreadsheet", Config{Type: SheetsBackend}},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://localhost", AMQPExchange: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory(nil).CreateBackend(context.Background(), tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "bogus"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/x.db",
		AMQPURL:      "amqp://localhost",
		AMQPExchange: "insights",
		AMQPQueue:    "settings_changed",
	})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "/tmp/x.db", cfg.SQLiteDBPath)
	assert.Equal(t, "settings_changed", cfg.AMQPQueue)
	assert.True(t, cfg.AMQPEnabled())
	assert.NoError(t, cfg.Validate())

	// Exchange and queue defaults are dropped when events are off.
	cfg, err = FromAppConfig(&config.Config{
		DataBackend:  "memory",
		AMQPExchange: "insights",
		AMQPQueue:    "settings_changed",
	})
	require.NoError(t, err)
	assert.False(t, cfg.AMQPEnabled())
	assert.Empty(t, cfg.AMQPQueue)
}

func TestBackendTypes(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		assert.True(t, bt.IsValid(), bt.String())
	}
	assert.False(t, BackendType("").IsValid())
}
