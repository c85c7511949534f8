package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchivosEmbebidos_TienenUpYDown(t *testing.T) {
	names, err := fs.Glob(files, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		body, err := fs.ReadFile(files, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestEsquema_RestriccionesDelLibro(t *testing.T) {
	body, err := fs.ReadFile(files, "00001_costing_ledger.sql")
	require.NoError(t, err)
	sql := string(body)

	// el saldo de una capa nunca es negativo ni supera lo recibido
	assert.True(t, strings.Contains(sql, "quantity_remaining >= 0 AND quantity_remaining <= quantity_received"))
	assert.Contains(t, sql, "GENERATED ALWAYS AS IDENTITY")
	assert.Contains(t, sql, "PRIMARY KEY (product_id, variant_id)")
}
