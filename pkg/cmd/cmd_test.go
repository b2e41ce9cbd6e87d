package cmd

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dukex/flowsuite/pkg/persistence"
	"github.com/dukex/flowsuite/pkg/persistence/file"
	"github.com/dukex/flowsuite/pkg/persistence/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePersistenceProvider(t *testing.T) {
	tests := []struct {
		url      string
		provider string
		wantErr  bool
	}{
		{url: "./data", provider: "file"},
		{url: "file:///var/lib/flowsuite", provider: "file"},
		{url: "postgres://u:p@localhost/db", provider: "postgres"},
		{url: "postgresql://u:p@localhost/db", provider: "postgresql"},
		{url: "sqlite://:memory:", provider: "sqlite"},
		{url: "redis://localhost:6379/0", provider: "redis"},
		{url: "mongodb://localhost", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			provider, err := parsePersistenceProvider(tt.url)

			if tt.wantErr {
				assert.ErrorIs(t, err, persistence.ErrUnsupportedScheme)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.provider, provider)
		})
	}
}

func TestNewPersistence_File(t *testing.T) {
	p, err := NewPersistence(t.Context(), slog.New(slog.DiscardHandler), "file://"+filepath.Join(t.TempDir(), "data"))

	require.NoError(t, err)
	assert.IsType(t, &file.Persistence{}, p)
}

func TestNewPersistence_SQLite(t *testing.T) {
	p, err := NewPersistence(t.Context(), slog.New(slog.DiscardHandler), "sqlite://:memory:")

	require.NoError(t, err)
	assert.IsType(t, &sqlite.Persistence{}, p)
	assert.NoError(t, p.Close(t.Context()))
}

func TestNewEventBus(t *testing.T) {
	bus, err := NewEventBus("gochannel", nil, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.NoError(t, bus.Close())

	_, err = NewEventBus("kafka", nil, slog.New(slog.DiscardHandler))
	assert.Error(t, err)

	_, err = NewEventBus("carrier-pigeon", nil, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}
