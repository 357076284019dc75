package database

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/spacetime/internal/config"
	"github.com/OCAP2/spacetime/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_UnknownType(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Type: "oracle"}, testLogger())
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestOpenSQLite_MemoryMigrateAndRoundTrip(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Type: "sqlite"}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&model.Session{}))
	assert.True(t, db.Migrator().HasTable(&model.IndexSample{}))

	session := model.Session{
		ID:               uuid.New(),
		StartedAt:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Capacity:         8,
		SpaceResolution:  0.5,
		TimeResolutionMs: 1000,
	}
	require.NoError(t, db.Create(&session).Error)

	sample := model.IndexSample{
		SessionID:      session.ID,
		SampledAt:      session.StartedAt.Add(time.Minute),
		Retained:       3,
		Capacity:       8,
		OccupiedCells:  7,
		Advances:       2,
		SliceOccupancy: datatypes.JSON(`[2,5,0]`),
	}
	require.NoError(t, db.Create(&sample).Error)
	assert.NotZero(t, sample.ID)

	var got model.IndexSample
	require.NoError(t, db.First(&got, "session_id = ?", session.ID).Error)
	assert.Equal(t, session.ID, got.SessionID)
	assert.Equal(t, 7, got.OccupiedCells)
	assert.JSONEq(t, `[2,5,0]`, string(got.SliceOccupancy))
}

func TestOpenSQLite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")

	db, err := OpenSQLite(path, testLogger())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, Close(db))

	assert.FileExists(t, path)
}
