package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []any{
	&Session{},
	&IndexSample{},
}

// Session records one run of the index and the parameters it was built with
type Session struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	StartedAt        time.Time `json:"startedAt" gorm:"index:idx_session_started_at"`
	Host             string    `json:"host" gorm:"size:255"`
	Capacity         int       `json:"capacity"`
	SpaceResolution  float64   `json:"spaceResolution"`
	TimeResolutionMs int64     `json:"timeResolutionMs"`
}

func (*Session) TableName() string {
	return "sessions"
}

// IndexSample is one periodic snapshot of index statistics. Slice contents
// are never stored, only their occupancy counts.
type IndexSample struct {
	ID             uint           `json:"id" gorm:"primarykey;autoIncrement"`
	SessionID      uuid.UUID      `json:"sessionId" gorm:"type:uuid;index:idx_sample_session_id"`
	Session        Session        `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	SampledAt      time.Time      `json:"sampledAt" gorm:"index:idx_sample_sampled_at"`
	CurrentSlice   time.Time      `json:"currentSlice"`
	OldestSlice    time.Time      `json:"oldestSlice"`
	Retained       int            `json:"retained"`
	Capacity       int            `json:"capacity"`
	OccupiedCells  int            `json:"occupiedCells"`
	Advances       uint64         `json:"advances"`
	Evictions      uint64         `json:"evictions"`
	AutoStep       bool           `json:"autoStep"`
	SliceOccupancy datatypes.JSON `json:"sliceOccupancy"`
}

func (*IndexSample) TableName() string {
	return "index_samples"
}
