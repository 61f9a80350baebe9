// Package audit appends immutable records of governed mutations.
package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"herald/internal/models"
)

// Recorder writes audit rows. It is safe for concurrent use; each call is a
// single insert.
type Recorder struct {
	orm *gorm.DB
}

// NewRecorder builds a Recorder on the given GORM handle.
func NewRecorder(orm *gorm.DB) *Recorder {
	return &Recorder{orm: orm}
}

// Record appends one audit row. actorID may be nil for system actions.
// oldValues/newValues are snapshotted as JSONB; nil skips the column.
func (r *Recorder) Record(ctx context.Context, actorID *uuid.UUID, action, targetType string, targetID string, oldValues, newValues any) error {
	row := models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
	}
	if targetID != "" {
		row.TargetID = &targetID
	}

	var err error
	if row.OldValues, err = snapshot(oldValues); err != nil {
		return err
	}
	if row.NewValues, err = snapshot(newValues); err != nil {
		return err
	}

	return r.orm.WithContext(ctx).Create(&row).Error
}

// MustRecord is Record for paths where the mutation already committed: a
// failed audit write is logged, not surfaced, so the caller's success stands.
func (r *Recorder) MustRecord(ctx context.Context, actorID *uuid.UUID, action, targetType string, targetID string, oldValues, newValues any) {
	if err := r.Record(ctx, actorID, action, targetType, targetID, oldValues, newValues); err != nil {
		log.Error().Err(err).Str("action", action).Str("target", targetType).Msg("audit write failed")
	}
}

func snapshot(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
