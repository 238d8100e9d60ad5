package questionnaire

import (
	"time"

	"github.com/google/uuid"
)

// FinalizationState is created unlocked on first write and flipped to locked once per cycle.
// Cleanup deletes the row, which starts a new cycle.
type FinalizationState struct {
	UserID   uuid.UUID  `gorm:"type:uuid;primaryKey;column:user_id" json:"userId"`
	Locked   bool       `gorm:"not null;default:false;index;column:locked" json:"locked"`
	LockedAt *time.Time `gorm:"column:locked_at" json:"lockedAt,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (FinalizationState) TableName() string { return "finalization_state" }

type TemplateSelection struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id" json:"userId"`
	TemplateID uint      `gorm:"primaryKey;column:template_id" json:"templateId"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (TemplateSelection) TableName() string { return "template_selection" }
