package documents

import (
	"time"

	"github.com/google/uuid"
)

type Draft struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id" json:"userId"`
	Text      string    `gorm:"type:text;not null;column:text" json:"text"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (Draft) TableName() string { return "draft" }
