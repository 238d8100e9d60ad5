package documents

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const StatusCompleted = "completed"

// Where the rendered text came from.
const (
	TextSourceExplicit  = "explicit"
	TextSourceCached    = "cached"
	TextSourceGenerated = "generated"
)

// GenerationMetadata is stored as JSON on the artifact row.
type GenerationMetadata struct {
	Title       string `json:"title"`
	TemplateIDs []uint `json:"templateIds"`
	ExtraNotes  bool   `json:"extraNotes"`
	TextSource  string `json:"textSource"`
}

// Artifact is the metadata row for one rendered document. Rows are never updated.
type Artifact struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index;column:owner_id" json:"-"`
	FileName    string         `gorm:"not null;uniqueIndex;column:file_name" json:"FileName"`
	FilePath    string         `gorm:"not null;column:file_path" json:"FilePath"`
	StorageMode string         `gorm:"not null;column:storage_mode" json:"StorageMode"`
	ContentType string         `gorm:"not null;column:content_type" json:"ContentType"`
	SizeBytes   int64          `gorm:"not null;column:size_bytes" json:"SizeBytes"`
	Status      string         `gorm:"not null;column:status" json:"Status"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"Metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index;autoCreateTime" json:"CreatedAt"`
}

func (Artifact) TableName() string { return "artifact" }

func (a *Artifact) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *Artifact) SetGeneration(m GenerationMetadata) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	a.Metadata = datatypes.JSON(raw)
	return nil
}

// Generation decodes the stored metadata; rows without any return nil.
func (a *Artifact) Generation() (*GenerationMetadata, error) {
	if len(a.Metadata) == 0 {
		return nil, nil
	}
	var m GenerationMetadata
	if err := json.Unmarshal(a.Metadata, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
