package questionnaire

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAnswerShape = errors.New("answer must carry exactly one of selected option or custom text")

// Answer is one user's response to one question. Exactly one of SelectedOptionID
// and CustomText is set.
type Answer struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_answer_user_question;column:user_id" json:"userId"`
	QuestionID       uint      `gorm:"not null;uniqueIndex:idx_answer_user_question;column:question_id" json:"questionId"`
	SelectedOptionID *uint     `gorm:"column:selected_option_id" json:"selectedOptionId,omitempty"`
	CustomText       *string   `gorm:"column:custom_text" json:"customText,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (Answer) TableName() string { return "answer" }

func (a *Answer) Validate() error {
	hasOption := a.SelectedOptionID != nil
	hasText := a.CustomText != nil && strings.TrimSpace(*a.CustomText) != ""
	if hasOption == hasText {
		return ErrAnswerShape
	}
	return nil
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return a.Validate()
}

func (a *Answer) BeforeUpdate(tx *gorm.DB) error {
	return a.Validate()
}
