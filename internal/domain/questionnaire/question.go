package questionnaire

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTextInput      = "text_input"
)

// KeyProjectCategory is the question whose answer titles the rendered document.
const KeyProjectCategory = "project_category"

type Question struct {
	ID        uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string           `gorm:"uniqueIndex;not null;column:question_key" json:"key"`
	Text      string           `gorm:"not null;column:text" json:"text"`
	Type      string           `gorm:"not null;column:type" json:"type"`
	Required  bool             `gorm:"not null;column:required" json:"required"`
	SortOrder int              `gorm:"not null;default:0;column:sort_order" json:"sortOrder"`
	Active    bool             `gorm:"not null;index;column:active" json:"-"`
	Options   []QuestionOption `gorm:"foreignKey:QuestionID" json:"options"`
}

func (Question) TableName() string { return "question" }

type QuestionOption struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID uint   `gorm:"not null;index;column:question_id" json:"-"`
	Text       string `gorm:"not null;column:text" json:"text"`
	IsCustom   bool   `gorm:"not null;column:is_custom" json:"isCustom"`
	SortOrder  int    `gorm:"not null;default:0;column:sort_order" json:"-"`
}

func (QuestionOption) TableName() string { return "question_option" }
