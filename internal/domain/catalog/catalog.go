package catalog

type Template struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"not null;column:name" json:"name"`
	ImageURL string `gorm:"not null;column:image_url" json:"imageUrl"`
	Active   bool   `gorm:"not null;column:active" json:"-"`
}

func (Template) TableName() string { return "template" }

type FAQ struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Question  string `gorm:"not null;column:question" json:"question"`
	Answer    string `gorm:"not null;column:answer" json:"answer"`
	SortOrder int    `gorm:"not null;default:0;column:sort_order" json:"-"`
	Active    bool   `gorm:"not null;column:active" json:"-"`
}

func (FAQ) TableName() string { return "faq" }
