package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	types "github.com/yungbote/nexovate-backend/internal/domain"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

//go:embed seed/catalog.yaml
var catalogYAML []byte

type Catalog struct {
	Questions []CatalogQuestion `yaml:"questions"`
	Templates []CatalogTemplate `yaml:"templates"`
	FAQs      []CatalogFAQ      `yaml:"faqs"`
}

type CatalogQuestion struct {
	Key      string   `yaml:"key"`
	Text     string   `yaml:"text"`
	Type     string   `yaml:"type"`
	Optional bool     `yaml:"optional"`
	Options  []string `yaml:"options"`
}

type CatalogTemplate struct {
	Name     string `yaml:"name"`
	ImageURL string `yaml:"image_url"`
}

type CatalogFAQ struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seen := map[string]bool{}
	for i, q := range c.Questions {
		if strings.TrimSpace(q.Key) == "" || strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("catalog question %d: key and text required", i)
		}
		if seen[q.Key] {
			return nil, fmt.Errorf("catalog question %q duplicated", q.Key)
		}
		seen[q.Key] = true
		switch q.Type {
		case types.QuestionTypeMultipleChoice:
			if len(q.Options) == 0 {
				return nil, fmt.Errorf("catalog question %q: multiple_choice needs options", q.Key)
			}
		case types.QuestionTypeTextInput:
		default:
			return nil, fmt.Errorf("catalog question %q: unknown type %q", q.Key, q.Type)
		}
	}
	return &c, nil
}

func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// SeedCatalog inserts questions, templates and FAQs that are not present yet.
// Existing rows are matched by question key, template image URL and FAQ text, and left alone.
func SeedCatalog(ctx context.Context, db *gorm.DB, log *logger.Logger, c *Catalog) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created := 0
		for i, cq := range c.Questions {
			var n int64
			if err := tx.Model(&types.Question{}).Where("question_key = ?", cq.Key).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			q := types.Question{
				Key:       cq.Key,
				Text:      cq.Text,
				Type:      cq.Type,
				Required:  !cq.Optional,
				SortOrder: i + 1,
				Active:    true,
			}
			for j, opt := range cq.Options {
				q.Options = append(q.Options, types.QuestionOption{
					Text:      opt,
					IsCustom:  strings.EqualFold(opt, "other"),
					SortOrder: j + 1,
				})
			}
			if err := tx.Create(&q).Error; err != nil {
				return fmt.Errorf("seed question %q: %w", cq.Key, err)
			}
			created++
		}
		for _, ct := range c.Templates {
			var n int64
			if err := tx.Model(&types.Template{}).Where("image_url = ?", ct.ImageURL).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			if err := tx.Create(&types.Template{Name: ct.Name, ImageURL: ct.ImageURL, Active: true}).Error; err != nil {
				return fmt.Errorf("seed template %q: %w", ct.Name, err)
			}
			created++
		}
		for i, cf := range c.FAQs {
			var n int64
			if err := tx.Model(&types.FAQ{}).Where("question = ?", cf.Question).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			if err := tx.Create(&types.FAQ{Question: cf.Question, Answer: cf.Answer, SortOrder: i + 1, Active: true}).Error; err != nil {
				return fmt.Errorf("seed faq: %w", err)
			}
			created++
		}
		if log != nil {
			log.Info("Catalog seeded", "created", created)
		}
		return nil
	})
}
