package catalog

import (
	"context"
	"testing"

	"github.com/yungbote/nexovate-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nexovate-backend/internal/domain"
)

func TestTemplateRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	tpl := testutil.SeedTemplate(t, ctx, tx, "https://img.example/7.webp")
	inactive := &types.Template{Name: "old", ImageURL: "https://img.example/old.webp", Active: false}
	if err := tx.Create(inactive).Error; err != nil {
		t.Fatalf("seed inactive: %v", err)
	}

	repo := NewTemplateRepo(db, testutil.Logger(t))
	ok, err := repo.Exists(ctx, tx, tpl.ID)
	if err != nil || !ok {
		t.Fatalf("Exists: %v %v", ok, err)
	}
	ok, err = repo.Exists(ctx, tx, inactive.ID)
	if err != nil || ok {
		t.Fatalf("Exists(inactive): %v %v", ok, err)
	}
	ok, err = repo.Exists(ctx, tx, 999999)
	if err != nil || ok {
		t.Fatalf("Exists(missing): %v %v", ok, err)
	}

	got, err := repo.GetByIDs(ctx, tx, []uint{tpl.ID})
	if err != nil || len(got) != 1 || got[0].ImageURL != tpl.ImageURL {
		t.Fatalf("GetByIDs: %+v %v", got, err)
	}
	active, err := repo.ListActive(ctx, tx)
	if err != nil || len(active) != 1 {
		t.Fatalf("ListActive: %d %v", len(active), err)
	}
}

func TestFAQRepoOrdersBySortOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	for _, f := range []*types.FAQ{
		{Question: "second", Answer: "b", SortOrder: 2, Active: true},
		{Question: "first", Answer: "a", SortOrder: 1, Active: true},
		{Question: "hidden", Answer: "c", SortOrder: 0, Active: false},
	} {
		if err := tx.Create(f).Error; err != nil {
			t.Fatalf("seed faq: %v", err)
		}
	}

	got, err := NewFAQRepo(db, testutil.Logger(t)).ListActive(ctx, tx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(got) != 2 || got[0].Question != "first" || got[1].Question != "second" {
		t.Fatalf("unexpected faqs: %+v", got)
	}
}
