package services

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/blog-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbi.AutoMigrate(&models.User{}, &models.Category{}, &models.Post{}, &models.BookAuthor{}, &models.Publisher{}, &models.Book{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbi
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello World", "hello-world"},
		{"  Déjà vu!  ", "d-j-vu"},
		{"already-slugged", "already-slugged"},
		{"CAPS and 123", "caps-and-123"},
		{"!!!", "post"},
		{"", "post"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUniqueSlugSuffixesPerDay(t *testing.T) {
	dbi := setupTestDB(t)
	s := NewPostService(dbi)
	u := models.User{Email: "a@test", Username: "a", Password: "x"}
	dbi.Create(&u)
	c := models.Category{Name: "general"}
	dbi.Create(&c)

	first, err := s.Create(u.ID, "Same title", "one", c.ID, "")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := s.Create(u.ID, "Same title", "two", c.ID, "")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Slug != "same-title" {
		t.Fatalf("first slug %q", first.Slug)
	}
	if second.Slug != "same-title-2" {
		t.Fatalf("second slug %q", second.Slug)
	}

	// A different day leaves the base slug free again.
	slug, err := s.UniqueSlug("Same title", time.Now().AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("next day: %v", err)
	}
	if slug != "same-title" {
		t.Fatalf("expected base slug free on another day, got %q", slug)
	}
}

func TestCreateDefaultsToDraft(t *testing.T) {
	dbi := setupTestDB(t)
	s := NewPostService(dbi)
	u := models.User{Email: "a@test", Username: "a", Password: "x"}
	dbi.Create(&u)
	c := models.Category{Name: "general"}
	dbi.Create(&c)

	p, err := s.Create(u.ID, "Title", "body", c.ID, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Status != models.PostStatusDraft {
		t.Fatalf("expected draft, got %q", p.Status)
	}

	if err := s.Publish(p); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if p.Status != models.PostStatusPublished {
		t.Fatalf("expected published, got %q", p.Status)
	}
	// publishing twice is a no-op
	if err := s.Publish(p); err != nil {
		t.Fatalf("republish: %v", err)
	}
}
