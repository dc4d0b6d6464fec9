package services

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/diewo77/blog-api/internal/models"
	"gorm.io/gorm"
)

// PostService encapsulates post creation logic, mostly slug handling.
type PostService struct {
	DB *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService { return &PostService{DB: db} }

// Slugify turns a title into a URL-safe slug: lowercase ASCII letters and
// digits joined by single dashes, capped at 250 chars.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	s := strings.Trim(b.String(), "-")
	if len(s) > 250 {
		s = strings.Trim(s[:250], "-")
	}
	if s == "" {
		s = "post"
	}
	return s
}

// UniqueSlug returns a slug free on the given day, appending -2, -3, ... when taken.
func (s *PostService) UniqueSlug(title string, day time.Time) (string, error) {
	base := Slugify(title)
	date := day.Format("2006-01-02")
	slug := base
	for i := 2; ; i++ {
		var count int64
		if err := s.DB.Model(&models.Post{}).
			Where("slug = ? AND slug_date = ?", slug, date).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
		// keep within the column size even for long base slugs
		if len(slug) > 250 {
			cut := 250 - len(fmt.Sprintf("-%d", i))
			slug = fmt.Sprintf("%s-%d", base[:cut], i)
		}
	}
}

// Create builds and stores a post for the given author. Status defaults to draft.
func (s *PostService) Create(authorID uint, title, content string, categoryID uint, status string) (*models.Post, error) {
	if status == "" {
		status = models.PostStatusDraft
	}
	now := time.Now()
	slug, err := s.UniqueSlug(title, now)
	if err != nil {
		return nil, err
	}
	p := models.Post{
		Title:      title,
		Slug:       slug,
		SlugDate:   now.Format("2006-01-02"),
		CategoryID: categoryID,
		Content:    content,
		Status:     status,
		AuthorID:   authorID,
	}
	if err := s.DB.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Publish flips a draft to published. Publishing an already published post is a no-op.
func (s *PostService) Publish(p *models.Post) error {
	if p.Status == models.PostStatusPublished {
		return nil
	}
	p.Status = models.PostStatusPublished
	return s.DB.Model(p).Update("status", models.PostStatusPublished).Error
}
