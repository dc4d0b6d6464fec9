package models

import "time"

// Blog domain models
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;unique;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// PostStatuses lists the accepted values for Post.Status.
var PostStatuses = []string{PostStatusDraft, PostStatusPublished}

type Post struct {
	ID    uint   `gorm:"primaryKey"`
	Title string `gorm:"size:100;not null"`
	// Slug is unique per creation day; SlugDate holds the day part so the
	// composite index can enforce it.
	Slug       string   `gorm:"size:250;not null;index:idx_slug_day,unique,priority:1"`
	SlugDate   string   `gorm:"size:10;not null;index:idx_slug_day,unique,priority:2"`
	CategoryID uint     `gorm:"not null;index"`
	Category   Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	Content    string   `gorm:"type:text"`
	Status     string   `gorm:"size:10;not null;default:'draft'"`
	AuthorID   uint     `gorm:"not null;index"`
	Author     User     `gorm:"foreignKey:AuthorID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GetAuthorID makes Post an authored resource for the policy layer.
func (p *Post) GetAuthorID() uint { return p.AuthorID }
