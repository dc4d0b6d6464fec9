package models

import "time"

// Bookstore catalog models
type BookAuthor struct {
	ID        uint   `gorm:"primaryKey"`
	FirstName string `gorm:"size:100;not null"`
	LastName  string `gorm:"size:100;not null"`
	BirthDate *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Publisher struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:200;not null"`
	Website   string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Book struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"size:200;not null"`
	ISBN        string    `gorm:"size:13;unique;not null"` // 13 chiffres, somme de contrôle vérifiée
	PublisherID uint      `gorm:"not null;index"`
	Publisher   Publisher `gorm:"foreignKey:PublisherID;constraint:OnDelete:CASCADE"`
	// Un livre peut avoir plusieurs auteurs
	Authors         []BookAuthor `gorm:"many2many:book_authors_link"`
	PublicationDate time.Time
	Price           float64 `gorm:"not null"`
	StockCount      int     `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
