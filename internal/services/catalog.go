package services

import (
	"errors"
	"time"

	"github.com/diewo77/blog-api/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPublisherNotFound = errors.New("publisher not found")
	ErrAuthorNotFound    = errors.New("author not found")
	ErrNegativeStock     = errors.New("stock cannot go negative")
)

// CatalogService assembles books with their publisher and author associations.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService { return &CatalogService{DB: db} }

// CreateBook stores a book after resolving its publisher and authors.
// All referenced authors must exist; the many-to-many rows are written by gorm.
func (s *CatalogService) CreateBook(title, isbn string, publisherID uint, authorIDs []uint, pubDate time.Time, price float64, stock int) (*models.Book, error) {
	var publisher models.Publisher
	if err := s.DB.First(&publisher, publisherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPublisherNotFound
		}
		return nil, err
	}
	var authors []models.BookAuthor
	if len(authorIDs) > 0 {
		if err := s.DB.Find(&authors, authorIDs).Error; err != nil {
			return nil, err
		}
		if len(authors) != len(authorIDs) {
			return nil, ErrAuthorNotFound
		}
	}
	b := models.Book{
		Title:           title,
		ISBN:            isbn,
		PublisherID:     publisher.ID,
		Authors:         authors,
		PublicationDate: pubDate,
		Price:           price,
		StockCount:      stock,
	}
	if err := s.DB.Create(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// AdjustStock applies a delta to a book's stock count, refusing to go negative.
func (s *CatalogService) AdjustStock(bookID uint, delta int) (*models.Book, error) {
	var book models.Book
	if err := s.DB.First(&book, bookID).Error; err != nil {
		return nil, err
	}
	next := book.StockCount + delta
	if next < 0 {
		return nil, ErrNegativeStock
	}
	book.StockCount = next
	if err := s.DB.Model(&book).Update("stock_count", next).Error; err != nil {
		return nil, err
	}
	return &book, nil
}
