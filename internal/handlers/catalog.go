package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/blog-api/httpx"
	"github.com/diewo77/blog-api/internal/models"
	"github.com/diewo77/blog-api/internal/services"
	"github.com/diewo77/blog-api/validation"
)

// CatalogHandler covers the bookstore surface: books, their authors, publishers.
type CatalogHandler struct {
	DB  *gorm.DB
	Svc *services.CatalogService
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{DB: db, Svc: services.NewCatalogService(db)}
}

const dateLayout = "2006-01-02"

func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	dbq := h.DB.Model(&models.Book{})
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		safe := unsafeQueryChars.ReplaceAllString(q, "")
		like := "%" + strings.ToLower(safe) + "%"
		dbq = dbq.Where("lower(title) LIKE ? OR isbn LIKE ?", like, like)
	}
	var total int64
	dbq.Count(&total)
	var books []models.Book
	if err := dbq.Preload("Publisher").Preload("Authors").
		Order("id desc").Limit(limit).Offset(offset).
		Find(&books).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_books", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": books, "total": total, "limit": limit, "offset": offset})
}

func (h *CatalogHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title           string  `json:"title"`
		ISBN            string  `json:"isbn"`
		PublisherID     uint    `json:"publisher_id"`
		AuthorIDs       []uint  `json:"author_ids"`
		PublicationDate string  `json:"publication_date"`
		Price           float64 `json:"price"`
		StockCount      int     `json:"stock_count"`
	}
	if !httpx.Decode(w, r, &input) {
		return
	}
	input.Title = strings.TrimSpace(input.Title)
	input.ISBN = strings.TrimSpace(input.ISBN)
	v := validation.Violations{}
	validation.Required("title", input.Title, v)
	validation.MaxLen("title", input.Title, 200, v)
	validation.ISBN13("isbn", input.ISBN, v)
	validation.PositiveFloat("price", input.Price, v)
	validation.NonNegativeInt("stock_count", input.StockCount, v)
	if input.PublisherID == 0 {
		v["publisher_id"] = "required"
	}
	pubDate, err := time.Parse(dateLayout, input.PublicationDate)
	if err != nil {
		v["publication_date"] = "invalid_date"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	book, err := h.Svc.CreateBook(input.Title, input.ISBN, input.PublisherID, input.AuthorIDs, pubDate, input.Price, input.StockCount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPublisherNotFound):
			httpx.JSONError(w, http.StatusBadRequest, "unknown_publisher", nil)
		case errors.Is(err, services.ErrAuthorNotFound):
			httpx.JSONError(w, http.StatusBadRequest, "unknown_author", nil)
		case isDuplicate(err):
			httpx.JSONError(w, http.StatusConflict, "isbn_already_exists", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "book_create_failed", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, book)
}

func (h *CatalogHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var book models.Book
	if err := h.DB.Preload("Publisher").Preload("Authors").First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "book_not_found", nil)
		} else {
			httpx.JSONError(w, http.StatusInternalServerError, "book_load_failed", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

func (h *CatalogHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var book models.Book
	if err := h.DB.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "book_not_found", nil)
		} else {
			httpx.JSONError(w, http.StatusInternalServerError, "book_load_failed", nil)
		}
		return
	}
	var input struct {
		Title      *string  `json:"title"`
		Price      *float64 `json:"price"`
		StockCount *int     `json:"stock_count"`
	}
	if !httpx.Decode(w, r, &input) {
		return
	}
	v := validation.Violations{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		validation.Required("title", title, v)
		validation.MaxLen("title", title, 200, v)
		book.Title = title
	}
	if input.Price != nil {
		validation.PositiveFloat("price", *input.Price, v)
		book.Price = *input.Price
	}
	if input.StockCount != nil {
		validation.NonNegativeInt("stock_count", *input.StockCount, v)
		book.StockCount = *input.StockCount
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.DB.Save(&book).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "book_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

// AdjustStock applies a signed delta to a book's stock count. Restocks are
// positive, sales negative; the service refuses to let the count go below zero.
func (h *CatalogHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input struct {
		Delta int `json:"delta"`
	}
	if !httpx.Decode(w, r, &input) {
		return
	}
	book, err := h.Svc.AdjustStock(id, input.Delta)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			httpx.JSONError(w, http.StatusNotFound, "book_not_found", nil)
		case errors.Is(err, services.ErrNegativeStock):
			httpx.JSONError(w, http.StatusBadRequest, "stock_cannot_go_negative", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "stock_adjust_failed", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

func (h *CatalogHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res := h.DB.Select("Authors").Delete(&models.Book{ID: id})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "book_delete_failed", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "book_not_found", nil)
		return
	}
	httpx.NoContent(w)
}

func (h *CatalogHandler) ListAuthors(w http.ResponseWriter, _ *http.Request) {
	var authors []models.BookAuthor
	if err := h.DB.Order("last_name asc, first_name asc").Find(&authors).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_authors", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": authors, "total": len(authors)})
}

func (h *CatalogHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		BirthDate string `json:"birth_date"`
	}
	if !httpx.Decode(w, r, &input) {
		return
	}
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	v := validation.Violations{}
	validation.Required("first_name", input.FirstName, v)
	validation.MaxLen("first_name", input.FirstName, 100, v)
	validation.Required("last_name", input.LastName, v)
	validation.MaxLen("last_name", input.LastName, 100, v)
	var birth *time.Time
	if input.BirthDate != "" {
		d, err := time.Parse(dateLayout, input.BirthDate)
		if err != nil {
			v["birth_date"] = "invalid_date"
		} else {
			birth = &d
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	a := models.BookAuthor{FirstName: input.FirstName, LastName: input.LastName, BirthDate: birth}
	if err := h.DB.Create(&a).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "author_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *CatalogHandler) ListPublishers(w http.ResponseWriter, _ *http.Request) {
	var publishers []models.Publisher
	if err := h.DB.Order("name asc").Find(&publishers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_publishers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": publishers, "total": len(publishers)})
}

func (h *CatalogHandler) CreatePublisher(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name    string `json:"name"`
		Website string `json:"website"`
		Email   string `json:"email"`
	}
	if !httpx.Decode(w, r, &input) {
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.MaxLen("name", input.Name, 200, v)
	validation.Email("email", input.Email, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p := models.Publisher{Name: input.Name, Website: input.Website, Email: input.Email}
	if err := h.DB.Create(&p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "publisher_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}
