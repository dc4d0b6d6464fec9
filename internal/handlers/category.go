package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/blog-api/httpx"
	"github.com/diewo77/blog-api/internal/models"
	"github.com/diewo77/blog-api/validation"
)

type CategoryHandler struct{ DB *gorm.DB }

func NewCategoryHandler(db *gorm.DB) *CategoryHandler { return &CategoryHandler{DB: db} }

func (h *CategoryHandler) List(w http.ResponseWriter, _ *http.Request) {
	var categories []models.Category
	if err := h.DB.Order("name asc").Find(&categories).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_categories", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": categories, "total": len(categories)})
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if !httpx.Decode(w, r, &input) {
		return
	}
	name := strings.TrimSpace(input.Name)
	v := validation.Violations{}
	validation.Required("name", name, v)
	validation.MaxLen("name", name, 100, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.Category{Name: name}
	if err := h.DB.Create(&c).Error; err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusConflict, "category_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "category_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

// Delete refuses to remove a category that still has posts, mirroring the
// restrict constraint at the application level so sqlite behaves like postgres.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var count int64
	if err := h.DB.Model(&models.Post{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "category_delete_failed", nil)
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "category_in_use", nil)
		return
	}
	res := h.DB.Delete(&models.Category{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "category_delete_failed", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "category_not_found", nil)
		return
	}
	httpx.NoContent(w)
}
