package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/blog-api/auth"
	"github.com/diewo77/blog-api/httpx"
	"github.com/diewo77/blog-api/internal/models"
	"github.com/diewo77/blog-api/internal/policy"
	"github.com/diewo77/blog-api/internal/services"
	"github.com/diewo77/blog-api/validation"
)

type PostHandler struct {
	DB   *gorm.DB
	Gate *policy.AuthGate
	Svc  *services.PostService
}

func NewPostHandler(db *gorm.DB, ag *policy.AuthGate) *PostHandler {
	return &PostHandler{DB: db, Gate: ag, Svc: services.NewPostService(db)}
}

var unsafeQueryChars = regexp.MustCompile(`[^a-zA-Z0-9 \-_]`)

// currentUser returns the authenticated user id attached by the auth middleware.
func currentUser(r *http.Request) (uint, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	return uid, ok && uid != 0
}

// pagination reads limit/page query params the same way across list endpoints.
func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return limit, offset
}

// pathID parses the {id} path segment; writes a 400 and returns false on garbage.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id64, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id64 == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id64), true
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	dbq := h.DB.Model(&models.Post{})
	if status := r.URL.Query().Get("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	if cat := r.URL.Query().Get("category"); cat != "" {
		if catID, err := strconv.ParseUint(cat, 10, 64); err == nil {
			dbq = dbq.Where("category_id = ?", catID)
		} else {
			dbq = dbq.Joins("JOIN categories ON categories.id = posts.category_id").
				Where("categories.name = ?", cat)
		}
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		safe := unsafeQueryChars.ReplaceAllString(q, "")
		like := "%" + strings.ToLower(safe) + "%"
		dbq = dbq.Where("lower(title) LIKE ? OR lower(slug) LIKE ?", like, like)
	}
	var total int64
	dbq.Count(&total)
	var posts []models.Post
	if err := dbq.Preload("Category").
		Order("posts.id desc").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_posts", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": posts, "total": total, "limit": limit, "offset": offset})
}

type postInput struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	CategoryID *uint   `json:"category_id"`
	Status     *string `json:"status"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input postInput
	if !httpx.Decode(w, r, &input) {
		return
	}
	var title, content, status string
	var categoryID uint
	if input.Title != nil {
		title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		content = *input.Content
	}
	if input.Status != nil {
		status = *input.Status
	}
	if input.CategoryID != nil {
		categoryID = *input.CategoryID
	}
	v := validation.Violations{}
	validation.Required("title", title, v)
	validation.MaxLen("title", title, 100, v)
	validation.NoAllCaps("title", title, v)
	validation.Required("content", content, v)
	if status != "" {
		validation.OneOf("status", status, models.PostStatuses, v)
	}
	if categoryID == 0 {
		v["category_id"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var category models.Category
	if err := h.DB.First(&category, categoryID).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_category", nil)
		return
	}
	uid, ok := currentUser(r)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	p, err := h.Svc.Create(uid, title, content, categoryID, status)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "post_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// load fetches the post and runs the instance-level check for the request's
// method. The collection-level check already ran in the route middleware.
func (h *PostHandler) load(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	var post models.Post
	if err := h.DB.Preload("Category").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "post_not_found", nil)
		} else {
			httpx.JSONError(w, http.StatusInternalServerError, "post_load_failed", nil)
		}
		return nil, false
	}
	action := policy.ActionForMethod(r.Method, true)
	if err := h.Gate.Authorize(r.Context(), action, "post", &post); err != nil {
		httpx.JSONError(w, http.StatusForbidden, "forbidden_not_author", nil)
		return nil, false
	}
	return &post, true
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	post, ok := h.load(w, r)
	if !ok {
		return
	}
	var input postInput
	if !httpx.Decode(w, r, &input) {
		return
	}
	v := validation.Violations{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		validation.Required("title", title, v)
		validation.MaxLen("title", title, 100, v)
		validation.NoAllCaps("title", title, v)
		post.Title = title
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	if input.Status != nil {
		validation.OneOf("status", *input.Status, models.PostStatuses, v)
		post.Status = *input.Status
	}
	if input.CategoryID != nil {
		var category models.Category
		if err := h.DB.First(&category, *input.CategoryID).Error; err != nil {
			v["category_id"] = "unknown_category"
		} else {
			post.CategoryID = category.ID
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.DB.Save(post).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "post_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	post, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.DB.Delete(post).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "post_delete_failed", nil)
		return
	}
	httpx.NoContent(w)
}

// Publish moves a draft to published. POST, so the authorship check applies.
func (h *PostHandler) Publish(w http.ResponseWriter, r *http.Request) {
	post, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Publish(post); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "post_publish_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}
