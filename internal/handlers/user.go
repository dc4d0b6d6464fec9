package handlers

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/blog-api/httpx"
	"github.com/diewo77/blog-api/internal/models"
	"github.com/diewo77/blog-api/internal/policy"
	"github.com/diewo77/blog-api/validation"
)

// UserHandler is the account management surface. Every route is wrapped in
// the staff-only gate middleware; no per-resource check is needed here.
type UserHandler struct {
	DB   *gorm.DB
	Gate *policy.AuthGate
}

func NewUserHandler(db *gorm.DB, ag *policy.AuthGate) *UserHandler {
	return &UserHandler{DB: db, Gate: ag}
}

func publicUsers(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, len(users))
	for i := range users {
		out[i] = users[i].Public()
	}
	return out
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	dbq := h.DB.Model(&models.User{})
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		safe := unsafeQueryChars.ReplaceAllString(q, "")
		like := "%" + strings.ToLower(safe) + "%"
		dbq = dbq.Where("lower(username) LIKE ? OR lower(email) LIKE ?", like, like)
	}
	var total int64
	dbq.Count(&total)
	var users []models.User
	if err := dbq.Order("id asc").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_users", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": publicUsers(users), "total": total, "limit": limit, "offset": offset})
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Name     string `json:"name"`
		Password string `json:"password"`
		IsStaff  bool   `json:"is_staff"`
	}
	if !httpx.Decode(w, r, &input) {
		return
	}
	v := validation.Violations{}
	validation.Required("email", input.Email, v)
	validation.Email("email", input.Email, v)
	validation.Required("username", input.Username, v)
	validation.MaxLen("username", input.Username, 150, v)
	validation.Required("password", input.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "hash_failed", nil)
		return
	}
	user := models.User{
		Email:    strings.TrimSpace(input.Email),
		Username: strings.TrimSpace(input.Username),
		Name:     input.Name,
		Password: string(hash),
		IsStaff:  input.IsStaff,
		IsActive: true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusConflict, "account_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "user_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, user.Public())
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		} else {
			httpx.JSONError(w, http.StatusInternalServerError, "user_load_failed", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, user.Public())
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		} else {
			httpx.JSONError(w, http.StatusInternalServerError, "user_load_failed", nil)
		}
		return
	}
	var input struct {
		Name     *string `json:"name"`
		Password *string `json:"password"`
		IsStaff  *bool   `json:"is_staff"`
		IsActive *bool   `json:"is_active"`
	}
	if !httpx.Decode(w, r, &input) {
		return
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "hash_failed", nil)
			return
		}
		user.Password = string(hash)
	}
	flagsChanged := false
	if input.IsStaff != nil && *input.IsStaff != user.IsStaff {
		user.IsStaff = *input.IsStaff
		flagsChanged = true
	}
	if input.IsActive != nil && *input.IsActive != user.IsActive {
		user.IsActive = *input.IsActive
		flagsChanged = true
	}
	if err := h.DB.Save(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "user_update_failed", nil)
		return
	}
	if flagsChanged {
		h.Gate.InvalidateUser(user.ID)
	}
	httpx.JSON(w, http.StatusOK, user.Public())
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if uid, ok := currentUser(r); ok && uid == id {
		httpx.JSONError(w, http.StatusConflict, "cannot_delete_self", nil)
		return
	}
	res := h.DB.Delete(&models.User{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "user_delete_failed", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	}
	h.Gate.InvalidateUser(id)
	httpx.NoContent(w)
}
