package handlers

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/blog-api/auth"
	"github.com/diewo77/blog-api/httpx"
	"github.com/diewo77/blog-api/internal/models"
	"github.com/diewo77/blog-api/validation"
)

type AuthHandler struct{ DB *gorm.DB }

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /signup", h.signup)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /logout", h.logout)
	mux.HandleFunc("POST /token", h.token)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(strings.ToLower(err.Error()), "unique") ||
		strings.Contains(strings.ToLower(err.Error()), "duplicate")
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if !httpx.Decode(w, r, &input) {
		return
	}
	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.TrimSpace(input.Username)
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
	user := models.User{Email: input.Email, Username: input.Username, Name: input.Name, Password: string(hash), IsActive: true}
	if err := h.DB.Create(&user).Error; err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusConflict, "account_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "signup_failed", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user.Public())
}

// checkCredentials resolves email+password to a user, nil when they don't match.
func (h *AuthHandler) checkCredentials(email, password string) *models.User {
	var user models.User
	if err := h.DB.Where("email = ?", strings.TrimSpace(email)).First(&user).Error; err != nil {
		return nil
	}
	if !user.IsActive {
		return nil
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil
	}
	return &user
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httpx.Decode(w, r, &input) {
		return
	}
	user := h.checkCredentials(input.Email, input.Password)
	if user == nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user.Public())
}

func (h *AuthHandler) logout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearSession(w)
	httpx.NoContent(w)
}

// token exchanges credentials for a bearer token so API clients can skip cookies.
func (h *AuthHandler) token(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httpx.Decode(w, r, &input) {
		return
	}
	user := h.checkCredentials(input.Email, input.Password)
	if user == nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	tok, err := auth.IssueToken(user.ID, auth.DefaultTokenTTL)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "token_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"token":      tok,
		"token_type": "Bearer",
		"expires_in": int(auth.DefaultTokenTTL.Seconds()),
	})
}
