package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/blog-api/internal/models"
)

func TestUserCreateAndList(t *testing.T) {
	dbi := setupTestDB(t)
	h := NewUserHandler(dbi, newGate(dbi))

	req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(`{"email":"carol@example.com","username":"carol","name":"Carol","password":"pw","is_staff":true}`))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created models.PublicUser
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !created.IsStaff {
		t.Fatal("is_staff flag should be honored on create")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/v1/users?q=carol", nil)
	w2 := httptest.NewRecorder()
	h.List(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", w2.Code)
	}
	var payload struct {
		Items []models.PublicUser `json:"items"`
		Total int64               `json:"total"`
	}
	if err := json.Unmarshal(w2.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if payload.Total != 1 || len(payload.Items) != 1 {
		t.Fatalf("expected 1 user, got %d", payload.Total)
	}
	if strings.Contains(w2.Body.String(), "pw") && strings.Contains(w2.Body.String(), "Password") {
		t.Fatal("password material leaked into list response")
	}
}

func TestUserUpdateFlagsInvalidateStaffCache(t *testing.T) {
	dbi := setupTestDB(t)
	ag := newGate(dbi)
	h := NewUserHandler(dbi, ag)
	carol := createUser(t, dbi, "carol", true)

	// Warm the cache through a staff-gated middleware pass.
	gated := ag.Require("user")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	reqWarm := asUser(httptest.NewRequest(http.MethodGet, "/v1/users", nil), carol.ID)
	wWarm := httptest.NewRecorder()
	gated.ServeHTTP(wWarm, reqWarm)
	if wWarm.Code != http.StatusOK {
		t.Fatalf("staff user should pass gate, got %d", wWarm.Code)
	}

	// Demote carol through the handler; the cached staff answer must be dropped.
	req := httptest.NewRequest(http.MethodPatch, "/v1/users/1", strings.NewReader(`{"is_staff":false}`))
	req.SetPathValue("id", jsonUint(carol.ID))
	w := httptest.NewRecorder()
	h.Update(w, asUser(req, carol.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	wAfter := httptest.NewRecorder()
	gated.ServeHTTP(wAfter, asUser(httptest.NewRequest(http.MethodGet, "/v1/users", nil), carol.ID))
	if wAfter.Code != http.StatusForbidden {
		t.Fatalf("demoted user should be rejected, got %d", wAfter.Code)
	}
}

func TestUserCannotDeleteSelf(t *testing.T) {
	dbi := setupTestDB(t)
	h := NewUserHandler(dbi, newGate(dbi))
	admin := createUser(t, dbi, "admin", true)

	req := httptest.NewRequest(http.MethodDelete, "/v1/users/1", nil)
	req.SetPathValue("id", jsonUint(admin.ID))
	w := httptest.NewRecorder()
	h.Delete(w, asUser(req, admin.ID))
	if w.Code != http.StatusConflict {
		t.Fatalf("self-delete: expected 409 got %d", w.Code)
	}
}
