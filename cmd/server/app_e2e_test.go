package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/blog-api/internal/db"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:e2e_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbi.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ts := httptest.NewServer(NewApp(dbi))
	t.Cleanup(ts.Close)
	return ts
}

func jsonUint(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := c.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

// Full happy-path walk: two users sign up, the first writes a post, the
// second can read it but cannot modify or delete it.
func TestBlogFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t)
	bob := newClient(t)

	resp := postJSON(t, alice, ts.URL+"/signup", map[string]string{
		"email": "alice@example.com", "username": "alice", "password": "s3cret",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("alice signup: expected 201 got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, bob, ts.URL+"/signup", map[string]string{
		"email": "bob@example.com", "username": "bob", "password": "s3cret",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("bob signup: expected 201 got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// alice creates a category and a post
	resp = postJSON(t, alice, ts.URL+"/v1/categories", map[string]string{"name": "general"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("category: expected 201 got %d", resp.StatusCode)
	}
	var cat struct {
		ID uint `json:"id"`
	}
	decodeBody(t, resp, &cat)

	resp = postJSON(t, alice, ts.URL+"/v1/posts", map[string]any{
		"title": "Hello from Alice", "content": "first!", "category_id": cat.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("post create: expected 201 got %d", resp.StatusCode)
	}
	var post struct {
		ID   uint   `json:"id"`
		Slug string `json:"slug"`
	}
	decodeBody(t, resp, &post)
	if post.Slug != "hello-from-alice" {
		t.Fatalf("unexpected slug %q", post.Slug)
	}

	postURL := ts.URL + "/v1/posts/" + jsonUint(post.ID)

	// bob can read it
	getResp, err := bob.Get(postURL)
	if err != nil {
		t.Fatalf("bob GET: %v", err)
	}
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("bob GET: expected 200 got %d", getResp.StatusCode)
	}
	getResp.Body.Close()

	// but bob cannot update it
	req, _ := http.NewRequest(http.MethodPut, postURL, bytes.NewReader([]byte(`{"content":"hijacked"}`)))
	req.Header.Set("Content-Type", "application/json")
	putResp, err := bob.Do(req)
	if err != nil {
		t.Fatalf("bob PUT: %v", err)
	}
	if putResp.StatusCode != http.StatusForbidden {
		t.Fatalf("bob PUT: expected 403 got %d", putResp.StatusCode)
	}
	putResp.Body.Close()

	// nor delete it
	delReq, _ := http.NewRequest(http.MethodDelete, postURL, nil)
	delResp, err := bob.Do(delReq)
	if err != nil {
		t.Fatalf("bob DELETE: %v", err)
	}
	if delResp.StatusCode != http.StatusForbidden {
		t.Fatalf("bob DELETE: expected 403 got %d", delResp.StatusCode)
	}
	delResp.Body.Close()

	// alice publishes and deletes her own post
	pubResp := postJSON(t, alice, postURL+"/publish", map[string]any{})
	if pubResp.StatusCode != http.StatusOK {
		t.Fatalf("publish: expected 200 got %d", pubResp.StatusCode)
	}
	pubResp.Body.Close()

	delReq2, _ := http.NewRequest(http.MethodDelete, postURL, nil)
	delResp2, err := alice.Do(delReq2)
	if err != nil {
		t.Fatalf("alice DELETE: %v", err)
	}
	if delResp2.StatusCode != http.StatusNoContent {
		t.Fatalf("alice DELETE: expected 204 got %d", delResp2.StatusCode)
	}
	delResp2.Body.Close()
}

// Anonymous requests never reach the API surface.
func TestAnonymousGetsUnauthorized(t *testing.T) {
	ts := newTestServer(t)
	plain := &http.Client{}

	for _, path := range []string{"/v1/posts", "/v1/categories", "/v1/books", "/v1/users"} {
		resp, err := plain.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s: expected 401 got %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestTokenFlow(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	resp := postJSON(t, c, ts.URL+"/signup", map[string]string{
		"email": "cli@example.com", "username": "cli", "password": "s3cret",
	})
	resp.Body.Close()

	resp = postJSON(t, &http.Client{}, ts.URL+"/token", map[string]string{
		"email": "cli@example.com", "password": "s3cret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token: expected 200 got %d", resp.StatusCode)
	}
	var tok struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}
	decodeBody(t, resp, &tok)
	if tok.TokenType != "Bearer" || tok.Token == "" {
		t.Fatalf("unexpected token payload: %+v", tok)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/posts", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	listResp, err := (&http.Client{}).Do(req)
	if err != nil {
		t.Fatalf("bearer GET: %v", err)
	}
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("bearer GET: expected 200 got %d", listResp.StatusCode)
	}
	listResp.Body.Close()
}
