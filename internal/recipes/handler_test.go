package recipes_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/cookbook/internal/recipes"
	"github.com/JaimeStill/cookbook/pkg/middleware"
	"github.com/JaimeStill/cookbook/pkg/routes"
)

const token = "secret"

func newServer(t *testing.T) (http.Handler, recipes.System) {
	t.Helper()
	sys, _ := newSystem(t)

	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(1<<20).Routes())
	return middleware.Auth(token)(mux), sys
}

func do(t *testing.T, h http.Handler, method, path, body string, signedIn bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if signedIn {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) recipes.Page {
	t.Helper()
	var page recipes.Page
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	return page
}

func TestHandlerListVisibility(t *testing.T) {
	h, sys := newServer(t)
	seed(t, sys)

	anon := decodePage(t, do(t, h, "GET", "/recipes?category=vegetables&page_size=0", "", false))
	for _, r := range anon.Recipes {
		if !r.IsPublished {
			t.Errorf("anonymous list includes unpublished %q", r.Name)
		}
	}
	if len(anon.Recipes) != 3 {
		t.Errorf("anonymous count = %d, want 3", len(anon.Recipes))
	}

	signed := decodePage(t, do(t, h, "GET", "/recipes?category=vegetables&page_size=0", "", true))
	if len(signed.Recipes) != 5 {
		t.Errorf("signed-in count = %d, want 5", len(signed.Recipes))
	}
}

func TestHandlerListDefaultPageSize(t *testing.T) {
	h, sys := newServer(t)
	seed(t, sys)

	rec := do(t, h, "GET", "/recipes", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	page := decodePage(t, rec)
	if len(page.Recipes) != 3 || page.Recipes[0].Name != "salmon" {
		t.Errorf("page = %+v", page)
	}

	next := decodePage(t, do(t, h, "GET", "/recipes?cursor="+page.Cursor, "", true))
	if len(next.Recipes) != 3 || next.Recipes[0].Name != "veg-2" {
		t.Errorf("next = %+v", next)
	}
}

func TestHandlerListBadParams(t *testing.T) {
	h, _ := newServer(t)

	for _, q := range []string{"category=soup", "order=up", "page_size=-2", "cursor=missing"} {
		if rec := do(t, h, "GET", "/recipes?"+q, "", false); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestHandlerFindHidesUnpublished(t *testing.T) {
	h, sys := newServer(t)
	unpublished := seed(t, sys)[1]

	if rec := do(t, h, "GET", "/recipes/"+unpublished.ID, "", false); rec.Code != http.StatusNotFound {
		t.Errorf("anonymous status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, "GET", "/recipes/"+unpublished.ID, "", true); rec.Code != http.StatusOK {
		t.Errorf("signed-in status = %d, want 200", rec.Code)
	}
}

func TestHandlerMutations(t *testing.T) {
	h, _ := newServer(t)
	body := `{"name":"Soup","category":"vegetables","publishDate":"2024-03-01T12:00:00Z","isPublished":true}`

	if rec := do(t, h, "POST", "/recipes", body, false); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create status = %d, want 401", rec.Code)
	}

	rec := do(t, h, "POST", "/recipes", body, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created recipes.Recipe
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Name != "Soup" {
		t.Errorf("created = %+v", created)
	}

	rec = do(t, h, "PATCH", "/recipes/"+created.ID, `{"name":"Stew"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	var updated recipes.Recipe
	json.NewDecoder(rec.Body).Decode(&updated)
	if updated.Name != "Stew" || updated.Category != recipes.Vegetables {
		t.Errorf("updated = %+v", updated)
	}

	if rec := do(t, h, "POST", "/recipes", `{"name":""}`, true); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid create status = %d, want 400", rec.Code)
	}
	if rec := do(t, h, "POST", "/recipes", `{"title":"x"}`, true); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", rec.Code)
	}

	if rec := do(t, h, "DELETE", "/recipes/"+created.ID, "", true); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	if rec := do(t, h, "DELETE", "/recipes/"+created.ID, "", true); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestHandlerUploadImage(t *testing.T) {
	h, _ := newServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "soup.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte("\x89PNG\r\n\x1a\n0000"))
	mw.Close()

	req := httptest.NewRequest("POST", "/recipes/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if !strings.HasPrefix(resp["url"], "http://images.test/images/") || !strings.HasSuffix(resp["url"], "/soup.png") {
		t.Errorf("url = %q", resp["url"])
	}
}
