package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mhalvorsen/stockroom/internal/catalog"
	"github.com/mhalvorsen/stockroom/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			RequestTimeout: time.Minute,
		},
		Import: config.ImportConfig{
			MaxFileSize: 1 << 20,
			Timeout:     time.Minute,
		},
		Rate: config.RateLimitConfig{Enabled: false},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := catalog.NewService(catalog.NewMemStore(), nil, nil)
	return NewServer(svc, testConfig())
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func productBody(name string, stock float64) map[string]any {
	return map[string]any{
		"name": name, "unit": "ea", "category": "Misc", "brand": "Acme",
		"stock": stock, "status": "In Stock", "image": "",
	}
}

func TestHealthEndpoint(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", rec.Code)
	}
	if rec.Body.String() != "Inventory API OK" {
		t.Errorf("GET / body = %q", rec.Body.String())
	}
}

func TestAddProduct(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/products", productBody("Rice", 5), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var p catalog.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if p.ID == 0 || p.Name != "Rice" || p.Stock != 5 {
		t.Errorf("created product = %+v", p)
	}

	// Duplicate name is a 409 with an error code.
	rec = doJSON(t, srv, http.MethodPost, "/api/products", productBody("  RICE ", 1), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate POST status = %d", rec.Code)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code == "" || errResp.Message == "" {
		t.Errorf("error response = %+v", errResp)
	}
}

func TestAddProduct_Validation(t *testing.T) {
	srv := newTestServer(t)

	body := productBody("Rice", 5)
	body["status"] = "Maybe"
	rec := doJSON(t, srv, http.MethodPost, "/api/products", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid status POST = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/products", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body POST = %d, want 400", rec.Code)
	}
}

func TestGetUpdateDelete(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/products", productBody("Rice", 5), nil)
	var p catalog.Product
	json.Unmarshal(rec.Body.Bytes(), &p)

	rec = doJSON(t, srv, http.MethodGet, "/api/products/1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/products/999", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET missing status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/products/abc", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("GET bad id status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/products/1", productBody("Rice", 8),
		map[string]string{"X-Actor": "jo@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// The stock change shows up in history, attributed to the header actor.
	rec = doJSON(t, srv, http.MethodGet, "/api/products/1/history", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	var entries []catalog.InventoryLogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("history = %d entries, want 1", len(entries))
	}
	if entries[0].OldStock != 5 || entries[0].NewStock != 8 || entries[0].ChangedBy != "jo@example.com" {
		t.Errorf("history entry = %+v", entries[0])
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/products/1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("DELETE status = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodDelete, "/api/products/1", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want 404", rec.Code)
	}

	// History is still served after deletion.
	rec = doJSON(t, srv, http.MethodGet, "/api/products/1/history", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("history after delete status = %d", rec.Code)
	}
}

func TestListAndSearch(t *testing.T) {
	srv := newTestServer(t)
	for _, n := range []string{"Banana", "Apple", "Cherry"} {
		doJSON(t, srv, http.MethodPost, "/api/products", productBody(n, 1), nil)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/products?limit=2&sort=name&dir=desc", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var res catalog.ListResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if res.Total != 3 || len(res.Data) != 2 || res.Data[0].Name != "Cherry" {
		t.Errorf("list = total %d, page %v", res.Total, names(res.Data))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/products/search?name=an", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}
	var found []catalog.Product
	json.Unmarshal(rec.Body.Bytes(), &found)
	if len(found) != 1 || found[0].Name != "Banana" {
		t.Errorf("search = %v", names(found))
	}
}

func TestImportAndExport(t *testing.T) {
	srv := newTestServer(t)

	csvData := "name,unit,category,brand,stock,status,image\n" +
		"Rice,bag,Grains,Golden,5,In Stock,\n" +
		"rice,sack,Cereal,Silver,2,,\n" +
		"Salt,box,Spices,Sea,0,,\n"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "products.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte(csvData))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var summary catalog.ImportSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Added != 2 || summary.Skipped != 1 || len(summary.Duplicates) != 1 {
		t.Errorf("summary = %+v, want 2 added, 1 duplicate skipped", summary)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/products/export", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "products.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("export = %d lines, want header + 2 rows: %q", len(lines), rec.Body.String())
	}
	if !strings.HasPrefix(lines[1], "Rice,") || !strings.HasPrefix(lines[2], "Salt,") {
		t.Errorf("export rows = %q, %q, want name order", lines[1], lines[2])
	}
}

func TestImport_NoFile(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("note", "no file here")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("import without file status = %d, want 400", rec.Code)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != "FILE003" {
		t.Errorf("error code = %q, want FILE003", errResp.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 3, ImportLimit: 1}
	svc := catalog.NewService(catalog.NewMemStore(), nil, nil)
	srv := NewServer(svc, cfg)

	var last int
	for i := 0; i < 4; i++ {
		rec := doJSON(t, srv, http.MethodGet, "/", nil, nil)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("4th request status = %d, want 429", last)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/", nil, nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func names(products []catalog.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}
