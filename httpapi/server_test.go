package httpapi

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hazyhaar/blockdoc/block"
	"github.com/hazyhaar/blockdoc/dbopen"
	"github.com/hazyhaar/blockdoc/docimport"
	"github.com/hazyhaar/blockdoc/drafts"
	"github.com/hazyhaar/blockdoc/idgen"
)

func testServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	imp, err := docimport.New(cfg.Import,
		docimport.WithIDGenerator(func() idgen.Generator { return idgen.Sequence("b") }))
	if err != nil {
		t.Fatal(err)
	}
	db := dbopen.OpenMemory(t, dbopen.WithMigrations(drafts.Migrations...))
	store := drafts.NewStore(db)

	ts := httptest.NewServer(NewServer(cfg, imp, store).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func docxFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Agenda</w:t></w:r></w:p>
<w:p><w:r><w:t>Coffee at nine.</w:t></w:r></w:p>
</w:body></w:document>`))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// upload posts data as the multipart field "file".
func upload(t *testing.T, url, filename, contentType string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
		h["Content-Type"] = []string{contentType}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	} else {
		mw.WriteField("other", "x")
	}
	mw.Close()

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func doJSON(t *testing.T, method, url string, v any) *http.Response {
	t.Helper()
	var body io.Reader
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	ts := testServer(t, Config{})

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}

	head, err := http.Head(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	head.Body.Close()
	if head.StatusCode != 200 {
		t.Errorf("HEAD status: %d", head.StatusCode)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	ts := testServer(t, Config{})
	req, _ := http.NewRequest("GET", ts.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "client-42")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "client-42" {
		t.Errorf("X-Request-ID: got %q", got)
	}
}

func TestImport_Docx(t *testing.T) {
	ts := testServer(t, Config{})

	resp := upload(t, ts.URL+"/api/import", "Team Sync.docx", "application/octet-stream", docxFixture(t))
	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status %d: %s", resp.StatusCode, b)
	}

	var got struct {
		Name     string          `json:"name"`
		Format   string          `json:"format"`
		Document *block.Document `json:"document"`
		Draft    *drafts.Draft   `json:"draft"`
	}
	decodeBody(t, resp, &got)
	if got.Name != "Team Sync" || got.Format != "docx" || got.Draft != nil {
		t.Errorf("response: %+v", got)
	}
	if len(got.Document.Content) != 2 {
		t.Fatalf("content: %+v", got.Document.Content)
	}
	if h, ok := got.Document.Content[0].Props.(block.HeadingProps); !ok || h.Level != "h2" || h.Text != "Agenda" {
		t.Errorf("block 0: %+v", got.Document.Content[0])
	}
}

func TestImport_ErrorStatuses(t *testing.T) {
	// WHAT: Each failure kind maps to its own status and carries its kind.
	// WHY: The editor shows a different message per kind.
	ts := testServer(t, Config{})

	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		status      int
		kind        string
	}{
		{"unsupported", "notes.txt", "text/plain", []byte("hello"), 415, "unsupported_file_type"},
		{"missing field", "", "", nil, 400, "read_failure"},
		{"broken docx", "broken.docx", "", []byte("not a zip"), 422, "decode_failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := upload(t, ts.URL+"/api/import", tt.filename, tt.contentType, tt.data)
			if resp.StatusCode != tt.status {
				t.Fatalf("status: got %d, want %d", resp.StatusCode, tt.status)
			}
			var body map[string]string
			decodeBody(t, resp, &body)
			if body["kind"] != tt.kind || body["error"] == "" {
				t.Errorf("body: %v", body)
			}
		})
	}
}

func TestImport_TooLarge(t *testing.T) {
	ts := testServer(t, Config{Import: docimport.Config{MaxFileSize: 16}})
	resp := upload(t, ts.URL+"/api/import", "big.docx", "", docxFixture(t))
	if resp.StatusCode != 400 {
		t.Fatalf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestImport_SaveDraft(t *testing.T) {
	ts := testServer(t, Config{})

	resp := upload(t, ts.URL+"/api/import?save=email", "Promo.docx", "", docxFixture(t))
	if resp.StatusCode != 200 {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var got struct {
		Draft *drafts.Draft `json:"draft"`
	}
	decodeBody(t, resp, &got)
	if got.Draft == nil || got.Draft.Name != "Promo" || got.Draft.Type != drafts.TypeEmail {
		t.Fatalf("draft: %+v", got.Draft)
	}

	list := doJSON(t, "GET", ts.URL+"/api/drafts", nil)
	var saved []drafts.Draft
	decodeBody(t, list, &saved)
	if len(saved) != 1 || len(saved[0].Data.Content) != 2 {
		t.Fatalf("drafts: %+v", saved)
	}

	bad := upload(t, ts.URL+"/api/import?save=newsletter", "Promo.docx", "", docxFixture(t))
	if bad.StatusCode != 400 {
		t.Errorf("invalid save type: status %d", bad.StatusCode)
	}
}

func TestClean(t *testing.T) {
	ts := testServer(t, Config{})

	resp := doJSON(t, "POST", ts.URL+"/api/clean", map[string]string{
		"html": `<p class="MsoNormal"><b>Bold</b> move</p><p>&nbsp;</p>`,
	})
	if resp.StatusCode != 200 {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var got map[string]string
	decodeBody(t, resp, &got)
	if got["html"] != "<p><strong>Bold</strong> move</p>" {
		t.Errorf("html: %q", got["html"])
	}
	if got["text"] != "Bold move" {
		t.Errorf("text: %q", got["text"])
	}
}

func TestDrafts_CRUD(t *testing.T) {
	ts := testServer(t, Config{})
	base := ts.URL + "/api/drafts"

	doc := block.NewDocument([]block.Block{block.Text("t1", "hello")})
	resp := doJSON(t, "POST", base, map[string]any{"name": "Landing", "type": "webpage", "data": doc})
	if resp.StatusCode != 201 {
		t.Fatalf("create status: %d", resp.StatusCode)
	}
	var created drafts.Draft
	decodeBody(t, resp, &created)

	resp = doJSON(t, "GET", base+"/"+created.ID, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("get status: %d", resp.StatusCode)
	}

	newDoc := block.NewDocument([]block.Block{block.Divider("d1"), block.Text("t2", "bye")})
	resp = doJSON(t, "PUT", base+"/"+created.ID, newDoc)
	var updated drafts.Draft
	decodeBody(t, resp, &updated)
	if resp.StatusCode != 200 || len(updated.Data.Content) != 2 {
		t.Fatalf("update: %d %+v", resp.StatusCode, updated)
	}

	resp = doJSON(t, "PATCH", base+"/"+created.ID, map[string]string{"name": "Home"})
	var renamed drafts.Draft
	decodeBody(t, resp, &renamed)
	if renamed.Name != "Home" {
		t.Errorf("rename: %+v", renamed)
	}

	resp = doJSON(t, "POST", base+"/"+created.ID+"/duplicate", nil)
	var dup drafts.Draft
	decodeBody(t, resp, &dup)
	if resp.StatusCode != 201 || dup.Name != "Home (Copy)" || dup.ID == created.ID {
		t.Errorf("duplicate: %d %+v", resp.StatusCode, dup)
	}

	resp = doJSON(t, "DELETE", base+"/"+created.ID, nil)
	if resp.StatusCode != 200 {
		t.Errorf("delete status: %d", resp.StatusCode)
	}
	for _, m := range []string{"GET", "DELETE"} {
		if resp := doJSON(t, m, base+"/"+created.ID, nil); resp.StatusCode != 404 {
			t.Errorf("%s after delete: %d", m, resp.StatusCode)
		}
	}
	if resp := doJSON(t, "PATCH", base+"/missing", map[string]string{"name": "x"}); resp.StatusCode != 404 {
		t.Errorf("rename missing: %d", resp.StatusCode)
	}
}

func TestDrafts_BadInput(t *testing.T) {
	ts := testServer(t, Config{})
	base := ts.URL + "/api/drafts"

	if resp := doJSON(t, "POST", base, map[string]any{"name": "x", "type": "poster"}); resp.StatusCode != 400 {
		t.Errorf("invalid type: %d", resp.StatusCode)
	}

	created := doJSON(t, "POST", base, map[string]any{"name": "x", "type": "email"})
	var d drafts.Draft
	decodeBody(t, created, &d)
	bad := map[string]any{"content": []any{map[string]any{"type": "Carousel", "props": map[string]any{"id": "c"}}}}
	if resp := doJSON(t, "PUT", base+"/"+d.ID, bad); resp.StatusCode != 400 {
		t.Errorf("unknown block type: %d", resp.StatusCode)
	}
}

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	ts := testServer(t, Config{Auth: AuthConfig{Username: "editor", PasswordHash: string(hash)}})

	resp, err := http.Get(ts.URL + "/api/drafts")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 401 || resp.Header.Get("WWW-Authenticate") == "" {
		t.Fatalf("no credentials: %d", resp.StatusCode)
	}

	for _, pw := range []string{"wrong", "s3cret"} {
		req, _ := http.NewRequest("GET", ts.URL+"/api/drafts", nil)
		req.SetBasicAuth("editor", pw)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		want := 401
		if pw == "s3cret" {
			want = 200
		}
		if resp.StatusCode != want {
			t.Errorf("password %q: got %d, want %d", pw, resp.StatusCode, want)
		}
	}

	// Health stays public.
	health, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	health.Body.Close()
	if health.StatusCode != 200 {
		t.Errorf("health: %d", health.StatusCode)
	}
}

func TestNoStore(t *testing.T) {
	imp, err := docimport.New(docimport.Config{})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(NewServer(Config{}, imp, nil).Handler())
	defer ts.Close()

	if resp := doJSON(t, "GET", ts.URL+"/api/drafts", nil); resp.StatusCode != 503 {
		t.Errorf("drafts without store: %d", resp.StatusCode)
	}
}

func TestLoadConfigFile(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	path := filepath.Join(t.TempDir(), "blockdoc.yaml")
	yaml := strings.Join([]string{
		`listen: ":9000"`,
		`db_path: /tmp/x.db`,
		`auth:`,
		`  username: admin`,
		`  password_hash: "` + string(hash) + `"`,
		`import:`,
		`  pdf_engine: pdfcpu`,
		`  max_file_size: 1024`,
	}, "\n")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9000" || cfg.DBPath != "/tmp/x.db" || !cfg.Auth.Enabled() {
		t.Errorf("config: %+v", cfg)
	}
	if cfg.Import.PDFEngine != "pdfcpu" || cfg.Import.MaxFileSize != 1024 {
		t.Errorf("import config: %+v", cfg.Import)
	}

	defaults, err := LoadConfigFile("")
	if err != nil {
		t.Fatal(err)
	}
	if defaults.Listen != ":8086" || defaults.Auth.Enabled() {
		t.Errorf("defaults: %+v", defaults)
	}

	if err := os.WriteFile(path, []byte("auth:\n  username: admin\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Error("expected error for username without hash")
	}
}
