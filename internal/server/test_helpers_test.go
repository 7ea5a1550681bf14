package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zip"

	"code-submitter/internal/auth"
	"code-submitter/internal/config"
	"code-submitter/internal/db"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testUsers = []auth.UserInfo{
	{Username: "competitor", Teams: []string{"team-ABC"}, IsStudent: true},
	{Username: "teammate", Teams: []string{"team-ABC"}, IsStudent: true},
	{Username: "rival", Teams: []string{"team-DEF"}, IsStudent: true},
	{Username: "loner"},
	{Username: "blueshirt", IsBlueshirt: true},
}

type testApp struct {
	handler http.Handler
	store   *db.Store
}

// newTestApp serves from a rollback store over a fresh SQLite file.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	conn, err := db.Open("sqlite://"+filepath.Join(t.TempDir(), "test.db"), db.PoolConfig{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(conn) })
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate database: %v", err)
	}
	store, err := db.NewStore(conn, true)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Default()
	cfg.Testing = true
	srv := New(store, auth.NewDummyNemesisBackend(testUsers), cfg)
	return &testApp{handler: srv.Handler(), store: store}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(t *testing.T, username, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	setAuth(req, username)
	return a.do(req)
}

func (a *testApp) postForm(t *testing.T, username, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	setAuth(req, username)
	return a.do(req)
}

func (a *testApp) upload(t *testing.T, username, contentType string, content []byte, choose bool) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="archive"; filename="upload.zip"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if choose {
		if err := writer.WriteField("choose", "on"); err != nil {
			t.Fatalf("write choose: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	setAuth(req, username)
	return a.do(req)
}

func (a *testApp) count(t *testing.T, model any) int64 {
	t.Helper()
	var total int64
	if err := a.store.DB(context.Background()).Model(model).Count(&total).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return total
}

func setAuth(req *http.Request, username string) {
	if username == "" {
		return
	}
	token := base64.StdEncoding.EncodeToString([]byte(username + ":password"))
	req.Header.Set("Authorization", "Basic "+token)
}

func makeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		entry, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func robotZip(t *testing.T) []byte {
	t.Helper()
	return makeZip(t, map[string]string{"robot.py": "print('hello')\n"})
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	entries := make(map[string]string, len(zr.File))
	for _, file := range zr.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", file.Name, err)
		}
		var content bytes.Buffer
		if _, err := content.ReadFrom(rc); err != nil {
			t.Fatalf("read entry %s: %v", file.Name, err)
		}
		rc.Close()
		entries[file.Name] = content.String()
	}
	return entries
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (%s)", status, rec.Code, rec.Body.String())
	}
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
