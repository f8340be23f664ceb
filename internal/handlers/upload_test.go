package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finax/internal/service"
)

var testPNG = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{1}, 32)...)

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(data)
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func doUpload(r http.Handler, body io.Reader, contentType, host string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload/avatar", body)
	req.Host = host
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer tok")
	r.ServeHTTP(w, req)
	return w
}

func TestUploadAvatar_Success(t *testing.T) {
	up := &mockUpload{res: service.UploadResult{Filename: "abc.png", Size: int64(len(testPNG))}}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: "u-1"}, Upload: up})

	body, ct := multipartBody(t, "avatar", "me.png", "image/png", testPNG)
	w := doUpload(r, body, ct, "api.finax.test")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	m := decodeBody(t, w)
	if m["url"] != "http://api.finax.test/uploads/avatars/abc.png" {
		t.Fatalf("unexpected url: %v", m["url"])
	}
	if m["filename"] != "abc.png" {
		t.Fatalf("unexpected filename: %v", m["filename"])
	}
	if up.last.Name != "me.png" || up.last.ContentType != "image/png" || !bytes.Equal(up.data, testPNG) {
		t.Fatalf("unexpected upload passed to service: %+v", up.last)
	}
}

func TestUploadAvatar_PublicURLAndForwardedProto(t *testing.T) {
	up := &mockUpload{res: service.UploadResult{Filename: "abc.png"}}
	s := &service.Service{Authorization: &mockAuth{parseID: "u-1"}, Upload: up}

	r := newTestRouterWithOptions(s, Options{PublicURL: "https://cdn.finax.test/"})
	body, ct := multipartBody(t, "avatar", "me.png", "image/png", testPNG)
	if m := decodeBody(t, doUpload(r, body, ct, "internal:3333")); m["url"] != "https://cdn.finax.test/uploads/avatars/abc.png" {
		t.Fatalf("expected configured public url, got %v", m["url"])
	}

	r = newTestRouter(s)
	body, ct = multipartBody(t, "avatar", "me.png", "image/png", testPNG)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload/avatar", body)
	req.Host = "api.finax.test"
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set("X-Forwarded-Proto", "https")
	r.ServeHTTP(w, req)
	if m := decodeBody(t, w); m["url"] != "https://api.finax.test/uploads/avatars/abc.png" {
		t.Fatalf("expected forwarded scheme, got %v", m["url"])
	}
}

func TestUploadAvatar_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: "u-1"}, Upload: &mockUpload{}})
		body, ct := multipartBody(t, "other", "me.png", "image/png", testPNG)
		w := doUpload(r, body, ct, "h")
		if w.Code != http.StatusBadRequest || decodeBody(t, w)["error"] != "No file uploaded" {
			t.Fatalf("unexpected response: %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		up := &mockUpload{err: service.ErrInvalidFileType}
		r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: "u-1"}, Upload: up})
		body, ct := multipartBody(t, "avatar", "me.gif", "image/gif", []byte("GIF89a"))
		w := doUpload(r, body, ct, "h")
		want := "Invalid file type. Only JPEG, PNG, and WebP images are allowed."
		if w.Code != http.StatusBadRequest || decodeBody(t, w)["error"] != want {
			t.Fatalf("unexpected response: %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("body over limit", func(t *testing.T) {
		up := &mockUpload{}
		s := &service.Service{Authorization: &mockAuth{parseID: "u-1"}, Upload: up}
		r := newTestRouterWithOptions(s, Options{MaxUploadSize: 16})
		big := bytes.Repeat([]byte{0}, 2<<20)
		body, ct := multipartBody(t, "avatar", "me.png", "image/png", big)
		w := doUpload(r, body, ct, "h")
		if w.Code != http.StatusBadRequest || decodeBody(t, w)["error"] != "File too large" {
			t.Fatalf("unexpected response: %d %s", w.Code, w.Body.String())
		}
	})
}

// the real upload service behind the router stores the file and serves it back
func TestUploadAvatar_StoredAndServed(t *testing.T) {
	dir := t.TempDir()
	s := &service.Service{
		Authorization: &mockAuth{parseID: "u-1"},
		Upload:        service.NewUploadService(dir, 1024),
	}
	r := newTestRouterWithOptions(s, Options{UploadDir: dir, MaxUploadSize: 1024})

	body, ct := multipartBody(t, "avatar", "Me.PNG", "image/png", testPNG)
	w := doUpload(r, body, ct, "api.finax.test")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	m := decodeBody(t, w)
	filename, _ := m["filename"].(string)
	if !strings.HasSuffix(filename, ".png") {
		t.Fatalf("unexpected filename %q", filename)
	}
	if _, err := os.Stat(filepath.Join(dir, "avatars", filename)); err != nil {
		t.Fatalf("file not stored: %v", err)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/avatars/"+filename, nil))
	if w.Code != http.StatusOK || !bytes.Equal(w.Body.Bytes(), testPNG) {
		t.Fatalf("static serve failed: %d", w.Code)
	}
}

func TestUploadAvatar_NeverServedAsHTML(t *testing.T) {
	dir := t.TempDir()
	s := &service.Service{
		Authorization: &mockAuth{parseID: "u-1"},
		Upload:        service.NewUploadService(dir, 1024),
	}
	r := newTestRouterWithOptions(s, Options{UploadDir: dir, MaxUploadSize: 1024})

	payload := append(append([]byte{}, testPNG...), []byte("<script>alert(1)</script>")...)
	body, ct := multipartBody(t, "avatar", "x.html", "image/png", payload)
	w := doUpload(r, body, ct, "api.finax.test")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	filename, _ := decodeBody(t, w)["filename"].(string)
	if !strings.HasSuffix(filename, ".png") {
		t.Fatalf("expected .png filename, got %q", filename)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/avatars/"+filename, nil))
	if got := w.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
}
