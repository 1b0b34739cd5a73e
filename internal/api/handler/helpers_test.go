package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/printcraft/storefront/internal/api/middleware"
	"github.com/printcraft/storefront/internal/core/ports"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// asUser sets the values the Auth middleware would inject.
func asUser(c echo.Context, userID, role string) {
	c.Set(middleware.ContextUserID, userID)
	c.Set(middleware.ContextRole, role)
}

type formFile struct {
	field, name, contentType, content string
}

// multipartRequest builds a multipart/form-data request with plain fields
// and files carrying their own content type.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := io.WriteString(part, f.content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

// readUploads drains every upload so tests can assert on contents while the
// request files are still open.
func readUploads(t *testing.T, uploads []ports.Upload) []string {
	t.Helper()
	out := make([]string, 0, len(uploads))
	for _, u := range uploads {
		b, err := io.ReadAll(u.Reader)
		if err != nil {
			t.Fatalf("read upload %s: %v", u.Filename, err)
		}
		out = append(out, string(b))
	}
	return out
}
