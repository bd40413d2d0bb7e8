package testhelpers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pranaou2005/Wheelhub-backend/api"
	"github.com/pranaou2005/Wheelhub-backend/models"
)

// File is a file part of a multipart test request
type File struct {
	Field   string
	Name    string
	Content []byte
}

// AsUser attaches an authenticated identity to req, as AuthGate would
func AsUser(req *http.Request, id primitive.ObjectID, role models.Role) *http.Request {
	return req.WithContext(api.WithIdentity(req.Context(), api.Identity{ID: id.Hex(), Role: role}))
}

// JSONRequest builds a request with body marshalled as JSON and the given path variables
func JSONRequest(t *testing.T, method, url string, body interface{}, vars map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

// MultipartRequest builds a multipart/form-data request from fields and files
func MultipartRequest(t *testing.T, method, url string, fields map[string]string, files []File) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.Field, f.Name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err = fw.Write(f.Content); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// DecodeBody unmarshals a recorded response body into v
func DecodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode body %q: %v", rr.Body.String(), err)
	}
}

// MemoryStore is an in-memory storage.Store
type MemoryStore struct {
	mu      sync.Mutex
	Saved   []string
	Removed []string
	FailOn  int
}

// Save records the upload and returns /uploads/<folder>/<filename>. When FailOn is n > 0
// the n-th call fails.
func (m *MemoryStore) Save(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailOn > 0 && len(m.Saved)+1 == m.FailOn {
		return "", errors.New("mocked-store-error")
	}
	ref := "/uploads/" + folder + "/" + fh.Filename
	m.Saved = append(m.Saved, ref)
	return ref, nil
}

// Remove records the removal
func (m *MemoryStore) Remove(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removed = append(m.Removed, ref)
	return nil
}

// Mail is one message captured by RecordingMailer
type Mail struct {
	ToName, ToEmail, Subject, PlainText, HTML string
}

// RecordingMailer captures sent e-mails
type RecordingMailer struct {
	Sent []Mail
	Err  error
}

// Send implements handlers.Mailer
func (m *RecordingMailer) Send(toName, toEmail, subject, plainText, htmlContent string) error {
	m.Sent = append(m.Sent, Mail{toName, toEmail, subject, plainText, htmlContent})
	return m.Err
}
