package handler_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ywel/mrz/internal/registration/domain"
	"github.com/ywel/mrz/internal/registration/handler"
	"github.com/ywel/mrz/internal/registration/mrz"
	"github.com/ywel/mrz/internal/registration/ocr"
	"github.com/ywel/mrz/internal/registration/service"
	"github.com/ywel/mrz/internal/registration/storage"
	"github.com/ywel/mrz/pkg/errors"
	"github.com/ywel/mrz/pkg/logger"
)

const td3Block = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\nL898902C36UTO7408122F1204159ZE184226B<<<<<10"

// memRepo is an in-memory registration store for handler tests.
type memRepo struct {
	mu   sync.Mutex
	regs map[string]*domain.Registration
}

func newMemRepo() *memRepo {
	return &memRepo{regs: make(map[string]*domain.Registration)}
}

func (r *memRepo) Create(_ context.Context, reg *domain.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg.ID == "" {
		reg.ID = "reg-1"
	}
	reg.CreatedAt = time.Now()
	r.regs[reg.ID] = reg
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg, ok := r.regs[id]; ok {
		return reg, nil
	}
	return nil, errors.NotFound("registration")
}

func (r *memRepo) List(_ context.Context, _, _ int) ([]*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	regs := make([]*domain.Registration, 0, len(r.regs))
	for _, reg := range r.regs {
		regs = append(regs, reg)
	}
	return regs, nil
}

func (r *memRepo) ExistsByDocumentNumber(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func testClock() time.Time {
	return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func newTestRouter(repo *memRepo, extra ...ocr.Engine) *chi.Mux {
	log := logger.New("registration-service-test", "development")
	decoder := mrz.NewDecoder(mrz.WithClock(testClock))
	jobs := storage.NewJobStore(time.Minute)
	engines := append(extra, ocr.NewTextEngine())
	svc := service.NewService(engines, decoder, jobs, repo, nil, log)
	h := handler.NewHandler(svc, 20<<20, log)

	r := chi.NewRouter()
	r.Route("/api/v1", h.Routes)
	return r
}

// imageEngine recognizes binary image payloads with canned lines, the
// way a remote OCR service would.
type imageEngine struct {
	lines []string
}

func (e *imageEngine) Name() string { return "image" }

func (e *imageEngine) Recognize(_ context.Context, image []byte) ([]string, error) {
	if !ocr.IsImageData(image) {
		return nil, ocr.ErrEngineUnavailable
	}
	return e.lines, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileContent string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, "document.txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func pollScan(t *testing.T, router *chi.Mux, jobID string) *domain.ScanJob {
	t.Helper()
	var job domain.ScanJob
	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/"+jobID, nil)
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			return false
		}
		env := decodeEnvelope(t, rec)
		if err := json.Unmarshal(env.Data, &job); err != nil {
			return false
		}
		return job.Status == domain.StatusCompleted || job.Status == domain.StatusFailed
	}, 2*time.Second, 5*time.Millisecond)
	return &job
}

func contactFields() map[string]string {
	return map[string]string{
		"full_name":                       "Anna Maria Eriksson",
		"email":                           "anna@example.com",
		"mobile_number":                   "+46701234567",
		"area_of_residence":               "Stockholm",
		"emergency_contact_name":          "Sven Eriksson",
		"relationship":                    "spouse",
		"emergency_contact_mobile_number": "+46707654321",
	}
}

func TestDecodeMRZWithLines(t *testing.T) {
	router := newTestRouter(newMemRepo())

	payload, _ := json.Marshal(map[string]interface{}{
		"lines": []string{
			"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
			"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/mrz", bytes.NewReader(payload))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	var record domain.IdentityRecord
	require.NoError(t, json.Unmarshal(env.Data, &record))
	assert.Equal(t, "L898902C3", record.DocumentNumber)
	assert.Equal(t, "ERIKSSON", record.Surname)
	assert.Equal(t, "ANNA MARIA", record.GivenNames)
}

func TestDecodeMRZWithBase64Image(t *testing.T) {
	router := newTestRouter(newMemRepo())

	encoded := "UDxVVE9FUklLU1NPTjw8QU5OQTxNQVJJQTw8PDw8PDw8PDw8PDw8PDw8PDwKTDg5ODkwMkMzNlVUTzc0MDgxMjJGMTIwNDE1OVpFMTg0MjI2Qjw8PDw8MTA="
	payload, _ := json.Marshal(map[string]string{"image": encoded})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/mrz", bytes.NewReader(payload))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var record domain.IdentityRecord
	require.NoError(t, json.Unmarshal(env.Data, &record))
	assert.Equal(t, "L898902C3", record.DocumentNumber)
}

func TestDecodeMRZWithBase64BinaryImage(t *testing.T) {
	router := newTestRouter(newMemRepo(), &imageEngine{lines: []string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
	}})

	// A JPEG payload goes through the engine chain, not the text path.
	image := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, []byte("jpeg body")...)
	payload, _ := json.Marshal(map[string]string{
		"image": base64.StdEncoding.EncodeToString(image),
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/mrz", bytes.NewReader(payload))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var record domain.IdentityRecord
	require.NoError(t, json.Unmarshal(env.Data, &record))
	assert.Equal(t, "L898902C3", record.DocumentNumber)
	assert.Equal(t, domain.DocumentClassPassport, record.Class)
}

func TestDecodeMRZUnrecognized(t *testing.T) {
	router := newTestRouter(newMemRepo())

	payload, _ := json.Marshal(map[string]interface{}{"lines": []string{"garbage"}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/mrz", bytes.NewReader(payload))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
}

func TestDecodeMRZEmptyBody(t *testing.T) {
	router := newTestRouter(newMemRepo())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/mrz", bytes.NewReader([]byte(`{}`)))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanLifecycle(t *testing.T) {
	router := newTestRouter(newMemRepo())

	body, contentType := multipartBody(t, nil, "document", td3Block)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	env := decodeEnvelope(t, rec)
	var job domain.ScanJob
	require.NoError(t, json.Unmarshal(env.Data, &job))
	require.NotEmpty(t, job.JobID)

	done := pollScan(t, router, job.JobID)
	assert.Equal(t, domain.StatusCompleted, done.Status)
	require.NotNil(t, done.Record)
	assert.Equal(t, "L898902C3", done.Record.DocumentNumber)
}

func TestGetScanNotFound(t *testing.T) {
	router := newTestRouter(newMemRepo())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/unknown", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRegistration(t *testing.T) {
	repo := newMemRepo()
	router := newTestRouter(repo)

	body, contentType := multipartBody(t, contactFields(), "document", td3Block)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	env := decodeEnvelope(t, rec)
	var job domain.ScanJob
	require.NoError(t, json.Unmarshal(env.Data, &job))

	done := pollScan(t, router, job.JobID)
	require.Equal(t, domain.StatusCompleted, done.Status)
	require.NotEmpty(t, done.RegistrationID)

	// The persisted registration is retrievable.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/registrations/"+done.RegistrationID, nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var reg domain.Registration
	env = decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &reg))
	assert.Equal(t, "Anna Maria Eriksson", reg.FullName)
	assert.Equal(t, "L898902C3", reg.DocumentNumber)
	assert.Equal(t, "F", reg.Sex)
}

func TestCreateRegistrationValidation(t *testing.T) {
	router := newTestRouter(newMemRepo())

	fields := contactFields()
	fields["email"] = "not-an-email"
	delete(fields, "full_name")

	body, contentType := multipartBody(t, fields, "document", td3Block)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "Email")
	assert.Contains(t, env.Error.Details, "FullName")
}

func TestCreateRegistrationMissingFile(t *testing.T) {
	router := newTestRouter(newMemRepo())

	body, contentType := multipartBody(t, contactFields(), "", "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRegistrations(t *testing.T) {
	repo := newMemRepo()
	require.NoError(t, repo.Create(context.Background(), &domain.Registration{
		ID:             "reg-xyz",
		FullName:       "Anna Maria Eriksson",
		DocumentNumber: "L898902C3",
	}))
	router := newTestRouter(repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/registrations", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var regs []domain.Registration
	require.NoError(t, json.Unmarshal(env.Data, &regs))
	require.Len(t, regs, 1)
	assert.Equal(t, "L898902C3", regs[0].DocumentNumber)
}
