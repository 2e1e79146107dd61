package handler

import (
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ywel/mrz/internal/registration/domain"
	"github.com/ywel/mrz/internal/registration/ocr"
	"github.com/ywel/mrz/internal/registration/service"
	"github.com/ywel/mrz/pkg/errors"
	"github.com/ywel/mrz/pkg/httputil"
	"github.com/ywel/mrz/pkg/logger"
)

// Handler handles HTTP requests for document registration
type Handler struct {
	service       *service.Service
	maxUploadSize int64
	log           *logger.Logger
}

// NewHandler creates a new registration handler
func NewHandler(svc *service.Service, maxUploadSize int64, log *logger.Logger) *Handler {
	return &Handler{
		service:       svc,
		maxUploadSize: maxUploadSize,
		log:           log,
	}
}

// Routes mounts the registration routes on a chi router
func (h *Handler) Routes(r chi.Router) {
	r.Post("/mrz", h.DecodeMRZ)
	r.Post("/scans", h.StartScan)
	r.Get("/scans/{jobId}", h.GetScan)
	r.Post("/registrations", h.CreateRegistration)
	r.Get("/registrations", h.ListRegistrations)
	r.Get("/registrations/{id}", h.GetRegistration)
}

// decodeMRZRequest carries an MRZ text block or a base64 document image.
type decodeMRZRequest struct {
	Lines []string `json:"lines,omitempty"`
	Image string   `json:"image,omitempty"`
}

// DecodeMRZ handles POST /mrz
// Decodes a document synchronously and returns the identity record.
// The payload is either MRZ lines or a base64 document: images are run
// through the engine chain, pre-recognized text is decoded directly.
func (h *Handler) DecodeMRZ(w http.ResponseWriter, r *http.Request) {
	var req decodeMRZRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, errors.BadRequest("invalid JSON body"))
		return
	}

	lines := req.Lines
	if len(lines) == 0 && req.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			httputil.Error(w, errors.BadRequest("image must be base64 encoded"))
			return
		}
		if ocr.IsImageData(decoded) {
			record, err := h.service.DecodeImage(r.Context(), decoded)
			if err != nil {
				httputil.Error(w, err)
				return
			}
			httputil.JSON(w, http.StatusOK, record)
			return
		}
		lines = strings.Split(string(decoded), "\n")
	}
	if len(lines) == 0 {
		httputil.Error(w, errors.BadRequest("either lines or image is required"))
		return
	}

	record, err := h.service.DecodeText(r.Context(), lines)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, record)
}

// StartScan handles POST /scans
// Accepts a multipart form with a document image and starts an
// asynchronous scan job. Returns 202 with the job for polling.
func (h *Handler) StartScan(w http.ResponseWriter, r *http.Request) {
	imageData, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	job, err := h.service.StartScan(r.Context(), imageData)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Accepted(w, job)
}

// GetScan handles GET /scans/{jobId}
func (h *Handler) GetScan(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	job := h.service.GetScanJob(jobID)
	if job == nil {
		httputil.Error(w, errors.NotFound("scan job"))
		return
	}

	httputil.JSON(w, http.StatusOK, job)
}

// CreateRegistration handles POST /registrations
// Accepts a multipart form with contact fields and a document image.
// The document is scanned asynchronously; on success the registration
// is persisted. Returns 202 with the scan job for polling.
func (h *Handler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		httputil.Error(w, errors.BadRequest("file too large or invalid multipart form"))
		return
	}

	contact := &domain.ContactDetails{
		FullName:                     r.FormValue("full_name"),
		Email:                        r.FormValue("email"),
		MobileNumber:                 r.FormValue("mobile_number"),
		AreaOfResidence:              r.FormValue("area_of_residence"),
		EmergencyContactName:         r.FormValue("emergency_contact_name"),
		Relationship:                 r.FormValue("relationship"),
		EmergencyContactMobileNumber: r.FormValue("emergency_contact_mobile_number"),
	}
	if err := httputil.Validate(contact); err != nil {
		httputil.Error(w, err)
		return
	}

	file, _, err := r.FormFile("document")
	if err != nil {
		httputil.Error(w, errors.BadRequest("missing document file"))
		return
	}
	defer file.Close()

	// Read the image into memory only; it is zeroed after processing.
	imageData, err := io.ReadAll(file)
	if err != nil {
		httputil.Error(w, errors.Internal("failed to read uploaded file"))
		return
	}

	job, err := h.service.Register(r.Context(), contact, imageData)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Accepted(w, job)
}

// GetRegistration handles GET /registrations/{id}
func (h *Handler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	reg, err := h.service.GetRegistration(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, reg)
}

// ListRegistrations handles GET /registrations
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	regs, err := h.service.ListRegistrations(r.Context(), limit, offset)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, regs)
}

// readUpload reads a multipart document upload into memory, writing an
// error response and returning false on failure.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		httputil.Error(w, errors.BadRequest("file too large or invalid multipart form"))
		return nil, false
	}

	file, _, err := r.FormFile("document")
	if err != nil {
		httputil.Error(w, errors.BadRequest("missing document file"))
		return nil, false
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		httputil.Error(w, errors.Internal("failed to read uploaded file"))
		return nil, false
	}
	return imageData, true
}
