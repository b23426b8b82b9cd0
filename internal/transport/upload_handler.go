package transport

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"modaix-api/internal/config"
	"modaix-api/internal/domain"
	"modaix-api/internal/middleware"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Accepted image types for product photos. Content sniffing decides, not
// the client-supplied filename or Content-Type.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadResponse returns the public URL of a stored image
type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// UploadHandler handles product image uploads
type UploadHandler struct {
	cfg    config.UploadConfig
	logger *zap.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(cfg config.UploadConfig, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		cfg:    cfg,
		logger: logger,
	}
}

// RegisterRoutes registers the upload route. Admin only.
func (h *UploadHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/uploads", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin())
		r.Post("/", h.Upload)
	})
}

// Upload stores a multipart "image" part under a random name and returns
// its public URL.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxSizeBytes)

	if err := r.ParseMultipartForm(h.cfg.MaxSizeBytes); err != nil {
		middleware.RespondWithError(w, domain.KindValidation, "file too large or malformed multipart body")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		middleware.RespondWithError(w, domain.KindValidation, "missing image file")
		return
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		middleware.RespondWithError(w, domain.KindValidation, "unreadable image file")
		return
	}

	ext, ok := allowedImageTypes[mtype.String()]
	if !ok {
		middleware.RespondWithError(w, domain.KindValidation, "unsupported image type, use JPEG, PNG, WebP or GIF")
		return
	}

	// DetectReader consumed the head of the stream
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.logger.Error("Failed to rewind upload", zap.Error(err))
		middleware.RespondWithError(w, domain.KindInternal, "failed to store image")
		return
	}

	if err := os.MkdirAll(h.cfg.Dir, 0o755); err != nil {
		h.logger.Error("Failed to create upload directory", zap.Error(err))
		middleware.RespondWithError(w, domain.KindInternal, "failed to store image")
		return
	}

	filename := uuid.New().String() + ext
	dstPath := filepath.Join(h.cfg.Dir, filename)

	dst, err := os.Create(dstPath)
	if err != nil {
		h.logger.Error("Failed to create upload file", zap.Error(err))
		middleware.RespondWithError(w, domain.KindInternal, "failed to store image")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dstPath)
		h.logger.Error("Failed to write upload", zap.Error(err))
		middleware.RespondWithError(w, domain.KindInternal, "failed to store image")
		return
	}

	h.logger.Info("Image uploaded",
		zap.String("filename", filename),
		zap.String("original_name", header.Filename),
		zap.String("mime_type", mtype.String()),
		zap.Int64("size", header.Size),
	)

	middleware.RespondWithJSON(w, http.StatusCreated, UploadResponse{
		URL:      fmt.Sprintf("%s/%s", h.cfg.PublicBase, filename),
		Filename: filename,
	})
}
