// upload_controller.go
package controller

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"opt-shop/internal/apperror"
	"opt-shop/internal/storage"

	"github.com/gin-gonic/gin"
)

const (
	singleUploadField   = "photo"
	multipleUploadField = "photos"

	// Room for every file at the cap plus multipart framing.
	maxUploadBody = storage.MaxFiles*storage.MaxFileSize + 1<<20
)

var errUploadTooLarge = apperror.New(apperror.KindValidation, "UPLOAD_TOO_LARGE", "upload exceeds the allowed size")

type Uploader interface {
	Store(ctx context.Context, field string, fh *multipart.FileHeader) (*storage.StoredFile, error)
	StoreAll(ctx context.Context, field string, files []*multipart.FileHeader) ([]*storage.StoredFile, error)
}

type UploadController struct {
	Uploader Uploader
}

func NewUploadController(u Uploader) *UploadController {
	return &UploadController{Uploader: u}
}

// POST /upload/single, multipart field "photo".
func (ctl *UploadController) Single(c *gin.Context) {
	form, ok := ctl.parseForm(c)
	if !ok {
		return
	}
	files := form.File[singleUploadField]
	if len(files) == 0 {
		respondError(c, storage.ErrNoFile)
		return
	}

	stored, err := ctl.Uploader.Store(c.Request.Context(), singleUploadField, files[0])
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "file uploaded", "filename": stored.Filename, "path": stored.Path})
}

// POST /upload/multiple, multipart field "photos", at most 10 files.
func (ctl *UploadController) Multiple(c *gin.Context) {
	form, ok := ctl.parseForm(c)
	if !ok {
		return
	}

	stored, err := ctl.Uploader.StoreAll(c.Request.Context(), multipleUploadField, form.File[multipleUploadField])
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "files uploaded", "files": stored})
}

func (ctl *UploadController) parseForm(c *gin.Context) (*multipart.Form, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, errUploadTooLarge)
		} else {
			respondError(c, apperror.Validation("expected a multipart/form-data body"))
		}
		return nil, false
	}
	return form, true
}
