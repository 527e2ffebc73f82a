package photo

import (
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"photoshare/internal/pkg/response"
	"photoshare/internal/pkg/utils"
)

const cacheForever = "public, max-age=31536000"

// Handler maps the photo HTTP API onto the Service. There is no
// authentication: the download token is the only credential.
type Handler struct {
	service *Service
	baseURL *utils.BaseURLResolver
}

func NewHandler(service *Service, baseURL *utils.BaseURLResolver) *Handler {
	return &Handler{service: service, baseURL: baseURL}
}

// List godoc
// @Summary List photos, newest first
// @Tags Photos
// @Produce json
// @Success 200 {array} View
// @Failure 500 {object} map[string]interface{}
// @Router /photos [get]
func (h *Handler) List(c *gin.Context) {
	views, err := h.service.List(c.Request.Context(), h.links(c))
	if err != nil {
		h.fail(c, err, "Failed to fetch photos")
		return
	}
	c.JSON(http.StatusOK, views)
}

// Upload godoc
// @Summary Upload one image
// @Description Multipart upload with a single file in field "photo". Returns the record, a QR code and the download URL.
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Image to upload"
// @Success 201 {object} map[string]interface{}
// @Failure 400,413,500 {object} map[string]interface{}
// @Router /upload [post]
func (h *Handler) Upload(c *gin.Context) {
	parsed, err := readMultipart(c, h.service.Limits(), 1)
	if err != nil {
		h.fail(c, err, "Failed to upload photo")
		return
	}
	defer parsed.Close()

	res, err := h.service.Upload(c.Request.Context(), parsed.inputs[0], h.links(c))
	if err != nil {
		h.fail(c, err, "Failed to upload photo")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"photo":       res.Photo,
		"qrCode":      res.QRCode,
		"downloadUrl": res.DownloadURL,
	})
}

// UploadBatch godoc
// @Summary Upload several images
// @Description Files are processed in order; each one gets its own result.
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Images to upload (repeat the field)"
// @Success 200 {object} map[string]interface{}
// @Failure 400,413 {object} map[string]interface{}
// @Router /upload/batch [post]
func (h *Handler) UploadBatch(c *gin.Context) {
	limits := h.service.Limits()
	parsed, err := readMultipart(c, limits, limits.MaxFiles)
	if err != nil {
		h.fail(c, err, "Failed to upload photos")
		return
	}
	defer parsed.Close()

	outcomes, err := h.service.UploadBatch(c.Request.Context(), parsed.inputs, h.links(c))
	if err != nil {
		h.fail(c, err, "Failed to upload photos")
		return
	}

	results := make([]gin.H, 0, len(outcomes))
	succeeded := 0
	for _, o := range outcomes {
		item := gin.H{
			"index":        o.Index,
			"originalName": o.OriginalName,
			"success":      o.Err == nil,
		}
		if o.Err != nil {
			status, code, msg := h.classify(o.Err)
			if status >= http.StatusInternalServerError {
				h.logFailure(c, o.Err)
			}
			item["error"] = gin.H{"code": code, "message": msg}
		} else {
			succeeded++
			item["photo"] = o.Result.Photo
			item["qrCode"] = o.Result.QRCode
			item["downloadUrl"] = o.Result.DownloadURL
		}
		results = append(results, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   succeeded == len(outcomes),
		"succeeded": succeeded,
		"failed":    len(outcomes) - succeeded,
		"results":   results,
	})
}

// QRCode godoc
// @Summary QR code for an existing photo
// @Tags Photos
// @Produce json
// @Param photoId path int true "Photo ID"
// @Success 200 {object} QRResult
// @Failure 404,500 {object} map[string]interface{}
// @Router /qr/{photoId} [get]
func (h *Handler) QRCode(c *gin.Context) {
	id, ok := parseID(c.Param("photoId"))
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Photo not found")
		return
	}

	res, err := h.service.QRCode(c.Request.Context(), id, h.links(c))
	if err != nil {
		h.fail(c, err, "Failed to generate QR code")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Download godoc
// @Summary Download a photo by its token
// @Description Sends the file as an attachment under its original name and increments download_count.
// @Tags Photos
// @Produce octet-stream
// @Param token path string true "Download token"
// @Success 200 {file} file
// @Failure 404,500 {object} map[string]interface{}
// @Router /download/{token} [get]
func (h *Handler) Download(c *gin.Context) {
	dl, err := h.service.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Invalid download token")
			return
		}
		h.fail(c, err, "Failed to download photo")
		return
	}
	defer dl.Close()

	log.Printf("photo_download ok id=%d name=%q count=%d", dl.Photo.ID, dl.Photo.OriginalName, dl.Photo.DownloadCount)
	c.DataFromReader(http.StatusOK, dl.Object.Size, contentTypeOrDefault(dl.Photo.MimeType), dl.Object, map[string]string{
		"Content-Disposition": attachment(dl.Photo.OriginalName),
	})
}

// Delete godoc
// @Summary Delete a photo (file + record)
// @Tags Photos
// @Produce json
// @Param id path int true "Photo ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404,500 {object} map[string]interface{}
// @Router /photos/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Photo not found")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "Failed to delete photo")
		return
	}
	response.Message(c, http.StatusOK, "Photo deleted successfully")
}

// Image godoc
// @Summary Raw image bytes by stored filename
// @Tags Photos
// @Produce image/jpeg,image/png,image/gif,image/webp,image/svg+xml
// @Param filename path string true "Stored filename"
// @Success 200 {file} file
// @Failure 404 {object} map[string]interface{}
// @Router /image/{filename} [get]
func (h *Handler) Image(c *gin.Context) {
	filename := c.Param("filename")
	obj, err := h.service.Image(c.Request.Context(), filename)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Image not found")
			return
		}
		h.fail(c, err, "Failed to send image")
		return
	}
	defer obj.Close()

	c.DataFromReader(http.StatusOK, obj.Size, contentTypeForExt(filename), obj, map[string]string{
		"Access-Control-Allow-Origin": "*",
		"Cache-Control":               cacheForever,
	})
}

func (h *Handler) links(c *gin.Context) Links {
	return NewLinks(h.baseURL.Resolve(c.Request))
}

// fail writes the error envelope. Infrastructure details are logged, never
// returned.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	status, code, msg := h.classify(err)
	if status >= http.StatusInternalServerError {
		h.logFailure(c, err)
		msg = fallback
	}
	response.Error(c, status, code, msg)
}

func (h *Handler) classify(err error) (int, string, string) {
	limits := h.service.Limits()
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, response.CodeFileTooLarge,
			fmt.Sprintf("File too large. Max size is %s.", humanize.IBytes(uint64(limits.MaxFileSize)))
	case errors.Is(err, ErrUnexpectedField):
		return http.StatusBadRequest, response.CodeValidation, `Unexpected field name. Use "photo" as field name.`
	case errors.Is(err, ErrNoFile):
		return http.StatusBadRequest, response.CodeValidation, "No file uploaded"
	case errors.Is(err, ErrTooManyFiles):
		return http.StatusBadRequest, response.CodeValidation, fmt.Sprintf("Too many files. Max is %d per request.", limits.MaxFiles)
	case errors.Is(err, ErrTooManyFields):
		return http.StatusBadRequest, response.CodeValidation, "Too many form fields"
	case errors.Is(err, ErrInvalidMimeType):
		return http.StatusBadRequest, response.CodeValidation, "Only image files are allowed!"
	case errors.Is(err, ErrEmptyFile):
		return http.StatusBadRequest, response.CodeValidation, "File is empty"
	case errors.Is(err, ErrMalformedForm):
		return http.StatusBadRequest, response.CodeValidation, "Invalid multipart form"
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, response.CodeValidation, "Invalid upload"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, response.CodeNotFound, "Photo not found"
	case errors.Is(err, ErrUpload):
		return http.StatusInternalServerError, response.CodeUploadFailed, "Failed to upload photo"
	default:
		return http.StatusInternalServerError, response.CodeInternal, "Internal server error"
	}
}

func (h *Handler) logFailure(c *gin.Context, err error) {
	_ = c.Error(err)
	log.Printf("photo_error kind=%s method=%s path=%s error=%q", Kind(err), c.Request.Method, c.Request.URL.Path, err)
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func attachment(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}

func contentTypeOrDefault(m string) string {
	if m == "" {
		return "application/octet-stream"
	}
	return m
}

func contentTypeForExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "image/jpeg"
	}
}
