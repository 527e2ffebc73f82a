package photo

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// FieldName is the only multipart field accepted for files.
	FieldName = "photo"

	formMemory   = 32 << 20
	formOverhead = 1 << 20
)

// parsedUpload holds the opened files of one multipart request.
type parsedUpload struct {
	inputs []UploadInput
	files  []multipart.File
	form   *multipart.Form
}

func (p *parsedUpload) Close() {
	for _, f := range p.files {
		_ = f.Close()
	}
	if p.form != nil {
		_ = p.form.RemoveAll()
	}
}

// readMultipart parses the request body and turns the files in FieldName
// into UploadInputs. Form level problems (wrong field, too many files or
// fields, body too large) are validation errors and nothing is stored.
func readMultipart(c *gin.Context, limits Limits, maxFiles int) (*parsedUpload, error) {
	ct := c.GetHeader("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "multipart/form-data") {
		return nil, ErrMalformedForm
	}

	maxBody := limits.MaxFileSize*int64(maxFiles) + formOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)

	if err := c.Request.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, ErrFileTooLarge
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedForm, err)
	}

	form := c.Request.MultipartForm
	p := &parsedUpload{form: form}

	fields := 0
	for _, values := range form.Value {
		fields += len(values)
	}
	if fields > limits.MaxFields {
		p.Close()
		return nil, ErrTooManyFields
	}

	for name := range form.File {
		if name != FieldName {
			p.Close()
			return nil, ErrUnexpectedField
		}
	}

	headers := form.File[FieldName]
	if len(headers) == 0 {
		p.Close()
		return nil, ErrNoFile
	}
	if len(headers) > maxFiles {
		p.Close()
		return nil, ErrTooManyFiles
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("%w: open part: %v", ErrMalformedForm, err)
		}
		p.files = append(p.files, f)
		p.inputs = append(p.inputs, UploadInput{
			OriginalName: fh.Filename,
			MimeType:     fh.Header.Get("Content-Type"),
			Size:         fh.Size,
			Content:      f,
		})
	}
	return p, nil
}
