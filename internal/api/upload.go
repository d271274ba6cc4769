package api

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"csvquery/internal/errors"
)

// UploadField is the multipart field carrying the uploaded file
const UploadField = "file"

// ReadUpload reads the uploaded file from a multipart request, enforcing maxBytes
func ReadUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return "", nil, errors.TooLarge(fmt.Sprintf("file exceeds the %s upload limit", formatBytes(maxBytes)))
		}
		return "", nil, errors.InvalidInput("expected a multipart form upload")
	}

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		return "", nil, errors.InvalidInput("choose a file to upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, errors.InvalidInput("could not read the uploaded file")
	}

	name := strings.TrimSpace(header.Filename)
	if name == "" {
		name = "upload.csv"
	}
	return name, data, nil
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
