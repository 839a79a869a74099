package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/indicators/internal/core"
)

// Upload form errors.
var (
	errFileTooLarge  = errors.New("file too large")
	errTooManyFiles  = errors.New("too many files")
	errMultipartForm = errors.New("invalid multipart form")
)

// multipartMemory is how much of a form is buffered in memory before
// parts spill to temporary files.
const multipartMemory = 32 << 20

// handleIngest accepts a multipart batch under the "files" field and runs it
// through the two-phase ingest.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	files, err := s.readBatch(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	result, err := s.service.Ingest(ctx, files)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	render.JSON(w, r, result)
}

// readBatch reads every "files" part of the request into memory, enforcing
// the file count and per-file size limits.
func (s *Server) readBatch(w http.ResponseWriter, r *http.Request) ([]core.UploadedFile, error) {
	limits := s.cfg.Upload
	// Room for every file at full size plus form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFileSize*int64(limits.MaxFiles)+1<<20)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, fmt.Errorf("%w: request exceeds %d bytes", errFileTooLarge, tooBig.Limit)
		}
		return nil, fmt.Errorf("%w: %v", errMultipartForm, err)
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) > limits.MaxFiles {
		return nil, fmt.Errorf("%w: %d (max %d)", errTooManyFiles, len(headers), limits.MaxFiles)
	}

	files := make([]core.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > limits.MaxFileSize {
			return nil, fmt.Errorf("%w: %q is %d bytes (max %d)", errFileTooLarge, fh.Filename, fh.Size, limits.MaxFileSize)
		}
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("%w: read %q: %v", errMultipartForm, fh.Filename, err)
		}
		files = append(files, core.UploadedFile{Name: filepath.Base(fh.Filename), Data: data})
	}
	return files, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
