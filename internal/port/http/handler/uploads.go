package handler

import (
	"io"
	"net/http"
	"strings"
)

const maxUploadSize = 32 << 20 // 32 MiB

type upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// formFile reads an optional file field from a multipart request. Returns
// (nil, nil) when the field is absent.
func formFile(r *http.Request, field string) (*upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		return nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &upload{
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
