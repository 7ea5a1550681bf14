package server

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/klauspost/compress/zip"
)

const maxSessionNameLength = 255

var zipContentTypes = []string{"application/zip", "application/x-zip-compressed"}

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("session_name", func(fl validator.FieldLevel) bool {
			return validSessionName(fl.Field().String())
		})
	})
}

func validSessionName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len(trimmed) > maxSessionNameLength {
		return false
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) || r == '/' || r == '\\' || r == '"' {
			return false
		}
	}
	return true
}

// archiveError is an upload rejected for its content. Its message is shown
// to the user as is.
type archiveError struct {
	message string
}

func (e *archiveError) Error() string {
	return e.message
}

func checkContentType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	for _, allowed := range zipContentTypes {
		if strings.EqualFold(mediaType, allowed) {
			return nil
		}
	}
	return &archiveError{message: fmt.Sprintf("Must upload a ZIP file, not '%s'", contentType)}
}

// validateArchive checks content is a readable ZIP holding every required
// path. Member contents are not inspected.
func validateArchive(content []byte, required []string) error {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return &archiveError{message: "Must upload a ZIP file"}
	}

	names := make([]string, 0, len(reader.File))
	present := make(map[string]struct{}, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
		present[file.Name] = struct{}{}
	}
	for _, path := range required {
		if _, ok := present[path]; ok {
			continue
		}
		return &archiveError{message: fmt.Sprintf(
			"ZIP file must contain a file named exactly '%s'.\nFound the following files:\n %s",
			path,
			strings.Join(names, "\n "),
		)}
	}
	return nil
}
