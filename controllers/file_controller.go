package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"back/fileparse"
)

// FileController parses uploaded documents into prompt-ready text.
type FileController struct{}

// NewFileController wires the file parsing handler.
func NewFileController() *FileController {
	return &FileController{}
}

// ParseFiles handles POST /api/files/parse (multipart, field "files").
// Individual file failures become markers in the extracted text; the
// request itself only fails when no files arrive at all.
func (fc *FileController) ParseFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form with files is required"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	results := make([]fileparse.Result, 0, len(files))
	for _, fh := range files {
		log.Info().Str("file", fh.Filename).Int64("size", fh.Size).Msg("parsing uploaded file")
		data, err := readUpload(fh)
		if err != nil {
			log.Error().Err(err).Str("file", fh.Filename).Msg("failed to read upload")
			results = append(results, fileparse.Result{
				Name:    fh.Filename,
				Content: fmt.Sprintf("[parse failed: %v]", err),
				Error:   err.Error(),
			})
			continue
		}
		results = append(results, fileparse.Parse(fh.Filename, data))
	}

	c.JSON(http.StatusOK, gin.H{
		"parsed_files": results,
		"formatted":    fileparse.FormatForPrompt(results),
	})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
