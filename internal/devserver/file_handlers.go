package devserver

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"lovedu_client/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

func assistantTarget(id string) string { return "assistant/" + id }
func courseTarget(id string) string    { return "course/" + id }

// readPDF pulls the "file" part and checks it is a PDF within the size limit.
func (s *Server) readPDF(c *gin.Context) (string, []byte, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "file is required")
		return "", nil, false
	}
	if header.Size > s.cfg.MaxUploadBytes {
		abortDetail(c, http.StatusRequestEntityTooLarge, "File too large")
		return "", nil, false
	}
	f, err := header.Open()
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "Failed to read uploaded file")
		return "", nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "Failed to read uploaded file")
		return "", nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		abortDetail(c, http.StatusRequestEntityTooLarge, "File too large")
		return "", nil, false
	}
	if !mimetype.Detect(data).Is("application/pdf") {
		abortDetail(c, http.StatusBadRequest, "Only PDF files are allowed")
		return "", nil, false
	}
	return header.Filename, data, true
}

func (s *Server) uploadAssistantFile(c *gin.Context) {
	assistant := models.AssistantID(c.PostForm("assistant_id"))
	if !assistant.Valid() {
		abortDetail(c, http.StatusBadRequest, fmt.Sprintf("Unknown assistant %q", assistant))
		return
	}
	name, data, ok := s.readPDF(c)
	if !ok {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	meta := s.state.putFile(assistantTarget(string(assistant)), models.UploadedFile{
		AssistantID: string(assistant),
		FileName:    name,
		UploadedBy:  currentAccount(c).user.ID,
	}, data)
	c.JSON(http.StatusOK, meta)
}

func (s *Server) listAssistantFiles(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	c.JSON(http.StatusOK, s.state.fileList(assistantTarget(c.Param("assistant"))))
}

func (s *Server) deleteAssistantFile(c *gin.Context) {
	s.deleteFile(c, assistantTarget(c.Param("assistant")))
}

func (s *Server) downloadAssistantFile(c *gin.Context) {
	s.serveFile(c, assistantTarget(c.Param("assistant")))
}

func (s *Server) uploadCourseFile(c *gin.Context) {
	courseID := c.Param("id")
	fileType := models.FileType(c.DefaultPostForm("file_type", string(models.FileTypeContent)))
	if !fileType.Valid() {
		abortDetail(c, http.StatusBadRequest, "file_type must be behavior or content")
		return
	}

	s.state.mu.Lock()
	_, exists := s.state.courses[courseID]
	s.state.mu.Unlock()
	if !exists {
		abortDetail(c, http.StatusNotFound, "Course not found")
		return
	}

	name, data, ok := s.readPDF(c)
	if !ok {
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	meta := s.state.putFile(courseTarget(courseID), models.UploadedFile{
		AssistantID: models.CourseAssistantKey,
		FileName:    name,
		UploadedBy:  currentAccount(c).user.ID,
		FileType:    fileType,
	}, data)
	c.JSON(http.StatusOK, meta)
}

func (s *Server) listCourseFiles(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	c.JSON(http.StatusOK, s.state.fileList(courseTarget(c.Param("id"))))
}

func (s *Server) deleteCourseFile(c *gin.Context) {
	s.deleteFile(c, courseTarget(c.Param("id")))
}

func (s *Server) downloadCourseFile(c *gin.Context) {
	s.serveFile(c, courseTarget(c.Param("id")))
}

func (s *Server) deleteFile(c *gin.Context, target string) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.removeFile(target, c.Param("name")) {
		abortDetail(c, http.StatusNotFound, "File not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}

func (s *Server) serveFile(c *gin.Context, target string) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	name := c.Param("name")
	i, ok := s.state.findFile(target, name)
	if !ok {
		abortDetail(c, http.StatusNotFound, "File not found")
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, "application/pdf", s.state.files[target][i].data)
}
