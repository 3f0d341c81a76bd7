package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/basel-ax/fireflyweb/internal/domain"
	"github.com/basel-ax/fireflyweb/internal/render"
	"github.com/basel-ax/fireflyweb/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	pageTemplate = "index.html"
	fileField    = "formFile"
)

// Actions is the set of image operations the page can trigger
type Actions interface {
	TextToImage(ctx context.Context, in service.Input) *render.Page
	GenerativeMatch(ctx context.Context, in service.Input) *render.Page
	GenerativeExpand(ctx context.Context, in service.Input) *render.Page
	GenerativeFill(ctx context.Context, in service.Input) *render.Page
	UploadImage(ctx context.Context, in service.Input) *render.Page
}

// form mirrors the input fields of the page
type form struct {
	Prompt  string `form:"prompt"`
	ImageID string `form:"imageId"`
	MaskID  string `form:"maskId"`
}

type view struct {
	Form form
	Page *render.Page
}

// Server serves the page and its action routes
type Server struct {
	actions        Actions
	renderer       *render.Renderer
	maxUploadBytes int64
	log            *zap.Logger
}

// NewRouter builds the gin engine with all routes registered
func NewRouter(actions Actions, renderer *render.Renderer, maxUploadBytes int64, log *zap.Logger) *gin.Engine {
	s := &Server{
		actions:        actions,
		renderer:       renderer,
		maxUploadBytes: maxUploadBytes,
		log:            log.Named("web"),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.log))
	r.MaxMultipartMemory = maxUploadBytes
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	r.GET("/", s.index)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/text-to-image", s.handle(actions.TextToImage))
	r.POST("/generative-match", s.handle(actions.GenerativeMatch))
	r.POST("/generative-expand", s.handle(actions.GenerativeExpand))
	r.POST("/generative-fill", s.handle(actions.GenerativeFill))
	r.POST("/upload", s.upload)
	return r
}

func (s *Server) index(c *gin.Context) {
	s.respond(c, form{}, &render.Page{})
}

func (s *Server) handle(run func(context.Context, service.Input) *render.Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f form
		if err := c.ShouldBind(&f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		page := run(c.Request.Context(), service.Input{
			Prompt:  f.Prompt,
			ImageID: f.ImageID,
			MaskID:  f.MaskID,
		})
		s.respond(c, f, page)
	}
}

func (s *Server) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)

	file, err := s.readFile(c)
	if err != nil {
		page := &render.Page{}
		s.renderer.Alert(page, fmt.Sprintf("FILE UPLOAD ERROR: %v", err), domain.SeverityDanger)
		s.respond(c, form{}, page)
		return
	}

	// the form is already parsed, so binding only echoes the text fields
	var f form
	_ = c.ShouldBind(&f)

	page := s.actions.UploadImage(c.Request.Context(), service.Input{File: file})
	s.respond(c, f, page)
}

// readFile returns the uploaded file, or nil when none was selected
func (s *Server) readFile(c *gin.Context) (*domain.File, error) {
	fh, err := c.FormFile(fileField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &domain.File{Name: fh.Filename, ContentType: contentType, Data: data}, nil
}

func (s *Server) respond(c *gin.Context, f form, page *render.Page) {
	switch c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) {
	case gin.MIMEJSON:
		c.JSON(http.StatusOK, page)
	default:
		c.HTML(http.StatusOK, pageTemplate, view{Form: f, Page: page})
	}
}
