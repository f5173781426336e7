package rest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"file-vault-api/internal/application/ports"
	domain "file-vault-api/internal/domain/file"
	"file-vault-api/internal/interface/api/rest/dto/file"
	"file-vault-api/internal/interface/api/rest/middleware"
	"file-vault-api/internal/interface/api/rest/validator"
)

// 10MB
const maxSize = int64(10 << 20)

type FileController struct {
	fileService ports.FileService
	logger      *zap.Logger
}

func NewFileController(
	r *gin.Engine,
	fileService ports.FileService,
	logger *zap.Logger,
	authService ports.AuthService,
) *FileController {
	fc := &FileController{
		fileService: fileService,
		logger:      logger,
	}

	authed := middleware.AuthMiddleware(authService)
	r.POST(RouteFiles, authed, fc.CreateFileHandler)
	r.GET(RouteFiles, authed, fc.ListFilesHandler)
	r.GET(RouteFile, authed, fc.GetFileHandler)
	r.GET(RouteFileContent, authed, fc.GetFileContentHandler)
	r.PATCH(RouteFileVisibility, authed, fc.SetVisibilityHandler)

	return fc
}

func requesterUUID(c *gin.Context) (bool, uuid.UUID) {
	return validator.IsUUID(c.GetString(middleware.CtxUserID))
}

func (fc *FileController) CreateFileHandler(c *gin.Context) {
	ok, requester := requesterUUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	kind, err := validator.ParseKind(c.PostForm("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	parent, err := validator.ParseParentID(c.PostForm("parent_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := ports.CreateFileInput{
		Name:   c.PostForm("name"),
		Kind:   kind,
		Parent: parent,
		Public: c.PostForm("public") == "true",
	}

	if kind != domain.KindFolder {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fh.Size <= 0 || fh.Size > maxSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large or empty"})
			return
		}

		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
			return
		}

		in.Data = data
		in.ContentType = fh.Header.Get("Content-Type")
		if in.Name == "" {
			in.Name = fh.Filename
		}
	}

	rec, err := fc.fileService.Create(c.Request.Context(), requester, in)
	if err != nil {
		status, msg := statusFromErr(err)
		if status == http.StatusInternalServerError {
			fc.logger.Error("Create() error", zap.Error(err))
			msg = "failed to create a file"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, file.ToResponseFileRecord(*rec))
}

func (fc *FileController) ListFilesHandler(c *gin.Context) {
	ok, requester := requesterUUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	page, err := validator.ValidatePage(c.Query("page"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	parent, err := validator.ParseParentID(c.Query("parent_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := fc.fileService.List(c.Request.Context(), requester, parent, page)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to list files"},
		)
		fc.logger.Error("List() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, file.ResponseData{
		Data: file.ToResponseFileRecords(records),
	})
}

func (fc *FileController) GetFileHandler(c *gin.Context) {
	ok, requester := requesterUUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	ok, id := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id must be a valid UUID"})
		return
	}

	rec, err := fc.fileService.Get(c.Request.Context(), requester, id)
	if err != nil {
		status, msg := statusFromErr(err)
		if status == http.StatusInternalServerError {
			fc.logger.Error("Get() error", zap.Error(err))
			msg = "failed to get a file"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, file.ToResponseFileRecord(*rec))
}

func (fc *FileController) GetFileContentHandler(c *gin.Context) {
	ok, requester := requesterUUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	ok, id := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id must be a valid UUID"})
		return
	}
	width, err := validator.ParseWidth(c.Query("width"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, contentType, err := fc.fileService.FetchContent(c.Request.Context(), requester, id, width)
	if err != nil {
		status, msg := statusFromErr(err)
		if status == http.StatusInternalServerError {
			fc.logger.Error("FetchContent() error", zap.Error(err))
			msg = "failed to get file content"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

func (fc *FileController) SetVisibilityHandler(c *gin.Context) {
	ok, requester := requesterUUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	ok, id := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id must be a valid UUID"})
		return
	}

	var req struct {
		Public *bool `json:"public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Public == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "public flag is required"})
		return
	}

	if err := fc.fileService.SetPublic(c.Request.Context(), requester, id, *req.Public); err != nil {
		status, msg := statusFromErr(err)
		if status == http.StatusInternalServerError {
			fc.logger.Error("SetPublic() error", zap.Error(err))
			msg = "failed to update visibility"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.Status(http.StatusNoContent)
}
