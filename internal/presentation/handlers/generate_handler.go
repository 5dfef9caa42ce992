package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"ghibli-generator/internal/application/dto"
	"ghibli-generator/internal/application/services"
	"ghibli-generator/internal/domain/entities"
	"ghibli-generator/internal/infrastructure/clients"
	"ghibli-generator/internal/infrastructure/config"
	"ghibli-generator/internal/infrastructure/logger"
	"ghibli-generator/internal/presentation/middleware"
	"ghibli-generator/internal/utils"

	"github.com/gin-gonic/gin"
)

// 上传校验文案
const (
	MsgNoImageUploaded = "No image file uploaded."
	MsgOnlyOneImage    = "Please upload only one image."
)

// GenerateHandler 图像生成处理器
type GenerateHandler struct {
	generationService services.GenerationService
	config            *config.GenerationConfig
	maxBodySize       int64
	logger            logger.Logger
}

// NewGenerateHandler 创建图像生成处理器
func NewGenerateHandler(
	generationService services.GenerationService,
	config *config.GenerationConfig,
	maxBodySize int64,
	logger logger.Logger,
) *GenerateHandler {
	return &GenerateHandler{
		generationService: generationService,
		config:            config,
		maxBodySize:       maxBodySize,
		logger:            logger,
	}
}

// Generate 生成吉卜力风格图片
// @Summary 生成吉卜力风格图片
// @Description 上传一张PNG或JPEG图片（不超过4MB），返回上游生成图片的URL
// @Tags 图像生成
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "要转换的图片"
// @Success 200 {object} dto.GenerateSuccessResponse "生成成功"
// @Failure 400 {object} dto.GenerateErrorResponse "上传校验失败"
// @Failure 405 {object} dto.GenerateErrorResponse "仅支持POST"
// @Failure 429 {object} dto.GenerateErrorResponse "上游限流"
// @Failure 500 {object} dto.GenerateErrorResponse "服务器内部错误"
// @Router /api/generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	log := h.logger.WithField("request_id", middleware.GetRequestID(c))

	// 1. 方法检查
	if c.Request.Method != http.MethodPost {
		log.WithField("method", c.Request.Method).Warn("Method not allowed")
		c.Header("Allow", http.MethodPost)
		h.fail(c, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s Not Allowed", c.Request.Method))
		return
	}

	// 2. 凭证检查，细节只写日志
	if !h.generationService.IsConfigured() {
		log.Error("OPENAI_API_KEY environment variable is not set.")
		h.fail(c, http.StatusInternalServerError, services.MsgServerConfiguration)
		return
	}

	// 3. 文件检查
	if h.maxBodySize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodySize)
	}
	if err := c.Request.ParseMultipartForm(h.config.MultipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			log.WithFields(map[string]interface{}{
				"error":    err.Error(),
				"max_body": h.maxBodySize,
			}).Warn("Request body exceeds limit")
			h.fail(c, http.StatusBadRequest, h.tooLargeMessage())
			return
		}
		log.WithField("error", err.Error()).Warn("Failed to parse multipart form")
		h.fail(c, http.StatusBadRequest, MsgNoImageUploaded)
		return
	}
	defer c.Request.MultipartForm.RemoveAll()

	fileHeaders := c.Request.MultipartForm.File[clients.GenerateFieldName]
	if len(fileHeaders) == 0 {
		log.Warn("No image file in request")
		h.fail(c, http.StatusBadRequest, MsgNoImageUploaded)
		return
	}
	if len(fileHeaders) > 1 {
		log.WithField("file_count", len(fileHeaders)).Warn("Multiple image files in request")
		h.fail(c, http.StatusBadRequest, MsgOnlyOneImage)
		return
	}
	fileHeader := fileHeaders[0]

	// 4. 类型检查
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || !utils.IsAllowedFileType(contentType, h.config.AllowedTypes) {
		log.WithFields(map[string]interface{}{
			"content_type":  contentType,
			"allowed_types": h.config.AllowedTypes,
			"filename":      fileHeader.Filename,
		}).Warn("File type not allowed")
		h.fail(c, http.StatusBadRequest, h.invalidTypeMessage())
		return
	}

	// 5. 大小检查
	if fileHeader.Size > h.config.MaxFileSizeBytes() {
		log.WithFields(map[string]interface{}{
			"file_size": fileHeader.Size,
			"max_size":  h.config.MaxFileSizeBytes(),
			"filename":  fileHeader.Filename,
		}).Warn("File size exceeds limit")
		h.fail(c, http.StatusBadRequest, h.tooLargeMessage())
		return
	}

	// 6. 调用上游
	image := candidateFromHeader(fileHeader)
	imageURL, err := h.generationService.Generate(c.Request.Context(), &image)
	if err != nil {
		var genErr *services.GenerationError
		if !errors.As(err, &genErr) {
			genErr = &services.GenerationError{StatusCode: http.StatusInternalServerError, Message: services.MsgUnexpectedServer, Cause: err}
		}
		log.WithFields(map[string]interface{}{
			"error":       err.Error(),
			"status_code": genErr.StatusCode,
			"filename":    fileHeader.Filename,
		}).Error("Image generation failed")
		h.fail(c, genErr.StatusCode, genErr.Message)
		return
	}

	log.WithFields(map[string]interface{}{
		"filename": fileHeader.Filename,
		"size":     fileHeader.Size,
	}).Info("Image generated successfully")

	c.JSON(http.StatusOK, dto.GenerateSuccessResponse{ImageURL: imageURL})
}

func (h *GenerateHandler) fail(c *gin.Context, status int, message string) {
	c.JSON(status, dto.NewGenerateError(message))
}

func (h *GenerateHandler) invalidTypeMessage() string {
	return fmt.Sprintf("Invalid file type. Please upload %s.", strings.Join(h.config.AllowedTypes, " or "))
}

func (h *GenerateHandler) tooLargeMessage() string {
	return fmt.Sprintf("Image file too large. Maximum size is %dMB.", h.config.MaxFileSizeMB)
}

// candidateFromHeader 将上传的表单文件转换为候选文件
func candidateFromHeader(fileHeader *multipart.FileHeader) entities.CandidateFile {
	return entities.CandidateFile{
		Name:      fileHeader.Filename,
		Size:      fileHeader.Size,
		MediaType: fileHeader.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fileHeader.Open()
		},
	}
}
