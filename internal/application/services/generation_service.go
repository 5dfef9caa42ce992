package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ghibli-generator/internal/domain/entities"
	"ghibli-generator/internal/infrastructure/clients"
	"ghibli-generator/internal/infrastructure/config"
	"ghibli-generator/internal/infrastructure/logger"
)

// 上游调用的固定参数
const (
	GhibliPrompt         = "A Studio Ghibli style rendering of the image"
	OutputImageSize      = "1024x1024"
	OutputImageCount     = 1
	OutputResponseFormat = "url"
)

// BillingHardLimitCode 上游额度耗尽的错误码
const BillingHardLimitCode = "billing_hard_limit_reached"

// 面向调用方的错误文案
const (
	MsgServerConfiguration = "Server configuration error. Cannot process request."
	MsgMissingImageURL     = "Failed to retrieve image URL from the generation service."
	MsgBillingLimit        = "Image generation failed: Billing limit reached."
	MsgUpstreamBadRequest  = "Image generation failed: Invalid request data provided to upstream service."
	MsgImageStream         = "Failed to process uploaded image file."
	MsgUnexpectedServer    = "An unexpected server error occurred."
)

// GenerationError 携带HTTP状态码和用户文案的生成失败
type GenerationError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed (%d): %s: %v", e.StatusCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed (%d): %s", e.StatusCode, e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// GenerationService 服务端图像生成服务
type GenerationService interface {
	// IsConfigured 是否配置了上游凭证
	IsConfigured() bool
	// Generate 调用上游编辑接口，失败时返回*GenerationError
	Generate(ctx context.Context, image *entities.CandidateFile) (string, error)
}

// generationServiceImpl 图像生成服务实现
type generationServiceImpl struct {
	client clients.ImageEditClient
	config *config.OpenAIConfig
	logger logger.Logger
}

// NewGenerationService 创建图像生成服务，凭证只在此处注入
func NewGenerationService(client clients.ImageEditClient, cfg *config.OpenAIConfig, logger logger.Logger) GenerationService {
	return &generationServiceImpl{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// IsConfigured 检查凭证
func (s *generationServiceImpl) IsConfigured() bool {
	return s.config != nil && s.config.IsConfigured() && s.client != nil
}

// Generate 生成吉卜力风格图片
func (s *generationServiceImpl) Generate(ctx context.Context, image *entities.CandidateFile) (string, error) {
	if !s.IsConfigured() {
		s.logger.Error("OPENAI_API_KEY is not configured")
		return "", &GenerationError{StatusCode: http.StatusInternalServerError, Message: MsgServerConfiguration}
	}

	src, err := image.Reader()
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"error":    err.Error(),
			"filename": image.Name,
		}).Error("Failed to open uploaded image")
		return "", &GenerationError{
			StatusCode: http.StatusInternalServerError,
			Message:    MsgImageStream,
			Cause:      fmt.Errorf("%w: %v", clients.ErrImageStream, err),
		}
	}
	defer src.Close()

	s.logger.WithFields(map[string]interface{}{
		"filename":     image.Name,
		"size":         image.Size,
		"content_type": image.MediaType,
	}).Info("Sending image to upstream edit operation")

	result, err := s.client.EditImage(ctx, &clients.ImageEditRequest{
		Image:          src,
		Filename:       image.Name,
		ContentType:    image.MediaType,
		Prompt:         GhibliPrompt,
		N:              OutputImageCount,
		Size:           OutputImageSize,
		ResponseFormat: OutputResponseFormat,
		Model:          s.config.Model,
	})
	if err != nil {
		genErr := TranslateUpstreamFailure(err)
		fields := map[string]interface{}{
			"error":       err.Error(),
			"status_code": genErr.StatusCode,
		}
		var upstreamErr *clients.UpstreamError
		if errors.As(err, &upstreamErr) {
			fields["upstream_status"] = upstreamErr.StatusCode
			fields["upstream_code"] = upstreamErr.Code
			fields["upstream_type"] = upstreamErr.Type
			fields["upstream_message"] = upstreamErr.Message
		}
		s.logger.WithFields(fields).Error("Error during image generation process")
		return "", genErr
	}

	imageURL := result.FirstURL()
	if imageURL == "" {
		payload, _ := json.Marshal(result)
		s.logger.WithFields(map[string]interface{}{
			"payload": string(payload),
		}).Error("Upstream response did not contain an image URL")
		return "", &GenerationError{StatusCode: http.StatusInternalServerError, Message: MsgMissingImageURL}
	}

	return imageURL, nil
}

// TranslateUpstreamFailure 将上游调用失败映射为状态码和安全的用户文案
func TranslateUpstreamFailure(err error) *GenerationError {
	var upstreamErr *clients.UpstreamError
	switch {
	case errors.As(err, &upstreamErr):
		status := upstreamErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		message := fmt.Sprintf("Failed to generate image due to an upstream service error. (Status: %d)", status)
		if upstreamErr.Code == BillingHardLimitCode {
			message = MsgBillingLimit
		} else if upstreamErr.StatusCode == http.StatusBadRequest {
			message = MsgUpstreamBadRequest
		}
		return &GenerationError{StatusCode: status, Message: message, Cause: err}
	case errors.Is(err, clients.ErrImageStream):
		return &GenerationError{StatusCode: http.StatusInternalServerError, Message: MsgImageStream, Cause: err}
	default:
		return &GenerationError{StatusCode: http.StatusInternalServerError, Message: MsgUnexpectedServer, Cause: err}
	}
}
