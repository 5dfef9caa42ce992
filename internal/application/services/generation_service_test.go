package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"ghibli-generator/internal/domain/entities"
	"ghibli-generator/internal/infrastructure/clients"
	"ghibli-generator/internal/infrastructure/config"
	"ghibli-generator/internal/infrastructure/logger"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockImageEditClient 上游图片编辑客户端mock
type MockImageEditClient struct {
	mock.Mock
}

func (m *MockImageEditClient) EditImage(ctx context.Context, request *clients.ImageEditRequest) (*clients.ImageEditResponse, error) {
	args := m.Called(ctx, request)
	if resp := args.Get(0); resp != nil {
		return resp.(*clients.ImageEditResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func pngUpload() *entities.CandidateFile {
	return &entities.CandidateFile{
		Name:      "cat.png",
		Size:      4,
		MediaType: "image/png",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("\x89PNG")), nil
		},
	}
}

func configuredOpenAI() *config.OpenAIConfig {
	return &config.OpenAIConfig{APIKey: "sk-test", BaseURL: "https://api.openai.com/v1"}
}

func TestGenerationService_Generate(t *testing.T) {
	t.Run("成功时返回第一张图片的URL并使用固定参数", func(t *testing.T) {
		client := &MockImageEditClient{}
		client.On("EditImage", mock.Anything, mock.MatchedBy(func(req *clients.ImageEditRequest) bool {
			return req.Prompt == GhibliPrompt &&
				req.N == 1 &&
				req.Size == "1024x1024" &&
				req.ResponseFormat == "url" &&
				req.Filename == "cat.png" &&
				req.ContentType == "image/png"
		})).Return(&clients.ImageEditResponse{
			Data: []clients.ImageData{{URL: "https://x/y.png"}, {URL: "https://x/z.png"}},
		}, nil)

		service := NewGenerationService(client, configuredOpenAI(), &MockLogger{})
		imageURL, err := service.Generate(context.Background(), pngUpload())

		require.NoError(t, err)
		assert.Equal(t, "https://x/y.png", imageURL)
		client.AssertExpectations(t)
	})

	t.Run("未配置凭证时不调用上游", func(t *testing.T) {
		client := &MockImageEditClient{}
		service := NewGenerationService(client, &config.OpenAIConfig{}, &MockLogger{})

		assert.False(t, service.IsConfigured())
		_, err := service.Generate(context.Background(), pngUpload())

		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, http.StatusInternalServerError, genErr.StatusCode)
		assert.Equal(t, MsgServerConfiguration, genErr.Message)
		client.AssertNotCalled(t, "EditImage", mock.Anything, mock.Anything)
	})

	t.Run("结果列表为空时返回500", func(t *testing.T) {
		client := &MockImageEditClient{}
		client.On("EditImage", mock.Anything, mock.Anything).Return(&clients.ImageEditResponse{Data: []clients.ImageData{}}, nil)

		base, hook := test.NewNullLogger()
		service := NewGenerationService(client, configuredOpenAI(), logger.FromLogrus(base))
		_, err := service.Generate(context.Background(), pngUpload())

		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, http.StatusInternalServerError, genErr.StatusCode)
		assert.Equal(t, "Failed to retrieve image URL from the generation service.", genErr.Message)

		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
		assert.Contains(t, hook.LastEntry().Data, "payload")
	})

	t.Run("第一张结果没有URL时返回500", func(t *testing.T) {
		client := &MockImageEditClient{}
		client.On("EditImage", mock.Anything, mock.Anything).Return(&clients.ImageEditResponse{
			Data: []clients.ImageData{{B64JSON: "aGVsbG8="}},
		}, nil)

		service := NewGenerationService(client, configuredOpenAI(), &MockLogger{})
		_, err := service.Generate(context.Background(), pngUpload())

		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, MsgMissingImageURL, genErr.Message)
	})

	t.Run("上传文件无法读取时返回500且不调用上游", func(t *testing.T) {
		client := &MockImageEditClient{}
		upload := pngUpload()
		upload.Open = func() (io.ReadCloser, error) { return nil, errors.New("temp file removed") }

		service := NewGenerationService(client, configuredOpenAI(), &MockLogger{})
		_, err := service.Generate(context.Background(), upload)

		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, http.StatusInternalServerError, genErr.StatusCode)
		assert.Equal(t, "Failed to process uploaded image file.", genErr.Message)
		assert.ErrorIs(t, err, clients.ErrImageStream)
		client.AssertNotCalled(t, "EditImage", mock.Anything, mock.Anything)
	})

	t.Run("上游错误被转换并记录日志", func(t *testing.T) {
		client := &MockImageEditClient{}
		client.On("EditImage", mock.Anything, mock.Anything).Return(nil, &clients.UpstreamError{
			StatusCode: http.StatusTooManyRequests,
			Code:       "rate_limit_exceeded",
			Type:       "requests",
			Message:    "Rate limit reached",
		})

		base, hook := test.NewNullLogger()
		service := NewGenerationService(client, configuredOpenAI(), logger.FromLogrus(base))
		_, err := service.Generate(context.Background(), pngUpload())

		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, http.StatusTooManyRequests, genErr.StatusCode)
		assert.Equal(t, "Failed to generate image due to an upstream service error. (Status: 429)", genErr.Message)
		assert.NotContains(t, genErr.Message, "Rate limit reached")

		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, "rate_limit_exceeded", hook.LastEntry().Data["upstream_code"])
		assert.Equal(t, http.StatusTooManyRequests, hook.LastEntry().Data["upstream_status"])
	})
}

func TestTranslateUpstreamFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "额度耗尽",
			err:        &clients.UpstreamError{StatusCode: http.StatusBadRequest, Code: BillingHardLimitCode, Message: "Billing hard limit has been reached"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Image generation failed: Billing limit reached.",
		},
		{
			name:       "额度耗尽优先于其他状态码",
			err:        &clients.UpstreamError{StatusCode: http.StatusTooManyRequests, Code: BillingHardLimitCode},
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "Image generation failed: Billing limit reached.",
		},
		{
			name:       "上游400",
			err:        &clients.UpstreamError{StatusCode: http.StatusBadRequest, Code: "invalid_image", Message: "Invalid image"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Image generation failed: Invalid request data provided to upstream service.",
		},
		{
			name:       "上游429原样透传状态码",
			err:        &clients.UpstreamError{StatusCode: http.StatusTooManyRequests},
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "Failed to generate image due to an upstream service error. (Status: 429)",
		},
		{
			name:       "上游未给状态码时为500",
			err:        &clients.UpstreamError{Message: "boom"},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to generate image due to an upstream service error. (Status: 500)",
		},
		{
			name:       "包装过的上游错误",
			err:        errors.Join(errors.New("edit"), &clients.UpstreamError{StatusCode: http.StatusServiceUnavailable}),
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "Failed to generate image due to an upstream service error. (Status: 503)",
		},
		{
			name:       "本地图片流失败",
			err:        clients.ErrImageStream,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to process uploaded image file.",
		},
		{
			name:       "其他错误",
			err:        errors.New("failed to send request: dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "An unexpected server error occurred.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			genErr := TranslateUpstreamFailure(tt.err)

			assert.Equal(t, tt.wantStatus, genErr.StatusCode)
			assert.Equal(t, tt.wantMsg, genErr.Message)
			assert.ErrorIs(t, genErr, tt.err)
		})
	}
}
