package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
)

// ErrImageStream 本地图片流不可读（临时文件丢失、读取中断等）
var ErrImageStream = errors.New("image stream unavailable")

// UpstreamError 上游服务返回的结构化错误
type UpstreamError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status=%d code=%s type=%s message=%s", e.StatusCode, e.Code, e.Type, e.Message)
}

// ImageEditRequest 图片编辑请求
type ImageEditRequest struct {
	Image          io.Reader
	Filename       string
	ContentType    string
	Prompt         string
	N              int
	Size           string
	ResponseFormat string
	Model          string
}

// ImageEditResponse 图片编辑响应
type ImageEditResponse struct {
	Created int64       `json:"created"`
	Data    []ImageData `json:"data"`
}

// ImageData 单张结果
type ImageData struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// FirstURL 第一张结果的URL，不存在时返回空串
func (r *ImageEditResponse) FirstURL() string {
	if r == nil || len(r.Data) == 0 {
		return ""
	}
	return r.Data[0].URL
}

// ImageEditClient 上游图片编辑客户端接口
type ImageEditClient interface {
	// EditImage 提交图片和指令，返回结果列表或*UpstreamError
	EditImage(ctx context.Context, request *ImageEditRequest) (*ImageEditResponse, error)
}

// OpenAIImageOptions 客户端选项
type OpenAIImageOptions struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// openAIImageClientImpl OpenAI兼容的图片编辑客户端
type openAIImageClientImpl struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewOpenAIImageClient 创建上游图片编辑客户端
func NewOpenAIImageClient(opts OpenAIImageOptions) ImageEditClient {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// 不设置超时，由上游自身的完成或失败信号结束请求
		httpClient = &http.Client{}
	}
	return &openAIImageClientImpl{
		httpClient: httpClient,
		baseURL:    base,
		apiKey:     strings.TrimSpace(opts.APIKey),
	}
}

// upstreamErrorEnvelope 上游错误响应体
type upstreamErrorEnvelope struct {
	Error *struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// EditImage 调用 /images/edits
func (c *openAIImageClientImpl) EditImage(ctx context.Context, request *ImageEditRequest) (*ImageEditResponse, error) {
	if request == nil || request.Image == nil {
		return nil, fmt.Errorf("%w: no image provided", ErrImageStream)
	}

	body, contentType, err := buildEditForm(request)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/images/edits"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseUpstreamError(resp.StatusCode, responseBody)
	}

	var response ImageEditResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &response, nil
}

// buildEditForm 构造multipart请求体，图片读取失败归为ErrImageStream
func buildEditForm(request *ImageEditRequest) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	filename := request.Filename
	if filename == "" {
		filename = "image.png"
	}
	partContentType := request.ContentType
	if partContentType == "" {
		partContentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", partContentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, request.Image); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageStream, err)
	}

	fields := []struct {
		name  string
		value string
	}{
		{"prompt", request.Prompt},
		{"n", strconv.Itoa(request.N)},
		{"size", request.Size},
		{"response_format", request.ResponseFormat},
		{"model", request.Model},
	}
	for _, field := range fields {
		if field.value == "" || (field.name == "n" && request.N <= 0) {
			continue
		}
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", field.name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}

// parseUpstreamError 将非2xx响应转换为UpstreamError
func parseUpstreamError(statusCode int, body []byte) *UpstreamError {
	upstreamErr := &UpstreamError{StatusCode: statusCode}

	var envelope upstreamErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		upstreamErr.Message = envelope.Error.Message
		upstreamErr.Type = envelope.Error.Type
		switch code := envelope.Error.Code.(type) {
		case nil:
		case string:
			upstreamErr.Code = code
		default:
			upstreamErr.Code = fmt.Sprint(code)
		}
		return upstreamErr
	}

	upstreamErr.Message = http.StatusText(statusCode)
	return upstreamErr
}
