package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"ghibli-generator/internal/application/dto"
	"ghibli-generator/internal/domain/entities"
)

// GenerateFieldName 上传图片使用的表单字段名，与服务端一致
const GenerateFieldName = "image"

// GeneratePath 生成接口路径
const GeneratePath = "/api/generate"

// ResponseError 服务端返回了非成功响应
type ResponseError struct {
	StatusCode int
	StatusText string
	Message    string
	HasMessage bool // 响应体中是否带有非空的字符串error字段
}

func (e *ResponseError) Error() string {
	if e.HasMessage {
		return fmt.Sprintf("server responded %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server responded %d %s without error message", e.StatusCode, e.StatusText)
}

// NoResponseError 请求已发出但没有收到响应
type NoResponseError struct {
	Err error
}

func (e *NoResponseError) Error() string { return "no response from server: " + e.Err.Error() }
func (e *NoResponseError) Unwrap() error { return e.Err }

// RequestSetupError 请求无法构造或发送
type RequestSetupError struct {
	Err error
}

func (e *RequestSetupError) Error() string { return e.Err.Error() }
func (e *RequestSetupError) Unwrap() error { return e.Err }

// GenerateAPIClient 生成接口客户端
type GenerateAPIClient interface {
	// Generate 上传文件，返回生成图片的URL
	Generate(ctx context.Context, file *entities.CandidateFile) (string, error)
}

// generateAPIClientImpl 生成接口客户端实现
type generateAPIClientImpl struct {
	httpClient *http.Client
	baseURL    string
}

// NewGenerateAPIClient 创建生成接口客户端
func NewGenerateAPIClient(baseURL string, httpClient *http.Client) GenerateAPIClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &generateAPIClientImpl{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Generate 发送 multipart/form-data 请求
func (c *generateAPIClientImpl) Generate(ctx context.Context, file *entities.CandidateFile) (string, error) {
	body, contentType, err := buildUploadForm(file)
	if err != nil {
		return "", &RequestSetupError{Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+GeneratePath, body)
	if err != nil {
		return "", &RequestSetupError{Err: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &NoResponseError{Err: err}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NoResponseError{Err: err}
	}

	statusText := statusTextOf(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respErr := &ResponseError{StatusCode: resp.StatusCode, StatusText: statusText}
		var payload struct {
			Error *string `json:"error"`
		}
		// {"error":""} 视为没有错误信息，与缺少error字段一样按状态码报错
		if err := json.Unmarshal(responseBody, &payload); err == nil && payload.Error != nil && *payload.Error != "" {
			respErr.Message = *payload.Error
			respErr.HasMessage = true
		}
		return "", respErr
	}

	var success dto.GenerateSuccessResponse
	if err := json.Unmarshal(responseBody, &success); err != nil || success.ImageURL == "" {
		return "", &ResponseError{StatusCode: resp.StatusCode, StatusText: statusText}
	}

	return success.ImageURL, nil
}

// buildUploadForm 将候选文件写入image字段
func buildUploadForm(file *entities.CandidateFile) (*bytes.Buffer, string, error) {
	if file == nil {
		return nil, "", fmt.Errorf("no file to upload")
	}

	src, err := file.Reader()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer src.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, GenerateFieldName, quoteEscaper.Replace(file.Name)))
	if file.MediaType != "" {
		header.Set("Content-Type", file.MediaType)
	}

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}

// statusTextOf 取出状态行中的原因短语
func statusTextOf(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
