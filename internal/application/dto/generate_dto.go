package dto

// GenerateSuccessResponse 生成成功响应
type GenerateSuccessResponse struct {
	ImageURL string `json:"imageUrl" example:"https://oaidalleapiprodscus.blob.core.windows.net/private/img-abc.png"` // 生成图片的URL
}

// GenerateErrorResponse 生成失败响应
type GenerateErrorResponse struct {
	Error string `json:"error" example:"Image file too large. Maximum size is 4MB."` // 面向用户的一句话错误说明
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status             string `json:"status" example:"ok"`
	UpstreamConfigured bool   `json:"upstream_configured" example:"true"`
}

// NewGenerateError 创建错误响应
func NewGenerateError(message string) *GenerateErrorResponse {
	return &GenerateErrorResponse{Error: message}
}
