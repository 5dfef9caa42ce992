package utils

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// IsAllowedFileType 检查文件类型是否被允许
// 这是一个纯函数，可以直接调用
func IsAllowedFileType(contentType string, allowedTypes []string) bool {
	if len(allowedTypes) == 0 {
		return true // 如果没有限制，允许所有类型
	}

	for _, allowedType := range allowedTypes {
		if contentType == allowedType {
			return true
		}
		// 支持通配符匹配，如 "image/*"
		if strings.HasSuffix(allowedType, "/*") {
			prefix := strings.TrimSuffix(allowedType, "/*")
			if strings.HasPrefix(contentType, prefix+"/") {
				return true
			}
		}
	}

	return false
}

// InferMimeType 从文件名推断MIME类型
func InferMimeType(filename string) string {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// 去掉 charset 等参数
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	return contentType
}

// DetectMediaType 按文件内容识别MIME类型，识别失败时退回扩展名推断
func DetectMediaType(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil || mtype.Is("application/octet-stream") {
		return InferMimeType(path)
	}
	if mediaType, _, err := mime.ParseMediaType(mtype.String()); err == nil {
		return mediaType
	}
	return mtype.String()
}

// FormatFileSize 格式化文件大小为人类可读的格式
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
