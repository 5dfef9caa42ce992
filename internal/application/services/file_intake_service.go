package services

import (
	"ghibli-generator/internal/domain/entities"
	"ghibli-generator/internal/infrastructure/logger"
	"ghibli-generator/internal/utils"
)

// 客户端接收策略，比服务端宽松：多允许webp，上限5MB
var (
	ClientAllowedTypes       = []string{"image/jpeg", "image/png", "image/webp"}
	ClientMaxFileSize  int64 = 5 * 1024 * 1024
)

// FileIntakeService 客户端文件接收校验
type FileIntakeService interface {
	// Classify 对一次选择的文件给出唯一的校验结果
	Classify(files []entities.CandidateFile, rejections []entities.PickerRejection) entities.ValidationOutcome
}

// IntakePolicy 接收策略
type IntakePolicy struct {
	AllowedTypes []string
	MaxFileSize  int64
}

// DefaultIntakePolicy 默认客户端策略
func DefaultIntakePolicy() IntakePolicy {
	return IntakePolicy{
		AllowedTypes: ClientAllowedTypes,
		MaxFileSize:  ClientMaxFileSize,
	}
}

// fileIntakeServiceImpl 文件接收校验实现
type fileIntakeServiceImpl struct {
	policy IntakePolicy
	logger logger.Logger
}

// NewFileIntakeService 创建文件接收校验服务
func NewFileIntakeService(policy IntakePolicy, logger logger.Logger) FileIntakeService {
	return &fileIntakeServiceImpl{
		policy: policy,
		logger: logger,
	}
}

// Classify 检查顺序固定为 too-many-files → invalid-type → too-large → other
func (s *fileIntakeServiceImpl) Classify(files []entities.CandidateFile, rejections []entities.PickerRejection) entities.ValidationOutcome {
	total := len(files) + len(rejections)

	if total > 1 || hasTooManyFiles(rejections) {
		s.logRejection(entities.RejectionTooManyFiles, total, rejections)
		return entities.Reject(entities.RejectionTooManyFiles, "")
	}

	if total == 0 {
		s.logRejection(entities.RejectionOther, total, rejections)
		return entities.Reject(entities.RejectionOther, "")
	}

	var (
		file         entities.CandidateFile
		detail       string
		found        []entities.RejectionReason
		checkLocally = true
	)
	if len(files) == 1 {
		file = files[0]
	} else {
		file = rejections[0].File
		found = append(found, rejections[0].Reason())
		detail = rejections[0].Message
		// 未识别的拒绝码说明文件本身不可用，类型和大小没有意义
		checkLocally = rejections[0].Reason() != entities.RejectionOther
	}

	if checkLocally {
		if !utils.IsAllowedFileType(file.MediaType, s.policy.AllowedTypes) || file.MediaType == "" {
			found = append(found, entities.RejectionInvalidType)
		}
		if s.policy.MaxFileSize > 0 && file.Size > s.policy.MaxFileSize {
			found = append(found, entities.RejectionTooLarge)
		}
	}

	reason, rejected := entities.FirstRejection(found)
	if !rejected {
		return entities.Accept(file)
	}

	s.logger.WithFields(map[string]interface{}{
		"reason":     reason,
		"filename":   file.Name,
		"size":       file.Size,
		"media_type": file.MediaType,
		"max_size":   s.policy.MaxFileSize,
	}).Warn("File rejected")

	if reason != entities.RejectionOther {
		detail = ""
	}
	return entities.Reject(reason, detail)
}

func hasTooManyFiles(rejections []entities.PickerRejection) bool {
	for _, r := range rejections {
		if r.Reason() == entities.RejectionTooManyFiles {
			return true
		}
	}
	return false
}

func (s *fileIntakeServiceImpl) logRejection(reason entities.RejectionReason, total int, rejections []entities.PickerRejection) {
	codes := make([]string, 0, len(rejections))
	for _, r := range rejections {
		codes = append(codes, r.Code)
	}
	s.logger.WithFields(map[string]interface{}{
		"reason":       reason,
		"file_count":   total,
		"picker_codes": codes,
	}).Warn("File selection rejected")
}
