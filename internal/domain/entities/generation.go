package entities

import (
	"errors"
	"io"
)

// CandidateFile 用户选择或拖入、尚未被接受的文件
type CandidateFile struct {
	Name      string `json:"name"`       // 仅用于展示
	Size      int64  `json:"size"`       // 字节
	MediaType string `json:"media_type"` // 声明的MIME类型

	// Open 打开文件内容，每次提交调用一次
	Open func() (io.ReadCloser, error) `json:"-"`
}

// ErrNoContent 候选文件没有可读取的内容
var ErrNoContent = errors.New("candidate file has no content")

// Reader 打开文件内容
func (f *CandidateFile) Reader() (io.ReadCloser, error) {
	if f.Open == nil {
		return nil, ErrNoContent
	}
	return f.Open()
}

// RejectionReason 拒绝原因
type RejectionReason string

const (
	RejectionInvalidType  RejectionReason = "invalid-type"
	RejectionTooLarge     RejectionReason = "too-large"
	RejectionTooManyFiles RejectionReason = "too-many-files"
	RejectionOther        RejectionReason = "other"
)

// rejectionPriority 同一文件多个拒绝原因时按此顺序取第一个
var rejectionPriority = []RejectionReason{
	RejectionTooManyFiles,
	RejectionInvalidType,
	RejectionTooLarge,
	RejectionOther,
}

// FirstRejection 按固定顺序返回第一个命中的原因
func FirstRejection(reasons []RejectionReason) (RejectionReason, bool) {
	for _, candidate := range rejectionPriority {
		for _, r := range reasons {
			if r == candidate {
				return candidate, true
			}
		}
	}
	return "", false
}

// 文件选择组件的拒绝码
const (
	PickerCodeInvalidType  = "file-invalid-type"
	PickerCodeTooLarge     = "file-too-large"
	PickerCodeTooManyFiles = "too-many-files"
)

// pickerCodeReasons 选择组件拒绝码到拒绝原因的映射，未列出的均视为other
var pickerCodeReasons = map[string]RejectionReason{
	PickerCodeInvalidType:  RejectionInvalidType,
	PickerCodeTooLarge:     RejectionTooLarge,
	PickerCodeTooManyFiles: RejectionTooManyFiles,
}

// PickerRejection 文件选择组件预先拒绝的文件
type PickerRejection struct {
	File    CandidateFile `json:"file"`
	Code    string        `json:"code"`
	Message string        `json:"message"`
}

// Reason 映射为拒绝原因
func (r PickerRejection) Reason() RejectionReason {
	if reason, ok := pickerCodeReasons[r.Code]; ok {
		return reason
	}
	return RejectionOther
}

// ValidationOutcome 校验结果：Accepted或Rejected二选一
type ValidationOutcome struct {
	Accepted bool            `json:"accepted"`
	File     *CandidateFile  `json:"file,omitempty"`
	Reason   RejectionReason `json:"reason,omitempty"`
	Detail   string          `json:"detail,omitempty"` // 选择组件给出的原始说明，仅other使用
}

// Accept 构造接受结果
func Accept(file CandidateFile) ValidationOutcome {
	return ValidationOutcome{Accepted: true, File: &file}
}

// Reject 构造拒绝结果
func Reject(reason RejectionReason, detail string) ValidationOutcome {
	return ValidationOutcome{Reason: reason, Detail: detail}
}

// Message 面向用户的提示
func (o ValidationOutcome) Message() string {
	if o.Accepted {
		return ""
	}
	switch o.Reason {
	case RejectionInvalidType:
		return "Invalid file type. Please upload a JPG, PNG, or WEBP image."
	case RejectionTooLarge:
		return "File is too large. Maximum size is 5MB."
	case RejectionTooManyFiles:
		return "Please upload only one file at a time."
	default:
		if o.Detail != "" {
			return "Error: " + o.Detail
		}
		return "File selection failed. Please try again."
	}
}

// GenerationPhase 生成请求生命周期阶段
type GenerationPhase string

const (
	PhaseIdle       GenerationPhase = "idle"
	PhaseSubmitting GenerationPhase = "submitting"
	PhaseSucceeded  GenerationPhase = "succeeded"
	PhaseFailed     GenerationPhase = "failed"
)

// GenerationState 生成请求状态快照，ImageURL与Error至多一个非空
type GenerationState struct {
	Phase    GenerationPhase `json:"phase"`
	ImageURL string          `json:"image_url,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Loading 是否有请求在进行中
func (s GenerationState) Loading() bool {
	return s.Phase == PhaseSubmitting
}

// Done 是否处于终态
func (s GenerationState) Done() bool {
	return s.Phase == PhaseSucceeded || s.Phase == PhaseFailed
}
