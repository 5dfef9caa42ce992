package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ghibli-generator/internal/domain/entities"
	"ghibli-generator/internal/infrastructure/clients"
	"ghibli-generator/internal/infrastructure/logger"
)

// 控制器本地拒绝提交时返回的错误
var (
	ErrNoFileSelected     = errors.New("no image file selected")
	ErrSubmissionInFlight = errors.New("an image generation request is already in progress")
)

// 客户端失败文案
const (
	MsgNoFileSelected     = "Please select an image file first."
	MsgConnectFailed      = "Failed to connect to the server. Please check your network connection."
	MsgUnexpectedClient   = "An unexpected error occurred."
	serverErrorTemplate   = "Server error: %d %s. Please try again later."
	requestSetupErrPrefix = "Request setup failed: "
)

// GenerationController 客户端生成请求控制器，同一时间只允许一个请求在途
type GenerationController struct {
	client clients.GenerateAPIClient
	logger logger.Logger

	mu    sync.RWMutex
	state entities.GenerationState
}

// NewGenerationController 创建控制器
func NewGenerationController(client clients.GenerateAPIClient, logger logger.Logger) *GenerationController {
	return &GenerationController{
		client: client,
		logger: logger,
		state:  entities.GenerationState{Phase: entities.PhaseIdle},
	}
}

// State 当前状态快照
func (c *GenerationController) State() entities.GenerationState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Loading 是否有请求在途
func (c *GenerationController) Loading() bool {
	return c.State().Loading()
}

// Start 进入Submitting并在后台发送请求，返回的channel只会收到一次终态。
// 文件为空时不改变状态；已有请求在途时返回ErrSubmissionInFlight。
func (c *GenerationController) Start(ctx context.Context, file *entities.CandidateFile) (<-chan entities.GenerationState, error) {
	if file == nil {
		return nil, ErrNoFileSelected
	}

	c.mu.Lock()
	if c.state.Phase == entities.PhaseSubmitting {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	c.state = entities.GenerationState{Phase: entities.PhaseSubmitting}
	c.mu.Unlock()

	done := make(chan entities.GenerationState, 1)
	go func() {
		final := c.run(ctx, file)
		done <- final
		close(done)
	}()

	return done, nil
}

// Submit 提交并等待终态
func (c *GenerationController) Submit(ctx context.Context, file *entities.CandidateFile) (entities.GenerationState, error) {
	done, err := c.Start(ctx, file)
	if err != nil {
		return c.State(), err
	}
	return <-done, nil
}

// run 执行一次往返，任何退出路径都会离开Submitting
func (c *GenerationController) run(ctx context.Context, file *entities.CandidateFile) (final entities.GenerationState) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithFields(map[string]interface{}{
				"panic":    fmt.Sprint(r),
				"filename": file.Name,
			}).Error("Image generation failed")
			final = entities.GenerationState{Phase: entities.PhaseFailed, Error: MsgUnexpectedClient}
		}
		c.mu.Lock()
		c.state = final
		c.mu.Unlock()
	}()

	imageURL, err := c.client.Generate(ctx, file)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"error":    err.Error(),
			"filename": file.Name,
		}).Error("Image generation failed")
		return entities.GenerationState{Phase: entities.PhaseFailed, Error: DescribeSubmitError(err)}
	}

	c.logger.WithFields(map[string]interface{}{
		"filename":  file.Name,
		"image_url": imageURL,
	}).Info("Image generated")
	return entities.GenerationState{Phase: entities.PhaseSucceeded, ImageURL: imageURL}
}

// DescribeStartError 将Start/Submit的本地拒绝转换为提示文案
func DescribeStartError(err error) string {
	if errors.Is(err, ErrNoFileSelected) {
		return MsgNoFileSelected
	}
	return err.Error()
}

// DescribeSubmitError 将传输层错误转换为面向用户的一句话
func DescribeSubmitError(err error) string {
	var (
		respErr  *clients.ResponseError
		noResp   *clients.NoResponseError
		setupErr *clients.RequestSetupError
	)
	switch {
	case errors.As(err, &respErr):
		if respErr.HasMessage {
			return respErr.Message
		}
		return fmt.Sprintf(serverErrorTemplate, respErr.StatusCode, respErr.StatusText)
	case errors.As(err, &noResp):
		return MsgConnectFailed
	case errors.As(err, &setupErr):
		return requestSetupErrPrefix + setupErr.Err.Error()
	default:
		return MsgUnexpectedClient
	}
}
