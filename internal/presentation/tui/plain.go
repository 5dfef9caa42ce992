package tui

import (
	"context"
	"fmt"
	"io"

	"ghibli-generator/internal/application/services"
	"ghibli-generator/internal/domain/entities"
)

// RenderPlain 无样式的状态文本，供管道或非终端输出使用
func RenderPlain(state entities.GenerationState) string {
	switch state.Phase {
	case entities.PhaseSubmitting:
		return LoadingText
	case entities.PhaseSucceeded:
		return state.ImageURL
	case entities.PhaseFailed:
		return "Error: " + state.Error
	default:
		return ""
	}
}

// RunPlain 提交并把进度和结果逐行写入w
func RunPlain(ctx context.Context, w io.Writer, controller *services.GenerationController, file *entities.CandidateFile) (entities.GenerationState, error) {
	done, err := controller.Start(ctx, file)
	if err != nil {
		return controller.State(), err
	}
	fmt.Fprintln(w, LoadingText)

	final := <-done
	fmt.Fprintln(w, RenderPlain(final))
	return final, nil
}
