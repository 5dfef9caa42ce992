package tui

import (
	"context"
	"fmt"
	"strings"

	"ghibli-generator/internal/application/services"
	"ghibli-generator/internal/domain/entities"
	"ghibli-generator/internal/utils"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// LoadingText 提交中的提示
const LoadingText = "Generating your Ghibli-style image..."

// generationDoneMsg 控制器到达终态
type generationDoneMsg entities.GenerationState

// startFailedMsg 控制器拒绝了提交
type startFailedMsg struct{ err error }

// GenerateModel 单次生成请求的Bubble Tea模型
type GenerateModel struct {
	ctx        context.Context
	controller *services.GenerationController
	file       *entities.CandidateFile

	spinner  spinner.Model
	state    entities.GenerationState
	err      error
	quitting bool
}

// NewGenerateModel 创建模型，Init时才真正提交
func NewGenerateModel(ctx context.Context, controller *services.GenerationController, file *entities.CandidateFile) GenerateModel {
	return GenerateModel{
		ctx:        ctx,
		controller: controller,
		file:       file,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(SpinnerStyle),
		),
		state: entities.GenerationState{Phase: entities.PhaseIdle},
	}
}

// Init implements tea.Model.
func (m GenerateModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.submit())
}

func (m GenerateModel) submit() tea.Cmd {
	ctx, controller, file := m.ctx, m.controller, m.file
	return func() tea.Msg {
		done, err := controller.Start(ctx, file)
		if err != nil {
			return startFailedMsg{err: err}
		}
		return generationDoneMsg(<-done)
	}
}

// Update implements tea.Model.
func (m GenerateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case generationDoneMsg:
		m.state = entities.GenerationState(msg)
		return m, tea.Quit

	case startFailedMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.state.Done() || m.err != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m GenerateModel) View() string {
	if m.quitting && !m.state.Done() {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Ghibli Image Generator"))
	b.WriteString("\n")
	if m.file != nil {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("File:"),
			ValueStyle.Render(fmt.Sprintf("%s (%s)", m.file.Name, utils.FormatFileSize(m.file.Size)))))
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(RenderError(services.DescribeStartError(m.err)))
	case m.state.Phase == entities.PhaseSucceeded:
		b.WriteString(RenderImage(m.state.ImageURL))
	case m.state.Phase == entities.PhaseFailed:
		b.WriteString(RenderError(m.state.Error))
	default:
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), LoadingText))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("Press q or Ctrl+C to quit"))
	}

	return b.String() + "\n"
}

// State 模型持有的最终状态
func (m GenerateModel) State() entities.GenerationState {
	return m.state
}

// Err 提交被拒绝时的错误
func (m GenerateModel) Err() error {
	return m.err
}

// RenderImage 渲染生成结果
func RenderImage(imageURL string) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Your Ghibli-style image"))
	b.WriteString("\n")
	b.WriteString(ValueStyle.Render(imageURL))
	return ImageBoxStyle.Render(b.String())
}

// RenderError 渲染错误提示
func RenderError(message string) string {
	return ErrorBoxStyle.Render(message)
}

// keyMap 按键绑定
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunGenerateTUI 运行界面直到请求结束，返回终态
func RunGenerateTUI(ctx context.Context, controller *services.GenerationController, file *entities.CandidateFile) (entities.GenerationState, error) {
	p := tea.NewProgram(NewGenerateModel(ctx, controller, file), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return controller.State(), err
	}
	model, ok := final.(GenerateModel)
	if !ok {
		return controller.State(), fmt.Errorf("unexpected model type %T", final)
	}
	if model.Err() != nil {
		return model.State(), model.Err()
	}
	return model.State(), nil
}
