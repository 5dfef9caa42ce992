package tui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"ghibli-generator/internal/application/services"
	"ghibli-generator/internal/domain/entities"
	"ghibli-generator/internal/infrastructure/logger"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPIClient 固定结果的生成接口客户端
type fakeAPIClient struct {
	url string
	err error
}

func (f fakeAPIClient) Generate(ctx context.Context, file *entities.CandidateFile) (string, error) {
	return f.url, f.err
}

func newController(client fakeAPIClient) *services.GenerationController {
	base, _ := test.NewNullLogger()
	return services.NewGenerationController(client, logger.FromLogrus(base))
}

func sampleFile() *entities.CandidateFile {
	return &entities.CandidateFile{
		Name:      "totoro.png",
		Size:      2048,
		MediaType: "image/png",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("png")), nil
		},
	}
}

func TestGenerateModel_LoadingView(t *testing.T) {
	m := NewGenerateModel(context.Background(), newController(fakeAPIClient{}), sampleFile())

	view := m.View()
	assert.Contains(t, view, LoadingText)
	assert.Contains(t, view, "totoro.png")
	assert.Contains(t, view, "2.0 KB")
}

func TestGenerateModel_Succeeded(t *testing.T) {
	m := NewGenerateModel(context.Background(), newController(fakeAPIClient{}), sampleFile())

	updated, cmd := m.Update(generationDoneMsg(entities.GenerationState{
		Phase:    entities.PhaseSucceeded,
		ImageURL: "https://img.example/totoro.png",
	}))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	model := updated.(GenerateModel)
	assert.Equal(t, entities.PhaseSucceeded, model.State().Phase)
	assert.Contains(t, model.View(), "https://img.example/totoro.png")
	assert.NotContains(t, model.View(), LoadingText)
}

func TestGenerateModel_Failed(t *testing.T) {
	m := NewGenerateModel(context.Background(), newController(fakeAPIClient{}), sampleFile())

	updated, _ := m.Update(generationDoneMsg(entities.GenerationState{
		Phase: entities.PhaseFailed,
		Error: "Image generation failed: Billing limit reached.",
	}))

	view := updated.(GenerateModel).View()
	assert.Contains(t, view, "Billing limit reached.")
	assert.NotContains(t, view, LoadingText)
}

func TestGenerateModel_StartRejected(t *testing.T) {
	m := NewGenerateModel(context.Background(), newController(fakeAPIClient{}), nil)

	msg := m.submit()()
	updated, _ := m.Update(msg)

	model := updated.(GenerateModel)
	assert.ErrorIs(t, model.Err(), services.ErrNoFileSelected)
	assert.Contains(t, model.View(), "Please select an image file first.")
}

func TestGenerateModel_SubmitDeliversTerminalState(t *testing.T) {
	controller := newController(fakeAPIClient{err: errors.New("boom")})
	m := NewGenerateModel(context.Background(), controller, sampleFile())

	msg := m.submit()()
	done, ok := msg.(generationDoneMsg)
	require.True(t, ok)
	assert.Equal(t, entities.PhaseFailed, done.Phase)
	assert.Equal(t, "An unexpected error occurred.", done.Error)
	assert.False(t, controller.Loading())
}

func TestGenerateModel_SpinnerStopsWhenDone(t *testing.T) {
	m := NewGenerateModel(context.Background(), newController(fakeAPIClient{}), sampleFile())
	updated, _ := m.Update(generationDoneMsg(entities.GenerationState{Phase: entities.PhaseSucceeded, ImageURL: "u"}))

	_, cmd := updated.Update(spinner.TickMsg{})
	assert.Nil(t, cmd)
}

func TestGenerateModel_Quit(t *testing.T) {
	m := NewGenerateModel(context.Background(), newController(fakeAPIClient{}), sampleFile())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Empty(t, updated.View())
}

func TestRenderPlain(t *testing.T) {
	assert.Equal(t, "", RenderPlain(entities.GenerationState{Phase: entities.PhaseIdle}))
	assert.Equal(t, LoadingText, RenderPlain(entities.GenerationState{Phase: entities.PhaseSubmitting}))
	assert.Equal(t, "https://x/y.png", RenderPlain(entities.GenerationState{Phase: entities.PhaseSucceeded, ImageURL: "https://x/y.png"}))
	assert.Equal(t, "Error: nope", RenderPlain(entities.GenerationState{Phase: entities.PhaseFailed, Error: "nope"}))
}

func TestRunPlain(t *testing.T) {
	var out bytes.Buffer
	controller := newController(fakeAPIClient{url: "https://img.example/plain.png"})

	final, err := RunPlain(context.Background(), &out, controller, sampleFile())

	require.NoError(t, err)
	assert.Equal(t, entities.PhaseSucceeded, final.Phase)
	assert.Equal(t, LoadingText+"\nhttps://img.example/plain.png\n", out.String())
}

func TestRunPlain_NoFile(t *testing.T) {
	var out bytes.Buffer
	_, err := RunPlain(context.Background(), &out, newController(fakeAPIClient{}), nil)

	assert.ErrorIs(t, err, services.ErrNoFileSelected)
	assert.Empty(t, out.String())
}
