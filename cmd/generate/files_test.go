package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"ghibli-generator/internal/application/services"
	"ghibli-generator/internal/domain/entities"
	"ghibli-generator/internal/infrastructure/logger"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestCollectCandidates(t *testing.T) {
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "totoro.png")
	require.NoError(t, os.WriteFile(pngPath, pngHeader, 0o644))

	t.Run("可读文件成为候选文件", func(t *testing.T) {
		files, rejections := collectCandidates([]string{pngPath})

		require.Len(t, files, 1)
		assert.Empty(t, rejections)
		assert.Equal(t, "totoro.png", files[0].Name)
		assert.Equal(t, int64(len(pngHeader)), files[0].Size)
		assert.Equal(t, "image/png", files[0].MediaType)

		rc, err := files[0].Reader()
		require.NoError(t, err)
		defer rc.Close()
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, pngHeader, content)
	})

	t.Run("不存在的文件成为other拒绝项", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.png")
		files, rejections := collectCandidates([]string{missing})

		assert.Empty(t, files)
		require.Len(t, rejections, 1)
		assert.Equal(t, entities.RejectionOther, rejections[0].Reason())

		intake := services.NewFileIntakeService(services.DefaultIntakePolicy(), quietLogger())
		outcome := intake.Classify(files, rejections)
		assert.Equal(t, "Error: cannot read "+missing, outcome.Message())
	})

	t.Run("目录被拒绝", func(t *testing.T) {
		files, rejections := collectCandidates([]string{dir})

		assert.Empty(t, files)
		require.Len(t, rejections, 1)
		assert.Equal(t, pickerCodeNotRegular, rejections[0].Code)

		intake := services.NewFileIntakeService(services.DefaultIntakePolicy(), quietLogger())
		outcome := intake.Classify(files, rejections)
		assert.Equal(t, entities.RejectionOther, outcome.Reason)
		assert.Equal(t, "Error: "+dir+" is not a regular file", outcome.Message())
	})

	t.Run("没有图片扩展名的缺失路径仍报无法读取", func(t *testing.T) {
		intake := services.NewFileIntakeService(services.DefaultIntakePolicy(), quietLogger())
		for _, name := range []string{"photo", "missing.gif"} {
			missing := filepath.Join(dir, name)
			outcome := intake.Classify(collectCandidates([]string{missing}))

			assert.Equal(t, entities.RejectionOther, outcome.Reason, name)
			assert.Equal(t, "Error: cannot read "+missing, outcome.Message(), name)
		}
	})

	t.Run("两个参数是too-many-files", func(t *testing.T) {
		files, rejections := collectCandidates([]string{pngPath, pngPath})

		intake := services.NewFileIntakeService(services.DefaultIntakePolicy(), quietLogger())
		outcome := intake.Classify(files, rejections)
		assert.Equal(t, entities.RejectionTooManyFiles, outcome.Reason)
	})
}

func quietLogger() logger.Logger {
	base, _ := test.NewNullLogger()
	return logger.FromLogrus(base)
}
