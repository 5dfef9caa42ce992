// Package main 吉卜力风格图片生成的命令行客户端
//
// 用法:
//
//	ghibli-generate [--server URL] [--plain] <image>
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"ghibli-generator/internal/application/services"
	"ghibli-generator/internal/domain/entities"
	"ghibli-generator/internal/infrastructure/clients"
	"ghibli-generator/internal/infrastructure/config"
	"ghibli-generator/internal/infrastructure/logger"
	"ghibli-generator/internal/presentation/tui"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:           "ghibli-generate",
		Usage:          "Turn an image into a Studio Ghibli style rendering",
		Version:        version,
		ArgsUsage:      "<image>",
		ExitErrHandler: exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Generator server base URL (defaults to client.server_url)",
				EnvVars: []string{"GHIBLI_SERVER_URL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Print plain text instead of the interactive view",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Diagnostic log level written to stderr",
				Value: "error",
			},
		},
		Before: func(c *cli.Context) error {
			// .env 文件可选
			_ = godotenv.Load()
			return nil
		},
		Action: generateAction,
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func generateAction(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to load config: %v", err), 1)
	}

	log := logger.NewLogger(&config.LoggingConfig{
		Level:  c.String("log-level"),
		Format: "text",
		Output: "stderr",
	})

	serverURL := c.String("server")
	if serverURL == "" {
		serverURL = cfg.Client.ServerURL
	}
	plain := c.Bool("plain")

	// 本地校验，只有被接受的文件才会提交
	files, rejections := collectCandidates(c.Args().Slice())
	intake := services.NewFileIntakeService(services.DefaultIntakePolicy(), log)
	outcome := intake.Classify(files, rejections)
	if !outcome.Accepted {
		return cli.Exit(renderFailure(outcome.Message(), plain), 1)
	}

	// 上游不设超时，客户端同样不设
	apiClient := clients.NewGenerateAPIClient(serverURL, &http.Client{})
	controller := services.NewGenerationController(apiClient, log)

	var final entities.GenerationState
	if plain {
		final, err = tui.RunPlain(c.Context, c.App.Writer, controller, outcome.File)
	} else {
		final, err = tui.RunGenerateTUI(c.Context, controller, outcome.File)
	}
	if err != nil {
		return cli.Exit(renderFailure(services.DescribeStartError(err), plain), 1)
	}

	if final.Phase != entities.PhaseSucceeded {
		// 失败信息已经显示过
		return cli.Exit("", 1)
	}
	return nil
}

// renderFailure 渲染失败提示，已带有"Error: "前缀的文案不再重复添加
func renderFailure(message string, plain bool) string {
	if plain {
		if strings.HasPrefix(message, errorPrefix) {
			return message
		}
		return errorPrefix + message
	}
	return tui.RenderError(message)
}

const errorPrefix = "Error: "

// exitErrHandler 保留cli.Exit的退出码
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
