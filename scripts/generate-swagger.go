package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

// 生成后的文档必须包含的接口
var requiredPaths = []string{"/api/generate", "/health"}

// SwaggerGenerator Swagger文档生成器
type SwaggerGenerator struct {
	ProjectRoot string
	DocsDir     string
	MainFile    string
}

// NewSwaggerGenerator 以当前目录为项目根目录
func NewSwaggerGenerator() (*SwaggerGenerator, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("获取项目根目录失败: %w", err)
	}
	return &SwaggerGenerator{
		ProjectRoot: root,
		DocsDir:     filepath.Join(root, "docs"),
		MainFile:    filepath.Join(root, "cmd", "server", "main.go"),
	}, nil
}

func (sg *SwaggerGenerator) info(text string)    { fmt.Println(infoStyle.Render("[信息] " + text)) }
func (sg *SwaggerGenerator) success(text string) { fmt.Println(successStyle.Render("[成功] " + text)) }
func (sg *SwaggerGenerator) warning(text string) { fmt.Println(warningStyle.Render("[警告] " + text)) }

// checkSwag 检查swag工具，缺失时安装
func (sg *SwaggerGenerator) checkSwag() error {
	if err := exec.Command("swag", "--version").Run(); err == nil {
		return nil
	}
	sg.warning("swag 工具未安装，正在安装...")
	if err := exec.Command("go", "install", "github.com/swaggo/swag/cmd/swag@v1.16.4").Run(); err != nil {
		return fmt.Errorf("swag 工具安装失败: %w", err)
	}
	sg.success("swag 工具安装成功")
	return nil
}

// clean 删除旧文档
func (sg *SwaggerGenerator) clean() {
	for _, file := range []string{"docs.go", "swagger.json", "swagger.yaml"} {
		path := filepath.Join(sg.DocsDir, file)
		if err := os.Remove(path); err == nil {
			sg.success("已删除旧的 " + file)
		}
	}
}

// generate 运行 swag init
func (sg *SwaggerGenerator) generate() error {
	if _, err := os.Stat(sg.MainFile); err != nil {
		return fmt.Errorf("主文件不存在: %s", sg.MainFile)
	}
	if err := os.MkdirAll(sg.DocsDir, 0o755); err != nil {
		return fmt.Errorf("创建文档目录失败: %w", err)
	}

	cmd := exec.Command("swag", "init", "-g", "cmd/server/main.go", "-o", "docs", "--parseInternal")
	cmd.Dir = sg.ProjectRoot
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("Swagger 文档生成失败: %w", err)
	}
	return nil
}

// verify 检查docs.go存在且包含全部接口
func (sg *SwaggerGenerator) verify() error {
	content, err := os.ReadFile(filepath.Join(sg.DocsDir, "docs.go"))
	if err != nil {
		return fmt.Errorf("docs.go 不存在: %w", err)
	}

	var missing []string
	for _, path := range requiredPaths {
		if !strings.Contains(string(content), `"`+path+`"`) {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("文档缺少接口: %s", strings.Join(missing, ", "))
	}

	sg.success(fmt.Sprintf("文档包含 %d 个接口", len(requiredPaths)))
	return nil
}

func main() {
	app := &cli.App{
		Name:  "generate-swagger",
		Usage: "Regenerate the Swagger docs package",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "clean", Aliases: []string{"c"}, Usage: "仅清理旧文档"},
			&cli.BoolFlag{Name: "verify", Aliases: []string{"v"}, Usage: "仅验证现有文档"},
		},
		Action: func(c *cli.Context) error {
			sg, err := NewSwaggerGenerator()
			if err != nil {
				return err
			}

			switch {
			case c.Bool("clean"):
				sg.clean()
				return nil
			case c.Bool("verify"):
				return sg.verify()
			}

			sg.info("项目根目录: " + sg.ProjectRoot)
			if err := sg.checkSwag(); err != nil {
				return err
			}
			sg.clean()
			if err := sg.generate(); err != nil {
				return err
			}
			if err := sg.verify(); err != nil {
				return err
			}
			sg.info("Swagger UI: http://localhost:8080/swagger/index.html")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[错误] "+err.Error()))
		os.Exit(1)
	}
}
