// Package tui 命令行客户端的终端界面：提交中显示加载动画，结束后显示图片地址或错误
package tui

import "github.com/charmbracelet/lipgloss"

// 配色
var (
	primaryColor = lipgloss.Color("#2E7D5B") // 森林绿
	successColor = lipgloss.Color("#10B981")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
)

// 界面样式
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(10)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	// ImageBoxStyle 生成成功的结果框
	ImageBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(successColor).
			Padding(1, 2)

	// ErrorBoxStyle 错误提示框
	ErrorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Foreground(errorColor).
			Padding(0, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)
