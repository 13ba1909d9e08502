// Package cmd implements the command-line interface for unpuzzle.
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/icon"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/style"
)

// CheckDependencies verifies that the configured media player is present in
// the system PATH before the TUI attempts to launch it.
func CheckDependencies() {
	binary := viper.GetString(key.Player)
	if binary == "" {
		binary = "mpv"
	}

	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependencyError(binary)
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case "darwin":
		installCmd = "brew install " + dep
	case "linux":
		installCmd = "sudo apt install " + dep // Generic, maybe check distro
	case "windows":
		installCmd = "scoop install " + dep
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
