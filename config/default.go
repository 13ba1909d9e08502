// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/unpuzzle-app/unpuzzle/color"
	"github.com/unpuzzle-app/unpuzzle/constant"
	"github.com/unpuzzle-app/unpuzzle/key"
	"github.com/unpuzzle-app/unpuzzle/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Unpuzzle + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// Register all defaults.
	// We no longer panic on count mismatch, trusting the list below.
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.APIBaseURL, "https://api.unpuzzle.app/v1", "Base URL of the e-learning platform API")
	register(key.APIClientTimeout, 30, "HTTP client timeout for platform API requests, in seconds")
	register(key.Player, "mpv", "Media player to use (e.g., mpv, iina)")
	register(key.PlayerSeekStep, 5, "Seconds to skip forward/backward with the arrow keys")
	register(key.PlayerCompletionPercentage, 90, "Percentage required to mark a video as watched (1-100)")
	register(key.CoordinatorTimeTolerance, 0.1, "Seconds of drift between state sources before a currentTime conflict is reported")
	register(key.CoordinatorDuplicateThreshold, 100, "Milliseconds within which an identical state update is suppressed as a duplicate")
	register(key.SelectionThrottle, 50, "Milliseconds to wait after the last selection change before resolving a transcript range")
	register(key.TranscriptFetch, true, "Fetch video transcripts from the platform\nTranscripts are cached locally to not spam the API")
	register(key.CheckpointsEnable, true, "Enable instructor checkpoints (quizzes, reflections, voice memos)")
	register(key.CheckpointsLuaGraders, false, "Allow instructor-authored Lua grader scripts for quiz answers")
	register(key.AgentEnable, true, "Dispatch playback events to the AI assistant session")
	register(key.AgentQueueFailures, true, "Queue failed agent/checkpoint mutations for deferred synchronization")
	register(key.HistorySaveOnWatch, true, "Save watch progress on video playback")
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions when searching courses")
	register(key.TUIItemSpacing, 1, "Spacing between items in the TUI")
	register(key.TUISearchPromptString, "> ", "Search prompt string to use")
	register(key.TUIShowTimestamps, true, "Show segment timestamps in the transcript pane")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
