// Package cmd implements the command-line interface for unpuzzle.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/unpuzzle-app/unpuzzle/checkpoint"
	"github.com/unpuzzle-app/unpuzzle/color"
	"github.com/unpuzzle-app/unpuzzle/filesystem"
	"github.com/unpuzzle-app/unpuzzle/grader"
	"github.com/unpuzzle-app/unpuzzle/icon"
	"github.com/unpuzzle-app/unpuzzle/style"
)

func init() {
	rootCmd.AddCommand(checkpointsCmd)
}

// checkpointsCmd serves as the parent command for instructor checkpoint management.
var checkpointsCmd = &cobra.Command{
	Use:   "checkpoints",
	Short: "Manage instructor checkpoints attached to lessons",
}

func init() {
	checkpointsCmd.AddCommand(checkpointsListCmd)

	checkpointsListCmd.Flags().StringP("video", "V", "", "The lesson ID to list checkpoints for")
	checkpointsListCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON array")
	lo.Must0(checkpointsListCmd.MarkFlagRequired("video"))
}

// checkpointsListCmd lists the checkpoints anchored to a lesson.
var checkpointsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the checkpoints anchored to a specific lesson",
	Run: func(cmd *cobra.Command, args []string) {
		videoID := lo.Must(cmd.Flags().GetString("video"))

		checkpoints, err := checkpoint.GetVideoCheckpoints(videoID)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(os.Stdout).Encode(checkpoints))
			return
		}

		if len(checkpoints) == 0 {
			fmt.Println(style.Faint("no checkpoints"))
			return
		}

		for _, cp := range checkpoints {
			fmt.Printf(
				"%s %s at %.1fs (%s)\n",
				style.Fg(color.Purple)(cp.ID),
				style.Bold(string(cp.Kind)),
				cp.Time,
				lo.Ternary(cp.Kind == checkpoint.Quiz, cp.Question, cp.Prompt),
			)
		}
	},
}

func init() {
	checkpointsCmd.AddCommand(checkpointsCreateCmd)

	checkpointsCreateCmd.Flags().StringP("video", "V", "", "The lesson ID to anchor the checkpoint to")
	checkpointsCreateCmd.Flags().Float64P("time", "t", 0, "The timestamp in seconds to anchor the checkpoint at")
	checkpointsCreateCmd.Flags().StringP("kind", "k", string(checkpoint.Quiz), "The checkpoint kind (quiz, reflection, voice-memo)")
	checkpointsCreateCmd.Flags().StringP("question", "q", "", "The quiz question text")
	checkpointsCreateCmd.Flags().StringSliceP("option", "o", []string{}, "A quiz answer option (repeatable)")
	checkpointsCreateCmd.Flags().StringP("answer", "a", "", "The correct quiz answer")
	checkpointsCreateCmd.Flags().StringP("grader", "g", "", "Path to a Lua grader script overriding the exact-match check")
	checkpointsCreateCmd.Flags().StringP("prompt", "p", "", "The reflection or voice-memo prompt text")

	lo.Must0(checkpointsCreateCmd.MarkFlagRequired("video"))
	lo.Must0(checkpointsCreateCmd.MarkFlagRequired("time"))
}

// checkpointsCreateCmd anchors a new checkpoint to a lesson.
var checkpointsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Anchor a new checkpoint to a lesson timestamp",
	Run: func(cmd *cobra.Command, args []string) {
		cp := checkpoint.Checkpoint{
			VideoID:       lo.Must(cmd.Flags().GetString("video")),
			Time:          lo.Must(cmd.Flags().GetFloat64("time")),
			Kind:          checkpoint.Kind(lo.Must(cmd.Flags().GetString("kind"))),
			Question:      lo.Must(cmd.Flags().GetString("question")),
			Options:       lo.Must(cmd.Flags().GetStringSlice("option")),
			CorrectAnswer: lo.Must(cmd.Flags().GetString("answer")),
			Prompt:        lo.Must(cmd.Flags().GetString("prompt")),
		}

		if graderPath := lo.Must(cmd.Flags().GetString("grader")); graderPath != "" {
			source, err := filesystem.API().ReadFile(graderPath)
			handleErr(err)

			// Reject scripts the sandbox would refuse at answer time.
			g, err := grader.New(string(source))
			handleErr(err)
			g.Close()

			cp.Grader = string(source)
		}

		result, err := checkpoint.CreateCheckpoint(cp)
		handleErr(err)

		if !result.Success {
			handleErr(fmt.Errorf("checkpoint rejected: %s", result.Error))
		}

		fmt.Printf("%s checkpoint created\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	checkpointsCmd.AddCommand(checkpointsDeleteCmd)

	checkpointsDeleteCmd.Flags().StringP("id", "i", "", "The checkpoint ID to delete")
	lo.Must0(checkpointsDeleteCmd.MarkFlagRequired("id"))
}

// checkpointsDeleteCmd removes a checkpoint from a lesson.
var checkpointsDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove a checkpoint from a lesson",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		result, err := checkpoint.DeleteCheckpoint(lo.Must(cmd.Flags().GetString("id")))
		handleErr(err)

		if !result.Success {
			handleErr(fmt.Errorf("deletion rejected: %s", result.Error))
		}

		fmt.Printf("%s checkpoint deleted\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
