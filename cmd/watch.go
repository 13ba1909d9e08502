// Package cmd implements the command-line interface for unpuzzle.
package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/unpuzzle-app/unpuzzle/course"
	"github.com/unpuzzle-app/unpuzzle/icon"
	"github.com/unpuzzle-app/unpuzzle/internal/session"
	"github.com/unpuzzle-app/unpuzzle/log"
	"github.com/unpuzzle-app/unpuzzle/query"
	"github.com/unpuzzle-app/unpuzzle/style"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().IntP("video", "V", 0, "The lesson index to play (starting from 0)")

	watchCmd.RegisterFlagCompletionFunc("video", cobra.NoFileCompletions)
	watchCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// watchCmd plays a lesson directly, bypassing the interactive interface.
var watchCmd = &cobra.Command{
	Use:   "watch [course title]",
	Short: "Play a lesson directly without entering the interactive interface",
	Long: `Resolve the given title to a catalog course and launch the media player
for one of its lessons. Progress is tracked the same way as in the
interactive interface; checkpoints are logged but not prompted.`,
	Args:    cobra.MinimumNArgs(1),
	Example: `  unpuzzle watch "Intro to Go" --video 2`,
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		title := args[0]
		index := lo.Must(cmd.Flags().GetInt("video"))

		c, err := course.FindClosest(title)
		handleErr(err)

		full, err := course.GetByID(c.ID)
		handleErr(err)

		if index < 0 || index >= len(full.Videos) {
			handleErr(fmt.Errorf("course %s has no lesson %d", full.Title, index))
		}
		video := full.Videos[index]

		s, err := session.Start(video)
		handleErr(err)
		defer s.Close()

		fmt.Printf("%s watching %s\n", style.Fg(style.Green)(icon.Get(icon.Play)), style.Bold(video.String()))

		// Without a UI there is nobody to answer checkpoints, so log and
		// resume playback immediately.
		go func() {
			for cp := range s.Gates() {
				log.Infof("skipping %s checkpoint at %.1fs", cp.Kind, cp.Time)
				if err := s.Clock.Play(); err != nil {
					log.Warn(err)
				}
			}
		}()

		<-s.Player.Wait()
	},
}
