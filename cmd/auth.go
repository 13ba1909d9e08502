// Package cmd implements the command-line interface for unpuzzle.
package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/unpuzzle-app/unpuzzle/auth"
	"github.com/unpuzzle-app/unpuzzle/color"
	"github.com/unpuzzle-app/unpuzzle/icon"
	"github.com/unpuzzle-app/unpuzzle/style"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

// authCmd serves as the parent command for platform credential management.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage platform authentication credentials",
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authLoginCmd.Flags().StringP("token", "t", "", "Provide the API token directly instead of prompting")
}

// authLoginCmd stores the platform API token in the system keyring.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a platform API token in the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		token, _ := cmd.Flags().GetString("token")

		if token == "" {
			prompt := &survey.Password{
				Message: "Platform API token:",
			}
			handleErr(survey.AskOne(prompt, &token, survey.WithValidator(survey.Required)))
		}

		handleErr(auth.SetToken(token))
		fmt.Printf("%s token stored\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}

// authStatusCmd reports whether a platform token is currently stored.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a platform API token is currently stored",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := auth.GetToken(); err != nil {
			fmt.Printf("%s not logged in\n", style.Fg(color.Red)(icon.Get(icon.Fail)))
			return
		}

		fmt.Printf("%s logged in\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	authCmd.AddCommand(authLogoutCmd)
}

// authLogoutCmd removes the stored platform token from the system keyring.
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored platform API token from the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		fmt.Printf("%s token removed\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
