// Package cmd implements the command-line interface for unpuzzle.
package cmd

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/unpuzzle-app/unpuzzle/course"
	"github.com/unpuzzle-app/unpuzzle/filesystem"
	"github.com/unpuzzle-app/unpuzzle/inline"
	"github.com/unpuzzle-app/unpuzzle/query"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().StringP("query", "q", "", "The search query to execute for course discovery")
	inlineCmd.Flags().StringP("course", "C", "", "Criteria for selecting a specific course from the search results")
	inlineCmd.Flags().StringP("videos", "V", "", "Criteria for selecting specific lessons from the chosen course")
	inlineCmd.Flags().BoolP("json", "j", false, "Format the command output as a JSON object")
	inlineCmd.Flags().BoolP("include-transcripts", "t", false, "Include lesson transcripts in the structured output")
	inlineCmd.Flags().BoolP("include-checkpoints", "k", false, "Include instructor checkpoints in the structured output")
	inlineCmd.Flags().BoolP("include-progress", "P", false, "Include locally saved watch progress in the structured output")

	inlineCmd.Flags().StringP("output", "o", "", "Specify a file path to write the command output")

	lo.Must0(inlineCmd.MarkFlagRequired("query"))

	inlineCmd.RegisterFlagCompletionFunc("query", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	})
}

// inlineCmd executes the application in non-interactive, scriptable inline mode.
var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "Execute the application in non-interactive, scriptable inline mode",
	Long: `Initialize the application for automated execution and data extraction using inline mode.

Course selectors:
  first - first course in the list
  last - last course in the list
  exact - course with the exact title (pass the title as the query)
  [number] - select course by index (starting from 0)

Video selectors:
  first - first lesson in the list
  last - last lesson in the list
  all - all lessons in the list
  [number] - select lesson by index (starting from 0)
  [from]-[to] - select lessons by range
  @[substring]@ - select lessons by title substring

When using the json flag the course selector may be omitted. That way, every found course is included`,

	Example: "https://github.com/unpuzzle-app/unpuzzle/wiki/Inline-mode",
	PreRun: func(cmd *cobra.Command, args []string) {
		jsonOut, _ := cmd.Flags().GetBool("json")

		if !jsonOut {
			lo.Must0(cmd.MarkFlagRequired("course"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		searchQuery := lo.Must(cmd.Flags().GetString("query"))

		output := lo.Must(cmd.Flags().GetString("output"))
		var (
			writer io.Writer
			err    error
		)
		if output != "" {
			writer, err = filesystem.API().Create(output)
			handleErr(err)
		} else {
			writer = os.Stdout
		}

		courseFlag := lo.Must(cmd.Flags().GetString("course"))
		picker := mo.None[inline.CoursePicker]()
		if courseFlag != "" {
			// "first" and "last" are keywords, a number selects by index,
			// anything else matches the exact course title.
			kind, value := "exact", courseFlag
			switch {
			case courseFlag == "first" || courseFlag == "last":
				kind = courseFlag
			case isUint(courseFlag):
				kind, value = "index", courseFlag
			}

			fn, err := inline.ParseCoursePicker(kind, value)
			handleErr(err)
			picker = mo.Some(fn)
		}

		videosFlag := lo.Must(cmd.Flags().GetString("videos"))
		filter := mo.None[inline.VideosFilter]()
		if videosFlag != "" {
			fn, err := inline.ParseVideosFilter(videosFlag)
			handleErr(err)
			filter = mo.Some(fn)
		}

		options := &inline.Options{
			Json:               lo.Must(cmd.Flags().GetBool("json")),
			Query:              searchQuery,
			Picker:             picker,
			Filter:             filter,
			Out:                writer,
			IncludeTranscripts: lo.Must(cmd.Flags().GetBool("include-transcripts")),
			IncludeCheckpoints: lo.Must(cmd.Flags().GetBool("include-checkpoints")),
			IncludeProgress:    lo.Must(cmd.Flags().GetBool("include-progress")),
		}

		handleErr(inline.Run(options))
	},
}

func isUint(s string) bool {
	_, err := strconv.ParseUint(s, 10, 16)
	return err == nil
}

func init() {
	inlineCmd.AddCommand(inlineCourseCmd)
}

// inlineCourseCmd manages catalog record operations in inline mode.
var inlineCourseCmd = &cobra.Command{
	Use:   "course",
	Short: "Manage catalog course operations in inline mode",
}

func init() {
	inlineCourseCmd.AddCommand(inlineCourseSearchCmd)

	inlineCourseSearchCmd.Flags().StringP("name", "n", "", "The course title to search the catalog for")
	inlineCourseSearchCmd.Flags().StringP("id", "i", "", "The specific course ID to retrieve")

	inlineCourseSearchCmd.MarkFlagsMutuallyExclusive("name", "id")
}

// inlineCourseSearchCmd performs a catalog search by course title or ID.
var inlineCourseSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Perform a catalog search by course title and return the results",
	PreRun: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("id") {
			handleErr(errors.New("name or id flag is required"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		name := lo.Must(cmd.Flags().GetString("name"))
		id := lo.Must(cmd.Flags().GetString("id"))

		var toEncode any

		if name != "" {
			courses, err := course.Search(name)
			handleErr(err)
			toEncode = courses
		} else {
			c, err := course.GetByID(id)
			handleErr(err)
			toEncode = c
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(toEncode))
	},
}

func init() {
	inlineCourseCmd.AddCommand(inlineCourseGetCmd)

	inlineCourseGetCmd.Flags().StringP("name", "n", "", "The local title to resolve to a catalog course")
	lo.Must0(inlineCourseGetCmd.MarkFlagRequired("name"))
}

// inlineCourseGetCmd resolves local titles to catalog courses.
var inlineCourseGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Retrieve the catalog course currently associated with a specific local title",
	Run: func(cmd *cobra.Command, args []string) {
		name := lo.Must(cmd.Flags().GetString("name"))

		c, err := course.FindClosest(name)
		handleErr(err)

		handleErr(json.NewEncoder(os.Stdout).Encode(c))
	},
}

func init() {
	inlineCourseCmd.AddCommand(inlineCourseBindCmd)

	inlineCourseBindCmd.Flags().StringP("name", "n", "", "The local title to establish a mapping for")
	inlineCourseBindCmd.Flags().StringP("id", "i", "", "The catalog course ID to bind to the specified title")

	lo.Must0(inlineCourseBindCmd.MarkFlagRequired("name"))
	lo.Must0(inlineCourseBindCmd.MarkFlagRequired("id"))

	inlineCourseBindCmd.MarkFlagsRequiredTogether("name", "id")
}

// inlineCourseBindCmd statically binds local titles to catalog course IDs.
var inlineCourseBindCmd = &cobra.Command{
	Use:   "set",
	Short: "Statically bind a local title to a specific catalog course ID",
	Run: func(cmd *cobra.Command, args []string) {
		c, err := course.GetByID(lo.Must(cmd.Flags().GetString("id")))
		handleErr(err)

		name := lo.Must(cmd.Flags().GetString("name"))

		handleErr(course.SetRelation(name, c))
	},
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)

	inlineSchemaCmd.Flags().BoolP("courses", "c", false, "Generate the JSON Schema for catalog search result objects")
}

// inlineSchemaCmd generates JSON schemas for structured inline mode outputs.
var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schemas for structured inline mode outputs",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "course", "video", "progress", "output":
				return filepath.Base(t.PkgPath()) + "." + name
			}

			return name
		}

		var schema *jsonschema.Schema

		switch {
		case lo.Must(cmd.Flags().GetBool("courses")):
			schema = reflector.Reflect([]*course.Course{})
		default:
			schema = reflector.Reflect(&inline.Output{})
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
