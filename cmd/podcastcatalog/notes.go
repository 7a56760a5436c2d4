package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"podcast-catalog/pkg/notes"
)

var (
	notesQuery string
	notesOrder string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List, add, edit and remove episode notes",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, optionally filtered by a query",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := notes.ParseOrder(notesOrder)
		if err != nil {
			return err
		}
		views, err := service().ListNotes(cmd.Context(), notesQuery, order)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, views)
		}
		fmt.Fprintln(out, summaryStyle.Render(fmt.Sprintf("%d notes", len(views))))
		if len(views) == 0 {
			fmt.Fprintln(out, noDataStyle.Render("No notes yet."))
			return nil
		}
		for _, v := range views {
			header := fmt.Sprintf("#%d  %s  %s", v.ID, titleStyle.Render(v.EpisodeTitle),
				metaStyle.Render(v.UpdatedAt.Local().Format("2006-01-02 15:04")))
			fmt.Fprintln(out, noteStyle.Render(header+"\n"+renderSegments(v.ContentSegments, plainStyle)))
		}
		return nil
	},
}

var notesAddCmd = &cobra.Command{
	Use:   "add <episode-id> <content...>",
	Short: "Attach a note to an episode",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		episodeID, err := parseID(args[0])
		if err != nil {
			return err
		}
		n, err := service().AddNote(cmd.Context(), episodeID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), n)
		}
		fmt.Fprintln(cmd.OutOrStdout(), summaryStyle.Render(fmt.Sprintf("Saved note #%d", n.ID)))
		return nil
	},
}

var notesEditCmd = &cobra.Command{
	Use:   "edit <note-id> <content...>",
	Short: "Replace a note's content",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		n, err := service().EditNote(cmd.Context(), id, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), n)
		}
		fmt.Fprintln(cmd.OutOrStdout(), summaryStyle.Render(fmt.Sprintf("Updated note #%d", n.ID)))
		return nil
	},
}

var notesRmCmd = &cobra.Command{
	Use:     "rm <note-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a note",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := service().DeleteNote(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), summaryStyle.Render(fmt.Sprintf("Deleted note #%d", id)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesListCmd, notesAddCmd, notesEditCmd, notesRmCmd)
	notesListCmd.Flags().StringVarP(&notesQuery, "query", "q", "", "Match note content or the episode's title, guest and company")
	notesListCmd.Flags().StringVar(&notesOrder, "order", "recent", "Order: recent, oldest, updated, episode")
}
