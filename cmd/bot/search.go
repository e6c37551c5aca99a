package main

import (
	"fmt"
	"strings"

	"musicsearcher/internal/musicapi"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search songs and videos and print the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd)
		defer cancel()

		query := strings.Join(args, " ")
		songs, err := musicapi.New(cfg.API).SearchSongs(ctx, query)
		if err != nil {
			return err
		}
		if len(songs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No results found.")
			return nil
		}

		out := cmd.OutOrStdout()
		for n, s := range songs {
			if searchLimit > 0 && n == searchLimit {
				break
			}
			fmt.Fprintf(out, "%2d. %s  %s by %s", n+1, s.ID, s.Title, s.Performer())
			if d := s.FormattedDuration(); d != "" {
				fmt.Fprintf(out, " (%s)", d)
			}
			switch {
			case s.Album != "":
				fmt.Fprintf(out, " [%s]", s.Album)
			case s.Date != "":
				fmt.Fprintf(out, " [%s]", s.Date)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "print at most this many results (0 = all)")
	rootCmd.AddCommand(searchCmd)
}
