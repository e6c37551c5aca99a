package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"musicsearcher/internal/logger"
	"musicsearcher/internal/musicapi"

	"github.com/spf13/cobra"
)

var (
	downloadOut   string
	downloadLimit float64
	downloadThumb bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download a track's smallest audio stream that fits the size limit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd)
		defer cancel()

		limit := cfg.SizeLimitMB
		if cmd.Flags().Changed("limit-mb") {
			limit = downloadLimit
		}

		client := musicapi.New(cfg.API)
		song, data, err := client.DownloadSong(ctx, args[0], limit)
		if musicapi.IsUndownloadable(err) {
			return errors.New("filesize too large, can't download")
		}
		if err != nil {
			return err
		}

		out := downloadOut
		if out == "" {
			out = song.ID + ".m4a"
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s by %s -> %s (%.2f MB)\n",
			song.Title, song.Performer(), out, float64(len(data))/(1<<20))

		if downloadThumb && song.Thumbnail() != "" {
			img, err := client.Fetch(ctx, song.Thumbnail())
			if err != nil {
				logger.Warn("thumbnail fetch failed", logger.String("id", song.ID), logger.Err(err))
				return nil
			}
			thumb := filepath.Join(filepath.Dir(out), song.ID+".jpg")
			if err := os.WriteFile(thumb, img, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "thumbnail -> %s\n", thumb)
		}
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOut, "out", "o", "", "output file (default <id>.m4a)")
	downloadCmd.Flags().Float64Var(&downloadLimit, "limit-mb", 0, "size limit in MB, 0 for none (default SIZE_LIMIT_MB)")
	downloadCmd.Flags().BoolVar(&downloadThumb, "thumbnail", false, "also save the track thumbnail")
	rootCmd.AddCommand(downloadCmd)
}
