package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/example/go-kitten-tts/internal/model"
	"github.com/example/go-kitten-tts/internal/voice"
	"github.com/spf13/cobra"
)

func newVoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Voice style management commands",
	}

	cmd.AddCommand(newVoiceListCmd())
	cmd.AddCommand(newVoiceDownloadCmd())
	return cmd
}

func newVoiceListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List voices declared in the manifest",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			mgr, err := voice.NewManager(cfg.Paths.VoicesManifest)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tStatus\tLicense")
			for _, v := range mgr.ListVoices() {
				status := "available"
				if _, err := mgr.ResolvePath(v.ID); err != nil {
					status = "not downloaded"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", v.ID, status, v.License)
			}
			return w.Flush()
		},
	}

	return cmd
}

func newVoiceDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <voice-id>",
		Short: "Download a voice style blob into the voices directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			manifest, err := model.PinnedManifest(cfg.Download.Model)
			if err != nil {
				return err
			}

			baseURL := manifest.BaseURL
			if cfg.Download.BaseURL != "" {
				baseURL = cfg.Download.BaseURL
			}

			// The asset name carries the voices/ prefix, so the cache root
			// is the parent of the voices directory.
			cacheRoot := filepath.Dir(filepath.Dir(cfg.Paths.VoicesManifest))

			voiceID := args[0]
			path, err := model.Fetch(cmd.Context(), model.VoiceAssetName(voiceID), model.FetchOptions{
				BaseURL:  baseURL,
				CacheDir: cacheRoot,
				Stdout:   os.Stdout,
			})
			if err != nil {
				return fmt.Errorf("fetch voice %q: %w", voiceID, err)
			}

			// Sanity-check the blob shape before reporting success.
			if _, err := voice.ReadBlob(path); err != nil {
				return fmt.Errorf("downloaded voice %q is invalid: %w", voiceID, err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "ready: %s\n", path)
			return nil
		},
	}

	return cmd
}
