package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/go-kitten-tts/internal/model"
	"github.com/spf13/cobra"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Model acquisition and verification commands",
	}

	cmd.AddCommand(newModelDownloadCmd())
	cmd.AddCommand(newModelVerifyCmd())
	return cmd
}

func newModelDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the pinned KittenTTS model assets",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			for _, f := range manifest.Files {
				path, err := model.Fetch(cmd.Context(), f.Name, model.FetchOptions{
					BaseURL:  baseURL,
					CacheDir: cfg.Download.CacheDir,
					SHA256:   f.SHA256,
					Stdout:   os.Stdout,
				})
				if err != nil {
					return fmt.Errorf("fetch %s: %w", f.Name, err)
				}
				_, _ = fmt.Fprintf(os.Stdout, "ready: %s\n", path)
			}

			return nil
		},
	}

	return cmd
}

func newModelVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify cached model assets against the pinned manifest",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			manifest, err := model.PinnedManifest(cfg.Download.Model)
			if err != nil {
				return err
			}

			return verifyAssets(manifest, cfg.Download.CacheDir, os.Stdout)
		},
	}

	return cmd
}

// verifyAssets checks each manifest file is resident in cacheDir and, when a
// checksum is pinned, that the file content matches it.
func verifyAssets(manifest model.Manifest, cacheDir string, stdout io.Writer) error {
	var failed []string

	for _, f := range manifest.Files {
		path := model.CachePath(cacheDir, f.Name)

		sum, err := hashFile(path)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", f.Name, err))
			fmt.Fprintf(stdout, "✗ %s: %v\n", f.Name, err)
			continue
		}

		if f.SHA256 != "" && !strings.EqualFold(sum, f.SHA256) {
			failed = append(failed, fmt.Sprintf("%s: checksum mismatch", f.Name))
			fmt.Fprintf(stdout, "✗ %s: checksum mismatch (got %s, want %s)\n", f.Name, sum, f.SHA256)
			continue
		}

		fmt.Fprintf(stdout, "✓ %s: %s\n", f.Name, sum)
	}

	if len(failed) > 0 {
		return errors.New("model verify failed: " + strings.Join(failed, "; "))
	}

	fmt.Fprintln(stdout, "all model assets verified")
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
