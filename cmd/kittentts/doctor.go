package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/example/go-kitten-tts/internal/doctor"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run local runtime and model checks",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			result := doctor.Run(doctor.Config{
				ORTLibraryPath: cfg.Runtime.ORTLibraryPath,
				ORTVersion:     cfg.Runtime.ORTVersion,
				ModelPath:      cfg.Paths.ModelPath,
				VocabPath:      cfg.Paths.VocabPath,
				VoicesManifest: cfg.Paths.VoicesManifest,
			}, os.Stdout)

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(os.Stdout, "doctor checks passed")

			return nil
		},
	}

	return cmd
}
