package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "clipforge <input>",
		Short:        "Render short-form vertical clips from a video and its transcript",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().String("transcript", "", "Transcript JSON file (required)")
	root.Flags().String("out", "out", "Output directory")
	root.Flags().Int("clips", 5, "Maximum number of clips")
	root.Flags().Int("length", 60, "Target clip length in seconds")
	root.Flags().String("format", "tiktok", "Output format preset")
	root.Flags().Bool("suggestions", false, "Also generate publishing suggestions")
	_ = root.MarkFlagRequired("transcript")

	// Hidden tuning flags (internal)
	root.Flags().Int("workers", 0, "Parallel render workers (0 = auto)")
	root.Flags().Bool("verbose", false, "Debug logging")
	_ = root.Flags().MarkHidden("workers")
	_ = root.Flags().MarkHidden("verbose")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
