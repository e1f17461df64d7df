package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tryon/internal/imagedata"
	"tryon/internal/ipc"
	"tryon/internal/job"
)

func newResultCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "result",
		Short: "Save the generated image of a completed job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result *ipc.ResultResponse
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Result()
				if err != nil {
					return err
				}
				result = resp
				return nil
			})
			if err != nil {
				return err
			}

			switch job.Status(result.Status) {
			case job.StatusComplete:
			case job.StatusError:
				return fmt.Errorf("job failed: %s", result.Error)
			default:
				return fmt.Errorf("no result available; job is %s", result.Status)
			}

			data, mimeType, err := imagedata.Decode(result.Result)
			if err != nil {
				return fmt.Errorf("decode result image: %w", err)
			}

			path := outputPath
			if path == "" {
				path = "tryon-result" + imagedata.ExtensionFor(mimeType)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write result image: %w", err)
			}
			absolute, err := filepath.Abs(path)
			if err != nil {
				absolute = path
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d bytes to %s\n", len(data), absolute)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path; extension is derived from the image type by default")
	return cmd
}
