package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tryon/internal/imagedata"
	"tryon/internal/ipc"
)

func newPhotoCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Manage the saved reference photo",
	}
	cmd.AddCommand(newPhotoSetCommand(ctx))
	cmd.AddCommand(newPhotoShowCommand(ctx))
	cmd.AddCommand(newPhotoRemoveCommand(ctx))
	return cmd
}

func newPhotoSetCommand(ctx *commandContext) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "set <file>",
		Short: "Save a reference photo for future try-ons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, defaultLabel, err := readPhotoFile(args[0])
			if err != nil {
				return err
			}
			if label == "" {
				label = defaultLabel
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.PhotoSet(ipc.PhotoSetRequest{Label: label, Data: data})
				if err != nil {
					return err
				}
				if !resp.Saved {
					return errors.New("daemon did not save the photo")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reference photo saved as %q\n", label)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Label stored with the photo; defaults to the file name")
	return cmd
}

func newPhotoShowCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show or export the saved reference photo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.PhotoGet()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !resp.Found {
					fmt.Fprintln(out, "no reference photo saved")
					return nil
				}
				rows := [][2]string{
					{"label", resp.Label},
					{"saved", resp.SavedAt.Local().Format(time.RFC3339)},
					{"size", fmt.Sprintf("%d bytes (encoded)", len(resp.Data))},
				}
				fmt.Fprintln(out, renderKV(rows))

				if outputPath == "" {
					return nil
				}
				data, _, err := imagedata.Decode(resp.Data)
				if err != nil {
					return fmt.Errorf("decode photo: %w", err)
				}
				if err := os.WriteFile(outputPath, data, 0o644); err != nil {
					return fmt.Errorf("write photo: %w", err)
				}
				fmt.Fprintf(out, "exported to %s\n", outputPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Export the photo to a file")
	return cmd
}

func newPhotoRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Delete the saved reference photo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.PhotoRemove(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "reference photo removed")
				return nil
			})
		},
	}
}

// readPhotoFile loads an image file and returns it as a data URL plus a
// label derived from the file name.
func readPhotoFile(path string) (string, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read photo file: %w", err)
	}
	if len(raw) == 0 {
		return "", "", fmt.Errorf("photo file %s is empty", path)
	}
	mimeType := imagedata.DetectMIME(raw)
	return imagedata.Encode(raw, mimeType), filepath.Base(path), nil
}
