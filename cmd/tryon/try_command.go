package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tryon/internal/ipc"
)

func newTryCommand(ctx *commandContext) *cobra.Command {
	var (
		photoPath   string
		description string
		fromPage    bool
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "try <garment-url>",
		Short: "Start a try-on generation for a garment image",
		Long: `Start a try-on generation. The argument is a garment image URL, or a
product page URL when --page is set; with --page the daemon extracts the
garment photo and description from the page first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.StartRequest{Description: description}

			if photoPath != "" {
				data, _, err := readPhotoFile(photoPath)
				if err != nil {
					return err
				}
				req.ModelPhoto = data
			}

			if fromPage {
				pageURL := args[0]
				err := ctx.withClient(func(client *ipc.Client) error {
					extracted, err := client.Extract(pageURL)
					if err != nil {
						return err
					}
					if len(extracted.Images) == 0 {
						return errors.New("no usable garment images on page")
					}
					req.GarmentURL = extracted.Images[0]
					req.SourcePage = pageURL
					if req.Description == "" {
						req.Description = extracted.Description
					}
					return nil
				})
				if err != nil {
					return err
				}
			} else {
				req.GarmentURL = args[0]
			}

			var started ipc.JobSnapshot
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Start(req)
				if err != nil {
					return err
				}
				started = resp.Job
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "job started (token %s)\n", started.Token)
			if !watch {
				fmt.Fprintln(out, "run `tryon status --watch` to follow progress")
				return nil
			}
			return watchJob(ctx, out)
		},
	}

	cmd.Flags().StringVar(&photoPath, "photo", "", "Model photo file; defaults to the saved reference photo")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Garment description sent to the generation service")
	cmd.Flags().BoolVar(&fromPage, "page", false, "Treat the argument as a product page and extract the garment from it")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Poll until the job reaches a terminal state")
	return cmd
}
