package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/thali/database/seeders"
	"github.com/shashiranjanraj/thali/internal/kernel"
)

var (
	publishTo      string
	publishWorkers int
)

// thali images:publish
var imagesPublishCmd = &cobra.Command{
	Use:   "images:publish",
	Short: "Copy menu images from the local disk to another disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		disks, err := kernel.Disks(cmd.Context())
		if err != nil {
			return err
		}
		paths := make([]string, len(seeders.Menu))
		for i, item := range seeders.Menu {
			paths[i] = item.ImagePath()
		}

		results, err := disks.Publish(cmd.Context(), "local", publishTo, paths, publishWorkers)
		out := cmd.OutOrStdout()
		for _, res := range results {
			state := "exists"
			if res.Copied {
				state = "copied"
			}
			fmt.Fprintf(out, "  %-20s %s\n", res.Path, state)
		}
		return err
	},
}

func init() {
	imagesPublishCmd.Flags().StringVar(&publishTo, "to", "s3", "destination disk")
	imagesPublishCmd.Flags().IntVarP(&publishWorkers, "workers", "w", 4, "concurrent uploads")
}
