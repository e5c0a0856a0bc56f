package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/disctools/go-wiidisc/internal/device"
	"github.com/disctools/go-wiidisc/internal/services"
)

var listCmd = &cobra.Command{
	Use:   "list [image-path]",
	Short: "List the partitions on a disc image",
	Long: `List the volume groups and partitions of a Wii disc image.

Examples:
  # List all partitions
  wiidisc list game.iso`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(imagePath string) error {
	dev, err := device.OpenFileDevice(imagePath)
	if err != nil {
		return err
	}
	defer dev.Close()

	image, err := services.NewDiscImage(dev)
	if err != nil {
		return err
	}

	header := image.Header()
	fmt.Printf("%s  %s\n", header.GameID(), header.Title())

	table := image.PartitionTable()
	fmt.Printf("%d partition(s):\n", table.PartitionCount())
	for i, entry := range table.Partitions() {
		size, err := image.PartitionSize(i)
		if err != nil {
			return err
		}
		fmt.Printf("  %2d  %-8s  offset %#012x  size %#012x\n", i, entry.Type, entry.Offset, size)
	}

	return nil
}
