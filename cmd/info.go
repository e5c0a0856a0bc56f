package cmd

import (
	"encoding/binary"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/disctools/go-wiidisc/internal/device"
	"github.com/disctools/go-wiidisc/internal/interfaces"
	"github.com/disctools/go-wiidisc/internal/services"
	"github.com/disctools/go-wiidisc/internal/types"
)

var (
	infoPartition int
	infoProbe     bool
)

var infoCmd = &cobra.Command{
	Use:   "info [image-path]",
	Short: "Show disc and partition metadata",
	Long: `Show the disc header and, per partition, the ticket and title metadata
fields along with the encryption key the partition requires.

With --probe, a small read is attempted on each partition to force key
derivation and report the resulting decryption state. Without keys the
plaintext metadata is still shown; only payload access is affected.

Examples:
  # Disc and partition metadata
  wiidisc info game.iso

  # Also verify decryption with the configured keys
  wiidisc info game.iso --probe`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo(args[0])
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().IntVarP(&infoPartition, "partition", "p", -1, "limit output to one partition index")
	infoCmd.Flags().BoolVar(&infoProbe, "probe", false, "attempt decryption and report its state")
}

func runInfo(imagePath string) error {
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
	fmt.Printf("Game ID:      %s\n", header.GameID())
	fmt.Printf("Title:        %s\n", header.Title())
	fmt.Printf("Disc:         number %d, revision %d\n", header.DiscNumber(), header.DiscVersion())
	if header.Unencrypted() {
		fmt.Printf("Encryption:   disabled by disc header (no-crypto dump)\n")
	}

	var store interfaces.KeyStore
	if infoProbe {
		store, err = openKeyStore()
		if err != nil {
			fmt.Printf("Keys:         unavailable (%v)\n", err)
			store = nil
		}
	}

	for i, entry := range image.PartitionTable().Partitions() {
		if infoPartition >= 0 && i != infoPartition {
			continue
		}
		if err := printPartitionInfo(image, i, entry, store, infoProbe); err != nil {
			return err
		}
	}

	return nil
}

func printPartitionInfo(image *services.DiscImage, index int, entry types.PartitionTableEntry, store interfaces.KeyStore, probe bool) error {
	fmt.Printf("\nPartition %d (%s) at %#x\n", index, entry.Type, entry.Offset)

	stream, err := image.OpenPartition(index, store)
	if err != nil {
		// A broken partition header should not hide the remaining
		// partitions.
		fmt.Printf("  unreadable: %v\n", err)
		return nil
	}

	ticket := stream.Ticket()
	fmt.Printf("  Title ID:        %016x\n", binary.BigEndian.Uint64(ticket.TitleID[:]))
	fmt.Printf("  Ticket issuer:   %s\n", ticket.Issuer)
	fmt.Printf("  Common key idx:  %d\n", ticket.CommonKeyIndex)
	fmt.Printf("  Encryption key:  %s (real: %s)\n", stream.EncKey(), stream.EncKeyReal())
	fmt.Printf("  Data area:       offset %#x, size %#x\n", stream.DataOffset(), stream.DataSize())
	if stream.UsedSizeFallback() {
		fmt.Printf("  Note:            header declared zero data size; using partition size\n")
	}

	if tmd := stream.TMDHeader(); tmd.TitleID != 0 {
		fmt.Printf("  TMD title ID:    %016x (v%d, %d contents)\n",
			tmd.TitleID, tmd.TitleVersion, tmd.ContentCount)
		fmt.Printf("  IOS:             %016x\n", tmd.IOSTitleID)
	}

	if probe {
		var buf [4]byte
		_, err := stream.Read(buf[:])
		fmt.Printf("  Decryption:      %s\n", stream.DecryptionState())
		if verbose && err != nil {
			fmt.Printf("  Probe error:     %v\n", err)
		}
	}

	return nil
}
