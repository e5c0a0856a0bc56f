package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/disctools/go-wiidisc/internal/interfaces"
	"github.com/disctools/go-wiidisc/internal/services"
)

var (
	// Global flags
	verbose  bool
	keysFile string
)

var rootCmd = &cobra.Command{
	Use:   "wiidisc",
	Short: "Read-only Wii disc image inspector and extractor",
	Long: `wiidisc is a cross-platform, read-only command-line tool for inspecting
Nintendo Wii optical disc images: disc header, partition tables, per-partition
tickets and title metadata, and on-the-fly decryption of partition data.

Decryption requires the common keys, loaded from a text file of
"name = hexkey" lines (rvl-common, rvl-korean, rvt-debug, ...).

Commands:
  info     Show disc and partition metadata, including decryption status
  list     List the partitions on a disc image
  extract  Write one partition's decrypted data to a file`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&keysFile, "keys", "k", "", "path to the key file")
}

// openKeyStore loads the key store from --keys or the configured search
// paths.
func openKeyStore() (interfaces.KeyStore, error) {
	config, err := services.LoadKeyStoreConfig()
	if err != nil {
		return nil, err
	}
	if keysFile != "" {
		config.KeysFile = keysFile
	}
	return services.OpenDefaultKeyStore(afero.NewOsFs(), config)
}
