// oneclip: clipboard history for macOS.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oneclip/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "oneclip",
		Short: "Clipboard history daemon and CLI",
		Long: `oneclip watches the system clipboard and keeps a searchable history
on disk, organised into one directory per calendar day.

Run "oneclip start" to launch the daemon. The other commands talk to the
running daemon over its local HTTP API.

Config file search order (first found wins):
  /etc/oneclip/oneclip.toml
  $HOME/.config/oneclip/oneclip.toml
  path supplied via --config

All settings can also be set via ONECLIP_<KEY> env vars.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newStartCmd(),
		newStopCmd(),
		newStatusCmd(),
		newHistoryCmd(),
		newSearchCmd(),
		newPasteCmd(),
		newPickCmd(),
		newFavoriteCmd(),
		newCleanCmd(),
		newActivateCmd(),
		newLicenseCmd(),
		newLoginCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("oneclip %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger from config values.
func resolveLogging(formatStr, levelStr string) {
	logging.Setup(logging.ParseFormat(formatStr), logging.ParseLevel(levelStr))
}
