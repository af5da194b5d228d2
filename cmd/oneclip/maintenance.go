package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"oneclip/internal/server"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and storage usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client := newAPIClient(cfg.Port())

			status, err := client.Status()
			if err != nil {
				return err
			}
			info, err := client.StorageInfo()
			if err != nil {
				return err
			}

			fmt.Printf("Daemon:   %s (%s)\n", status["status"], status["addr"])
			fmt.Printf("Entries:  %d\n", info.ItemCount)
			fmt.Printf("Size:     %s\n", fmtSize(info.TotalSize))
			fmt.Printf("Storage:  %s\n", info.CachePath)
			return nil
		},
	}
	addConfigFlag(cmd)
	return cmd
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running daemon",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := server.StopRunning(); err != nil {
				return err
			}
			fmt.Println("Daemon stopped.")
			return nil
		},
	}
}

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clear history or wipe the storage root",
		Long: `Without flags, clears history while keeping favorites. With --all, wipes
the entire storage root including favorites.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			all, _ := cmd.Flags().GetBool("all")
			yes, _ := cmd.Flags().GetBool("yes")

			if all && !yes && !confirm("This deletes ALL history including favorites. Continue?") {
				fmt.Println("Aborted.")
				return nil
			}

			client := newAPIClient(cfg.Port())
			if all {
				if err := client.WipeStorage(); err != nil {
					return err
				}
				fmt.Println("Storage wiped.")
				return nil
			}
			if err := client.Clear(); err != nil {
				return err
			}
			fmt.Println("History cleared (favorites kept).")
			return nil
		},
	}
	cmd.Flags().Bool("all", false, "also delete favorites")
	cmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	addConfigFlag(cmd)
	return cmd
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
