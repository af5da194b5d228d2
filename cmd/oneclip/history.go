package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"oneclip/pkg/types"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List clipboard history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			items, err := newAPIClient(cfg.Port()).History(limit)
			if err != nil {
				return err
			}
			printEntries(items)
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "show at most N entries (0 = all)")
	addConfigFlag(cmd)
	return cmd
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search clipboard history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			items, err := newAPIClient(cfg.Port()).Search(args[0], limit)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("No matches.")
				return nil
			}
			printEntries(items)
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "show at most N matches")
	addConfigFlag(cmd)
	return cmd
}

func newPasteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paste [index]",
		Short: "Copy a history entry back to the clipboard",
		Long:  `Copies the entry at the given history index (0 = most recent) back to the system clipboard.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			index := 0
			if len(args) == 1 {
				if _, err := fmt.Sscanf(args[0], "%d", &index); err != nil {
					return fmt.Errorf("invalid index %q", args[0])
				}
			}
			return newAPIClient(cfg.Port()).Paste(index)
		},
	}
	addConfigFlag(cmd)
	return cmd
}

func newFavoriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite <index>",
		Short: "Toggle an entry's favorite flag",
		Long:  `Toggles the favorite flag on the entry at the given history index (0 = most recent). Favorites survive "oneclip clean".`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			var index int
			if _, err := fmt.Sscanf(args[0], "%d", &index); err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}

			client := newAPIClient(cfg.Port())
			items, err := client.History(0)
			if err != nil {
				return err
			}
			if index < 0 || index >= len(items) {
				return fmt.Errorf("no entry at index %d", index)
			}

			entry, err := client.Favorite(items[index].ID)
			if err != nil {
				return err
			}
			if entry.IsFavorite {
				fmt.Printf("Favorited %q.\n", preview(entry.Content, 40))
			} else {
				fmt.Printf("Unfavorited %q.\n", preview(entry.Content, 40))
			}
			return nil
		},
	}
	addConfigFlag(cmd)
	return cmd
}

func printEntries(items []types.Entry) {
	tw := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tTYPE\tFAV\tAGE\tCONTENT\n")
	for i, item := range items {
		fav := ""
		if item.IsFavorite {
			fav = "*"
		}
		content := item.Content
		if item.Type != types.TypeText {
			content = fmt.Sprintf("<%s> %s", item.Type, item.Content)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i, item.Type, fav, fmtAge(item.Timestamp), preview(content, 60))
	}
	tw.Flush()
}
