package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bedownloader/pkg/behance"
	"bedownloader/pkg/history"
	"bedownloader/pkg/logger"
	"bedownloader/pkg/ui"
)

var fullURLs bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the download history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List downloaded projects",
	Run:   runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every downloaded project",
	Run:   runHistoryClear,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyCmd.PersistentFlags().StringVar(&historyFile, "history-file", "", "download history file (default settings/history.txt)")
	historyListCmd.Flags().BoolVar(&fullURLs, "full", false, "print full URLs")
}

func runHistoryList(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	store := history.NewStore(cfg.History.File, logger.GetLogger())

	urls := store.Load()
	if len(urls) == 0 {
		ui.PrintInfo(os.Stdout, "History is empty", store.Path())
		return
	}

	for _, u := range urls {
		if fullURLs {
			fmt.Println(u)
		} else {
			fmt.Println(behance.FormatForDisplay(u, 80))
		}
	}
	ui.PrintInfo(os.Stdout, "Projects", fmt.Sprintf("%d in %s", len(urls), store.Path()))
}

func runHistoryClear(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	store := history.NewStore(cfg.History.File, logger.GetLogger())

	fmt.Printf("Forget all %d downloaded projects? (y/N): ", len(store.Load()))
	input, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
		return
	}

	if err := store.Clear(); err != nil {
		ui.PrintError(os.Stderr, "Failed to clear history", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess(os.Stdout, "History cleared")
}
