package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ipdash/internal/dashboard"
	"ipdash/internal/history"
	"ipdash/internal/status"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Fetch the snapshot once and print it",
	Long: `Runs a single refresh cycle against the configured data source, prints
the status, address, history and service endpoints, and exits.

The exit status is 1 when the snapshot could not be fetched.`,
	Args: cobra.NoArgs,
	RunE: runOnce,
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	level, _ := cfg.LogLevel()
	a, err := newApp(cfg, newConsoleLogger(level))
	if err != nil {
		return err
	}

	ctrl := a.controller(&boardSink{board: a.board, now: time.Now, log: a.log}, false)
	defer ctrl.Close()
	ok := ctrl.RunOnce(cmd.Context())

	printBoard(cmd.OutOrStdout(), a.board)
	if !ok {
		_, label := a.board.Status()
		return fmt.Errorf("snapshot unavailable: %s", label)
	}
	return nil
}

func printBoard(w io.Writer, b *dashboard.Board) {
	head := color.New(color.FgCyan, color.Bold)
	kind, label := b.Status()
	switch kind {
	case status.Online:
		color.New(color.FgGreen, color.Bold).Fprintf(w, "● %s\n", label)
	case status.Offline:
		color.New(color.FgRed, color.Bold).Fprintf(w, "● %s\n", label)
	default:
		color.New(color.FgYellow).Fprintf(w, "● %s\n", label)
	}

	snap := b.Snapshot()
	fmt.Fprintln(w)
	head.Fprintf(w, "本机IP    ")
	fmt.Fprintln(w, snap.LocalIP)
	head.Fprintf(w, "网络接口  ")
	fmt.Fprintln(w, snap.NetworkInterface)
	head.Fprintf(w, "最后更新  ")
	fmt.Fprintln(w, snap.LastUpdate)

	fmt.Fprintln(w)
	rows := historyTable(b.HistoryRows(), func(s string) string { return head.Sprint(s) }, func(class, text string) string {
		return historyColor(class).Sprint(text)
	})
	for _, line := range rows {
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	head.Fprintln(w, "服务")
	launchable := b.Launchable()
	for _, e := range b.Services() {
		target := serviceTarget(e)
		if !launchable {
			target = "IP不可用"
		}
		fmt.Fprintf(w, "  %s %s  %s\n", e.Icon, e.Name, target)
	}
}

func historyColor(class string) *color.Color {
	switch class {
	case history.ClassNew:
		return color.New(color.FgGreen)
	case history.ClassUpdated:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgHiBlack)
	}
}
