package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oomwatch/oomwatchd/pkg/statusfile"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func main() {
	var path string

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "print the daemon's last reported status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printStatus(path)
		},
	}
	statusCmd.Flags().StringVarP(&path, "status-file", "f", statusfile.DefaultOomwatchdPath, "path to the oomwatchd status file")

	root := &cobra.Command{
		Use:   "oomwatchctl",
		Short: "read-only companion CLI for oomwatchd",
	}
	root.AddCommand(statusCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printStatus(path string) error {
	snap, err := statusfile.Read(path)
	if errors.Is(err, fs.ErrNotExist) && path == statusfile.DefaultOomwatchdPath {
		// A daemon started without --status-file by an older release
		// writes to the historical location instead.
		path = statusfile.DefaultPath
		snap, err = statusfile.Read(path)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Status", "MemAvailable", "Setpoint", "Reported"})
	table.Append([]string{
		snap.Status,
		fmt.Sprintf("%.2f%%", snap.MemAvailablePct),
		fmt.Sprintf("%.2f%%", snap.Setpoint),
		humanize.Time(snap.At),
	})
	table.Render()

	if age := time.Since(snap.At); age > 30*time.Second {
		fmt.Fprintf(os.Stderr, "warning: status file is %s old, oomwatchd may not be running\n", humanize.Time(snap.At))
	}
	return nil
}
