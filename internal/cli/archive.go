package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/salesdb/internal/archive"
)

// ArchiveSaveOptions holds flags for archive save.
type ArchiveSaveOptions struct {
	*RootOptions
	Label string
}

// NewArchiveCommand creates the archive command group.
func NewArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Save and list table snapshots in a SQLite archive",
	}

	cmd.AddCommand(newArchiveSaveCommand(rootOpts))
	cmd.AddCommand(newArchiveListCommand(rootOpts))

	return cmd
}

func newArchiveSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArchiveSaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <source> <archive.db>",
		Short: "Save every table of a source as a new snapshot",
		Long: `Load a source and save all four tables under one new snapshot.

The archive file is created if it does not exist. Snapshots are never
modified after they are saved; query reads the latest one.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveSave(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Label, "label", "", "snapshot label")

	return cmd
}

func newArchiveListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <archive.db>",
		Short:         "List the snapshots in an archive",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveList(rootOpts, args[0], cmd)
		},
	}
}

func runArchiveSave(opts *ArchiveSaveOptions, source, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	logger := opts.logger()

	db, err := openSource(ctx, source, logger)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeSource, "failed to open source", err)
	}

	a, err := archive.Open(path, archive.WithLogger(logger))
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeArchive, "failed to open archive", err)
	}
	defer a.Close()

	snap, err := a.CreateSnapshot(ctx, opts.Label)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeArchive, "failed to create snapshot", err)
	}
	for _, t := range salesTables {
		if err := t.save(ctx, a, snap.ID, db); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeArchive, fmt.Sprintf("failed to save %s", t.name), err)
		}
	}

	snap, err = a.GetSnapshot(ctx, snap.ID)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeArchive, "failed to read snapshot", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(snap)
	}
	fmt.Fprintf(formatter.Writer, "✓ snapshot %s (seq %d) saved to %s: %s\n",
		snap.ID, snap.Seq, path, formatTables(snap.Tables))
	return nil
}

func runArchiveList(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	// Listing must not create an archive as a side effect
	if _, err := os.Stat(path); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeArchive, "archive not found", err)
	}

	a, err := archive.Open(path, archive.WithLogger(opts.logger()))
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeArchive, "failed to open archive", err)
	}
	defer a.Close()

	snaps, err := a.ListSnapshots(cmd.Context())
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeArchive, "failed to list snapshots", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(snaps)
	}
	renderSnapshots(formatter.Writer, snaps)
	return nil
}
