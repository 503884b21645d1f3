package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/kanavox/internal/archive"
	"codeberg.org/snonux/kanavox/internal/cli"
	"codeberg.org/snonux/kanavox/internal/presets"
	"codeberg.org/snonux/kanavox/internal/processor"
	"codeberg.org/snonux/kanavox/internal/transliterate"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Logging and configuration are set up before any run function
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cli.SetupLogging(flags.Verbose)
		return cli.InitConfig(flags.CfgFile)
	}

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	cli.LoadConfig(flags)
	if err := flags.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()

	// Handle --archive flag
	if flags.Archive {
		archivePath, moved, err := archive.ArchiveOutput(flags.OutputDir, flags.AudioFormat)
		if err != nil {
			return fmt.Errorf("failed to archive output: %w", err)
		}
		if moved == 0 {
			fmt.Printf("Nothing to archive in %s\n", flags.OutputDir)
		} else {
			fmt.Printf("Archived %d files to: %s\n", moved, archivePath)
		}
		return nil
	}

	// Handle --import-dict flag
	if flags.ImportDict != "" {
		return importDictionary(ctx, flags)
	}

	// Handle --list-presets flag
	if flags.ListPresets {
		client, err := processor.NewEngineClient(flags)
		if err != nil {
			return err
		}
		return presets.NewLister(client, os.Stdout).ListPresets(ctx, flags.Params().PresetID)
	}

	// Create processor
	proc, err := processor.NewFromFlags(ctx, flags)
	if err != nil {
		return err
	}
	defer proc.Close()

	if len(args) > 0 {
		// Process single text
		result, err := proc.ProcessSingle(ctx, args[0], flags.Name)
		if err != nil {
			return err
		}
		if !result.Succeeded {
			// Entry failures do not change the exit status
			return nil
		}
		fmt.Printf("\nDone! Audio saved to: %s\n", result.OutputPath)
		return nil
	}

	// Process batch file
	if _, err := proc.ProcessBatchFile(ctx, flags.BatchFile); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Interrupted, files written so far are kept")
		}
		return err
	}

	fmt.Printf("\nDone! Audio saved to: %s\n", flags.OutputDir)
	return nil
}

func importDictionary(ctx context.Context, flags *cli.Flags) error {
	dict, err := transliterate.Open(flags.DictFile)
	if err != nil {
		return err
	}
	defer dict.Close()

	imported, err := dict.ImportCSV(ctx, flags.ImportDict)
	if err != nil {
		return err
	}

	total, err := dict.Count(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d words into %s (%d words total)\n", imported, flags.DictFile, total)
	return nil
}
