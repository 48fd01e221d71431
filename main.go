package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"osuwatch/internal/config"
	"osuwatch/internal/logging"
	"osuwatch/internal/watcher"
)

var (
	runOnce     bool
	writeToFile bool
	outputPath  string
	logLevel    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "osuwatch",
		Short:        "Reports the filesystem path of the beatmap osu!.exe currently has loaded",
		Long:         "osuwatch watches a running osu!.exe process under Wine and continuously reports the filesystem path of the currently loaded beatmap.",
		RunE:         runWatch,
		SilenceUsage: true,
	}

	rootCmd.Flags().BoolVar(&runOnce, "run-once", false, "stop after the first successfully observed beatmap path")
	rootCmd.Flags().BoolVar(&writeToFile, "write-to-file", false, "write each observed change to the sink file")
	rootCmd.Flags().StringVar(&outputPath, "output", config.DefaultFilePath, "sink file path used when --write-to-file is set")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "set log level (debug, info, warn, error), overrides OSUWATCH_LOG_LEVEL")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if logLevel != "" {
			logging.SetLevel(logLevel)
		}
	}

	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		logging.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts := config.New(
		config.WithRunOnce(runOnce),
		config.WithWriteToFile(writeToFile),
		config.WithFilePath(outputPath),
	)

	w := watcher.New(opts)

	var stop atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logging.Info("shutdown signal received")
		stop.Store(true)
	}()

	path, err := w.Start(&stop)
	signal.Stop(sigCh)
	if err != nil {
		return err
	}

	if path != "" {
		fmt.Println(path)
	}
	return nil
}
