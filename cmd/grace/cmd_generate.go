package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/driver"
)

var (
	modelPath string
	outDir    string
)

var generateCmd = &cobra.Command{
	Use:   "generate <model.yaml>",
	Short: "Classify, build, and emit a domain model",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&outDir, "out", "generated", "output directory for rendered source")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		modelPath = args[0]
	}
	if modelPath == "" {
		modelPath = "model.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	view, err := driver.LoadFixtureModel(modelPath)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}

	buf, err := driver.Run(view, cfg)
	if err != nil {
		return fmt.Errorf("generating: %w", err)
	}

	flusher := driver.NewDiskFlusher(outDir, nil)
	action, err := flusher.Flush("module", buf)
	if err != nil {
		return fmt.Errorf("flushing: %w", err)
	}

	fmt.Printf("%s: %d lines\n", action, len(buf.Lines()))
	return nil
}
