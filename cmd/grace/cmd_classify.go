package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uberFoo/grace-sub001/internal/classifier"
	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/driver"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <model.yaml>",
	Short: "Print the classified Shape of every object in the model",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	view, err := driver.LoadFixtureModel(args[0])
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}

	cls := classifier.New(view, cfg)
	for _, obj := range view.Objects() {
		fmt.Printf("%-24s %s\n", obj.Name, cls.Classify(obj.ID))
	}
	return nil
}
