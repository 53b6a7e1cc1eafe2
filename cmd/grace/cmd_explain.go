package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uberFoo/grace-sub001/internal/classifier"
	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/driver"
	"github.com/uberFoo/grace-sub001/internal/woog"
)

var explainCmd = &cobra.Command{
	Use:   "explain <model.yaml> <object-name>",
	Short: "Print the Woog constructor descriptor(s) built for one object",
	Args:  cobra.ExactArgs(2),
	RunE:  runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	view, err := driver.LoadFixtureModel(args[0])
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}

	cls := classifier.New(view, cfg)
	builder := woog.New(view, cfg, cls)
	wg, err := builder.Build()
	if err != nil {
		return fmt.Errorf("building woog model: %w", err)
	}

	for _, obj := range view.Objects() {
		if obj.Name != args[1] {
			continue
		}
		ctors := wg.ConstructorsFor(obj.ID)
		if len(ctors) == 0 {
			fmt.Printf("%s: no constructors (shape=%s)\n", obj.Name, cls.Classify(obj.ID))
			return nil
		}
		for _, ctor := range ctors {
			fmt.Printf("%s::%s(", obj.Name, ctor.Name)
			for i, p := range ctor.Parameters {
				if i > 0 {
					fmt.Print(", ")
				}
				fmt.Printf("%s: %s", p.Name, p.Type)
			}
			fmt.Println(")")
			for _, f := range ctor.Fields {
				fmt.Printf("  field %s: %s\n", f.Name, f.Type)
			}
		}
		return nil
	}

	return fmt.Errorf("object %q not found in model", args[1])
}
