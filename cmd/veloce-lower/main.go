// Command veloce-lower runs the DMA lowering pass over the built-in sample
// program and prints the IR before and after, for inspecting what a target
// description makes the pass emit.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/veloce-lang/veloce/internal/lower"
	"github.com/veloce-lang/veloce/internal/rewrite"
	"github.com/veloce-lang/veloce/internal/target"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var targetPath string
	var watch bool

	cmd := &cobra.Command{
		Use:   "veloce-lower",
		Short: "Lower dma.start ops to mchan driver calls",
		Long: `veloce-lower builds the sample cluster-copy program, runs the
mchan DMA lowering pass against a target description, and prints the MIR
before and after. With --watch it re-runs the pass whenever the target
description file changes.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runOnce(targetPath); err != nil {
				return err
			}
			if watch {
				if targetPath == "" {
					return fmt.Errorf("--watch requires --target")
				}
				return watchTarget(targetPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&targetPath, "target", "", "path to a YAML target description (default: built-in pulp-cluster)")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-run the pass when the target description changes")

	return cmd
}

func runOnce(targetPath string) error {
	tgt := target.Default()
	if targetPath != "" {
		var err error
		tgt, err = target.Load(targetPath)
		if err != nil {
			return err
		}
	}

	pattern, err := lower.NewDMAStartToMchan(tgt)
	if err != nil {
		return err
	}

	mod := lower.BuildDemoModule()
	fmt.Printf("target %s (mchan driver %s)\n\n", tgt.Name, tgt.DriverVersion)
	fmt.Println("== before ==")
	fmt.Print(mod)

	for _, fn := range mod.Functions {
		if err := rewrite.Apply(fn, pattern); err != nil {
			return err
		}
	}

	fmt.Println("\n== after ==")
	fmt.Print(mod)
	return nil
}

func watchTarget(path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: editors replace files on save, which drops a
	// watch registered on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "watching %s\n", path)

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintf(os.Stderr, "reloading %s\n", path)
			if err := runOnce(path); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watch error:", err)
		}
	}
}
