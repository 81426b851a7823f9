package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/wippyai/js-runtime/runtime"
)

func main() {
	var (
		expr        = flag.String("e", "", "Expression to evaluate")
		scriptFile  = flag.String("file", "", "Path to script file")
		interactive = flag.Bool("i", false, "Interactive REPL")
	)
	flag.Parse()

	if *expr == "" && *scriptFile == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: run -e <expression>")
		fmt.Fprintln(os.Stderr, "       run -file <script.js>")
		fmt.Fprintln(os.Stderr, "       run -i  (interactive REPL)")
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*expr, *scriptFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(expr, scriptFile string) error {
	rt, err := runtime.New()
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close()

	ctx, err := rt.NewContext()
	if err != nil {
		return fmt.Errorf("create context: %w", err)
	}
	defer ctx.Close()

	src := expr
	name := "cmdline.js"
	if scriptFile != "" {
		data, err := os.ReadFile(scriptFile)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		src = string(data)
		name = filepath.Base(scriptFile)
	}

	result, err := ctx.Evaluate(src, name)
	if err != nil {
		return err
	}
	if err := drainJobs(ctx); err != nil {
		return err
	}

	fmt.Println(formatResult(result))
	return nil
}

// drainJobs runs queued promise settlements, bounded to avoid a job that
// keeps scheduling more work spinning forever.
func drainJobs(ctx *runtime.Context) error {
	for i := 0; i < 1000; i++ {
		ran, err := ctx.ExecutePendingJob()
		if err != nil {
			return err
		}
		if !ran {
			return nil
		}
	}
	return nil
}

func formatResult(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%v", v)
}
