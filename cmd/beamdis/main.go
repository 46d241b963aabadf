package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/beamdis/beamdis/analysis"
	"github.com/beamdis/beamdis/internal/xlog"
)

func main() {
	var (
		file        = flag.String("file", "", "Disassemble a single module or archive")
		search      = flag.String("search", "", "Recurse a directory and disassemble every module/archive found")
		outputDir   = flag.String("output-dir", "", "Write one <module>.beamc file per module here instead of stdout")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		interactive = flag.Bool("i", false, "Interactive module/function/block browser")
	)
	flag.BoolVar(interactive, "interactive", *interactive, "Interactive module/function/block browser")
	flag.Parse()

	if *file == "" && *search == "" {
		fmt.Fprintln(os.Stderr, "Usage: beamdis --file <path> [--output-dir dir] [-i]")
		fmt.Fprintln(os.Stderr, "       beamdis --search <dir> [--output-dir dir] [-i]")
		os.Exit(1)
	}

	if err := xlog.SetVerbose(*verbose); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	paths, err := inputPaths(*file, *search)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	modules, failures := loadAll(paths)
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "%s: %v\n", f.path, f.err)
	}

	analyzed := make([]*analysis.Module, 0, len(modules))
	for _, m := range modules {
		analyzed = append(analyzed, analysis.Analyze(m))
	}
	analysis.Annotate(analyzed)

	if *interactive {
		if len(analyzed) == 0 {
			fmt.Fprintln(os.Stderr, "no modules parsed successfully")
			os.Exit(1)
		}
		p := tea.NewProgram(newBrowserModel(analyzed), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := emit(analyzed, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if len(failures) > 0 {
		os.Exit(1)
	}
}

// inputPaths resolves --file/--search into a flat list of candidate module
// or archive paths. --search recurses; --file is used as-is.
func inputPaths(file, search string) ([]string, error) {
	if file != "" {
		return []string{file}, nil
	}
	var out []string
	err := filepath.WalkDir(search, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".beam", ".ez", ".gz":
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", search, err)
	}
	return out, nil
}

// emit writes the rendered text for every analyzed module either to
// --output-dir (one <module>.beamc file each) or to stdout.
func emit(modules []*analysis.Module, outputDir string) error {
	if outputDir == "" {
		for _, m := range modules {
			fmt.Println(analysis.Render(m))
		}
		return nil
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, m := range modules {
		out := filepath.Join(outputDir, m.Source.Name()+".beamc")
		if err := os.WriteFile(out, []byte(analysis.Render(m)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
	}
	return nil
}
