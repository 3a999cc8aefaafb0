package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/midbel/pdfpages"
	"golang.org/x/term"
)

const (
	row    = "%5d | %8.2f x %-8.2f | %5d x %-5d"
	header = "%5s | %-19s | %-13s"
)

func main() {
	var (
		rg      Range
		verbose = flag.Bool("v", false, "verbose")
		limit   = flag.Int64("m", 0, "maximum file size in bytes")
	)
	flag.Var(&rg, "p", "page range")
	flag.Parse()

	opts := pdfpages.DefaultOptions()
	opts.MaxFileSize = *limit
	if *verbose {
		opts.Trace = func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format, args...)
			fmt.Fprintln(os.Stderr)
		}
	}
	var (
		parser = pdfpages.NewParser(opts)
		code   int
	)
	for _, file := range flag.Args() {
		st, err := parser.ParseFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s", file, err)
			fmt.Fprintln(os.Stderr)
			code = 1
			continue
		}
		printStructure(file, st, &rg)
	}
	os.Exit(code)
}

func printStructure(file string, st pdfpages.Structure, rg *Range) {
	printLine("file", file)
	printLine("pages", fmt.Sprintf("%d", st.PageCount))
	if st.Fallback {
		printLine("sizes", "default (page tree unreadable)")
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf(header, "page", "points", "pixels")
		fmt.Println()
	}
	for _, p := range rg.Pages(st.PageCount) {
		b := st.PageBoxes[p-1]
		fmt.Printf(row, p, b.WidthPt, b.HeightPt, b.WidthPx, b.HeightPx)
		fmt.Println()
	}
}

func printLine(key, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-12s: %s", strings.Title(key), value)
	fmt.Println()
}
