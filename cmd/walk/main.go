package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/midbel/hexdump"
	"github.com/midbel/pdfpages"
)

func main() {
	var (
		all = flag.Bool("a", false, "all")
		raw = flag.Bool("r", false, "raw")
	)
	flag.Parse()
	buf, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	list, err := pdfpages.ReadSections(buf)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, s := range list {
		printSection(s, *all, *raw)
	}
}

func printSection(s pdfpages.Section, all, raw bool) {
	kind := "table"
	if s.Stream {
		kind = "stream"
	}
	fmt.Printf("xref %s at %d: %d objects %+v", kind, s.Offset, len(s.Entries), s.Trailer)
	fmt.Println()
	if all {
		nums := make([]int, 0, len(s.Entries))
		for n := range s.Entries {
			nums = append(nums, n)
		}
		sort.Ints(nums)
		for _, n := range nums {
			fmt.Printf("%8d %12d", n, s.Entries[n])
			fmt.Println()
		}
	}
	if raw && len(s.Data) > 0 {
		fmt.Println(hexdump.Dump(s.Data))
	}
}
