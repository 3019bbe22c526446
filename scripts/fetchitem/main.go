package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lightning66/GiftMe/config"
	"github.com/lightning66/GiftMe/extractor"
	"github.com/lightning66/GiftMe/models"
	"github.com/lightning66/GiftMe/scraper"
)

// CLI flags
var (
	timeout       = flag.Duration("timeout", 0, "Page fetch timeout (default from config)")
	showTrace     = flag.Bool("trace", false, "Print every strategy tried per field")
	fingerprint   = flag.Bool("fingerprint", true, "Use the Chrome TLS fingerprint")
	price         = flag.Float64("price", 0, "Known current price")
	originalPrice = flag.Float64("original-price", 0, "List price before savings")
	savings       = flag.Float64("savings", 0, "Amount saved off the list price")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: fetchitem [flags] URL...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *timeout > 0 {
		cfg.Fetch.Timeout = *timeout
	}
	cfg.Fetch.TLSFingerprint = *fingerprint

	engine := extractor.NewEngine(scraper.NewFetcher(cfg.Fetch), cfg.Fetch.Timeout)

	failed := 0
	for _, u := range flag.Args() {
		req := models.ExtractRequest{URL: u}
		setOverrides(&req)

		start := time.Now()
		res, tr, err := engine.RunWithTrace(context.Background(), req)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: FAILED after %s: %v\n", u, time.Since(start).Round(time.Millisecond), err)
			continue
		}

		out, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(out))
		if *showTrace {
			printTrace(tr)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// setOverrides copies only the price flags given on the command line.
func setOverrides(req *models.ExtractRequest) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "price":
			v := *price
			req.Price = &v
		case "original-price":
			v := *originalPrice
			req.OriginalPrice = &v
		case "savings":
			v := *savings
			req.Savings = &v
		}
	})
}

func printTrace(tr *extractor.Trace) {
	fmt.Printf("JSON-LD blocks: %d  structured product: %t\n", tr.JSONLDBlocks, tr.HasStructuredData)
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Field\tStrategy\tValue\tChosen\n")
	fmt.Fprintf(w, "─────\t────────\t─────\t──────\n")
	for _, s := range tr.Steps {
		chosen := ""
		if s.Chosen {
			chosen = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Field, s.Strategy, truncate(s.Value, 60), chosen)
	}
	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
