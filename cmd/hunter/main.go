package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/eirinkan/Desire-Hunter/config"
	"github.com/eirinkan/Desire-Hunter/internal/app"
	"github.com/eirinkan/Desire-Hunter/internal/domain"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// Version is set during build
var Version = "dev"

const reasoningPreview = 80

// --quick preset: a looser score floor for a fast look
const (
	quickMinScore    = 3
	quickMaxProducts = 5
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "hunter",
		Usage:     "find products that fulfil a desire",
		UsageText: "hunter [flags] \"desire\"\nhunter --quick \"desire\"\nhunter --batch desires.txt",
		Version:   Version,
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "batch",
				Aliases: []string{"b"},
				Usage:   "read one desire per line from `FILE`",
			},
			&cli.IntFlag{
				Name:  "min-score",
				Value: 5,
				Usage: "minimum relevance score (1-10)",
			},
			&cli.IntFlag{
				Name:  "max-products",
				Value: 5,
				Usage: "maximum products per desire",
			},
			&cli.BoolFlag{
				Name:    "quick",
				Aliases: []string{"q"},
				Usage:   "quick look: min score 3, top 5 (explicit flags still win)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print results as JSON",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log pipeline progress to stderr",
			},
		},
		Action: func(c *cli.Context) error {
			desires, err := collectDesires(c)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := applyFlags(cfg, c); err != nil {
				return err
			}

			logger, err := app.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			service, cleanup := app.NewHuntService(cfg, app.CLIHuntConfig(cfg), logger)
			defer cleanup()

			results, err := service.HuntBatch(c.Context, desires)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return writeJSON(out, results)
			}
			for i, result := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printResult(out, result)
			}
			return nil
		},
	}
}

// collectDesires reads desires from --batch or the positional arguments
func collectDesires(c *cli.Context) ([]string, error) {
	if path := c.String("batch"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open batch file: %w", err)
		}
		defer f.Close()

		desires, err := readDesires(f)
		if err != nil {
			return nil, fmt.Errorf("read batch file: %w", err)
		}
		if len(desires) == 0 {
			return nil, cli.Exit("batch file has no desires", 2)
		}
		return desires, nil
	}

	desire := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if desire == "" {
		return nil, cli.Exit("a desire or --batch file is required", 2)
	}
	return []string{desire}, nil
}

// readDesires returns one desire per non-blank line, skipping # comments
func readDesires(r io.Reader) ([]string, error) {
	var desires []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		desires = append(desires, line)
	}
	return desires, scanner.Err()
}

func applyFlags(cfg *config.Config, c *cli.Context) error {
	minScore := c.Int("min-score")
	if minScore < 1 || minScore > 10 {
		return cli.Exit(fmt.Sprintf("--min-score must be between 1 and 10, got %d", minScore), 2)
	}
	maxProducts := c.Int("max-products")
	if maxProducts < 1 {
		return cli.Exit(fmt.Sprintf("--max-products must be positive, got %d", maxProducts), 2)
	}

	if c.Bool("quick") {
		cfg.Hunt.MinRelevanceScore = quickMinScore
		cfg.Hunt.MaxProducts = quickMaxProducts
	}
	if c.IsSet("min-score") || cfg.Hunt.MinRelevanceScore == 0 {
		cfg.Hunt.MinRelevanceScore = minScore
	}
	if c.IsSet("max-products") || cfg.Hunt.MaxProducts == 0 {
		cfg.Hunt.MaxProducts = maxProducts
	}

	if c.Bool("verbose") {
		cfg.Log.Level = zap.DebugLevel.String()
		cfg.Log.Format = "console"
	} else {
		cfg.Log.Level = zap.ErrorLevel.String()
	}
	return nil
}

func writeJSON(w io.Writer, results []*domain.HuntResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

func printResult(w io.Writer, result *domain.HuntResult) {
	fmt.Fprintf(w, "Desire: %s\n", result.Desire)
	fmt.Fprintf(w, "Searched %d, scraped %d, found %d\n",
		result.TotalSearched, result.TotalScraped, len(result.Products))

	if len(result.Products) == 0 {
		fmt.Fprintln(w, "  no matching products")
	}

	for i, p := range result.Products {
		fmt.Fprintf(w, "\n%d. %s", i+1, p.Name)
		if p.Brand != "" {
			fmt.Fprintf(w, " (%s)", p.Brand)
		}
		fmt.Fprintf(w, "  [score %d/10]\n", p.RelevanceScore)

		if price := formatPrice(p.Price); price != "" {
			fmt.Fprintf(w, "   Price: %s\n", price)
		}
		if p.Reasoning != "" {
			fmt.Fprintf(w, "   Why:   %s\n", truncate(p.Reasoning, reasoningPreview))
		}
		if url := productURL(p); url != "" {
			fmt.Fprintf(w, "   URL:   %s\n", url)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
}

func formatPrice(price *domain.PriceInfo) string {
	if price == nil {
		return ""
	}
	if price.Formatted != "" {
		return price.Formatted
	}
	if price.Amount == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%.2f %s", *price.Amount, price.Currency))
}

// productURL picks the official page, then the first store link
func productURL(p domain.Product) string {
	for _, url := range []string{p.OfficialURL, p.AmazonURL, p.RakutenURL, p.SourceURL} {
		if url != "" {
			return url
		}
	}
	return ""
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
