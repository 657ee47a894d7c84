// Command tally-import adds the rows of a bank statement CSV to the
// configured store, asking on stdin before committing impulse purchases
// over the monthly threshold.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"tally/internal/categories"
	"tally/internal/cli"
	"tally/internal/importer"
	"tally/internal/log"
	"tally/internal/services"
)

func main() {
	mapping := importer.DefaultMapping(time.Now().Year())
	path := flag.String("file", "", "CSV statement to import (required)")
	flag.IntVar(&mapping.Date, "date", mapping.Date, "date column index")
	flag.IntVar(&mapping.Amount, "amount", mapping.Amount, "amount column index")
	flag.IntVar(&mapping.Label, "label", mapping.Label, "label column index, -1 if absent")
	flag.IntVar(&mapping.Category, "category", mapping.Category, "category column index, -1 if absent")
	flag.IntVar(&mapping.Impulse, "impulse", mapping.Impulse, "impulse column index, -1 if absent")
	flag.BoolVar(&mapping.SkipHeader, "header", mapping.SkipHeader, "skip the first row")
	flag.IntVar(&mapping.Year, "year", mapping.Year, "year for MON D statement dates")
	yes := flag.Bool("yes", false, "confirm every impulse warning without asking")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentImporter)

	if err := cli.RequirePersistentBackend(cfg); err != nil {
		logger.Error("Refusing to import into a temporary store", log.FieldError, err)
		os.Exit(1)
	}

	backend, err := cli.OpenStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", log.FieldError, err)
		os.Exit(1)
	}
	defer backend.Close()

	f, err := os.Open(*path)
	if err != nil {
		logger.Error("Failed to open statement", log.FieldError, err, "path", *path)
		os.Exit(1)
	}
	defer f.Close()

	svc := services.NewExpenseService(backend.Store, categories.New(),
		services.WithLogger(logger),
		services.WithSeedCategories(cli.SeedCategories(cfg)))

	confirmer := cli.PromptConfirmer(os.Stdin, os.Stdout)
	if *yes {
		confirmer = services.Preapproved(true)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	res, err := importer.New(svc, logger).Import(ctx, f, mapping, confirmer)
	for _, rowErr := range res.Errors {
		fmt.Fprintln(os.Stderr, rowErr)
	}
	fmt.Printf("imported %d, declined %d, skipped %d\n", res.Imported, res.Declined, len(res.Errors))
	if err != nil {
		logger.Error("Import aborted", log.FieldError, err)
		os.Exit(1)
	}
}
