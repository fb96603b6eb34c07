package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/tristendillon/tsmock/core/config"
	"github.com/tristendillon/tsmock/core/generator"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/models"
)

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.Load()
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "cannot determine working dir")
	}
	return config.LoadFrom(afero.NewOsFs(), wd, configFile)
}

func newGenerator() (*generator.CompanionGenerator, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return generator.NewCompanionGenerator(afero.NewOsFs(), cfg), cfg, nil
}

// runEach applies sync to every path and reports the combined results.
func runEach(paths []string, sync func(ctx context.Context, path string) models.Result) error {
	ctx := context.Background()
	var results []models.Result
	for _, p := range paths {
		results = append(results, sync(ctx, p))
	}
	return report(results)
}

// report prints one line per failure, with hints, and returns an error when
// anything failed.
func report(results []models.Result) error {
	failures := 0
	for _, r := range results {
		if r.Outcome != models.Failed {
			continue
		}
		failures++
		pterm.Error.Printf("%s: %v\n", displayPath(r.Companion), r.Err)
		for _, hint := range errors.GetAllHints(r.Err) {
			pterm.Info.Printf("  hint: %s\n", hint)
		}
	}
	if failures > 0 {
		return errors.Newf("%d of %d companion file(s) failed", failures, len(results))
	}
	return nil
}

func renderSummary(results []models.Result) error {
	data := pterm.TableData{{"File", "Companion", "Outcome", "Changed"}}
	for _, r := range results {
		if r.Outcome == models.NoOp && !logger.IsVerbose() {
			continue
		}
		changed := ""
		if r.Outcome == models.Created || r.Outcome == models.Updated {
			changed = fmt.Sprintf("%d", r.Changed)
		}
		data = append(data, []string{displayPath(r.Source), r.Kind.String(), r.Outcome.String(), changed})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil {
		return rel
	}
	return path
}

// logResult logs r at a level matching its outcome.
func logResult(r models.Result) {
	level := logger.INFO
	switch r.Outcome {
	case models.Failed:
		level = logger.ERROR
	case models.NoOp:
		level = logger.DEBUG
	}
	logger.GetLogFromLevel(level)("%s", r)
}
