// Command forecast plays a fixture template offline against a catalog
// snapshot and prints title odds and the top fantasy scorers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/DhavalSuthar-24/miow-forecast/internal/bracket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/catalog"
	"github.com/DhavalSuthar-24/miow-forecast/internal/engine"
	"github.com/DhavalSuthar-24/miow-forecast/internal/reward"
	"github.com/DhavalSuthar-24/miow-forecast/pkg/logger"
)

type options struct {
	template     string
	snapshot     string
	points       string
	scenarios    int
	maxScenarios int
	seed         uint64
	workers      int
	top          int
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("forecast", flag.ContinueOnError)
	fs.StringVar(&o.template, "template", "./data/template.yaml", "fixture template (YAML)")
	fs.StringVar(&o.snapshot, "snapshot", "./data/catalog.yaml", "catalog snapshot (YAML)")
	fs.StringVar(&o.points, "points", "", "points table (YAML), defaults to the built-in table")
	fs.IntVar(&o.scenarios, "scenarios", 20, "number of scenarios")
	fs.IntVar(&o.maxScenarios, "max-scenarios", 100, "upper bound on scenarios")
	fs.Uint64Var(&o.seed, "seed", 20240521, "master seed")
	fs.IntVar(&o.workers, "workers", 0, "simulation workers, 0 means GOMAXPROCS")
	fs.IntVar(&o.top, "top", 15, "players to print")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func main() {
	log := logger.New(os.Getenv("APP_ENV"))
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, o, os.Stdout, log); err != nil {
		log.Fatal().Err(err).Msg("forecast failed")
	}
}

func run(ctx context.Context, o options, w io.Writer, log zerolog.Logger) error {
	t, err := bracket.LoadTemplate(o.template)
	if err != nil {
		return err
	}
	snap, err := catalog.ReadSnapshot(o.snapshot)
	if err != nil {
		return err
	}
	universe := bracket.NewUniverse(snap.Venues, snap.Teams, snap.Players)
	if err := bracket.Validate(t, universe, o.scenarios, o.maxScenarios); err != nil {
		return err
	}
	cat, err := snap.Catalog()
	if err != nil {
		return err
	}
	points := reward.DefaultPoints()
	if o.points != "" {
		if points, err = reward.LoadPoints(o.points); err != nil {
			return err
		}
	}

	sim := &bracket.Simulator{
		Engine:       &engine.Simulator{Catalog: cat, Seed: o.seed, Workers: o.workers, Logger: log},
		MaxScenarios: o.maxScenarios,
		Scorer:       points,
		Logger:       log,
	}
	start := time.Now()
	out, err := sim.Simulate(ctx, t, o.scenarios)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Simulation time: %v (%d scenarios, %d balls)\n\n", time.Since(start).Round(time.Millisecond), out.Scenarios, len(out.Balls))
	return report(w, out, o.top)
}

func report(w io.Writer, out *bracket.Outcome, top int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintln(tw, "Team\tTitles\tProbability")
	for _, c := range out.ChampionOdds() {
		fmt.Fprintf(tw, "%s\t%d\t%5.1f%%\n", c.Team, c.Titles, 100*c.Probability)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintln(tw, "#\tPlayer\tTeam\tMean\tMin\tMax")
	for i, p := range out.Players {
		if i == top {
			break
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, p.Player, p.Team, p.Mean.StringFixed(1), p.Min.StringFixed(0), p.Max.StringFixed(0))
	}
	return tw.Flush()
}
