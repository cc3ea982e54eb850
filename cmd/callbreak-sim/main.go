// Command callbreak-sim plays bot-only games and prints how each seat fared.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prasantadh/callbreak-np/internal/app"
	"github.com/prasantadh/callbreak-np/internal/bot"
	"github.com/prasantadh/callbreak-np/internal/domain"
)

var (
	games    = flag.Int("games", 100, "Number of games to play.")
	seed     = flag.Int64("seed", 0, "Random seed; 0 picks one from the clock.")
	level    = flag.String("level", "good", "Bot level for every seat: simple, good or smart.")
	script   = flag.String("script", "", "Lua bot script to seat in seat 0.")
	logLevel = flag.String("log_level", "warn", "Log level: debug, info, warn or error.")
)

// seatStats accumulates counts for one seat across games.
type seatStats struct {
	name   string
	rounds int
	made   int
	calls  int
	tricks int
}

func main() {
	flag.Parse()
	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	}

	stats, err := simulate(logger)
	if err != nil {
		logger.WithError(err).Fatal("simulation failed")
	}
	report(stats)
}

func simulate(logger *logrus.Logger) ([domain.NumSeats]seatStats, error) {
	var stats [domain.NumSeats]seatStats
	lvl, err := bot.ParseLevel(*level)
	if err != nil {
		return stats, err
	}
	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	logger.WithField("seed", s).Info("starting simulation")
	rng := rand.New(rand.NewSource(s))

	for g := range *games {
		host := app.NewHost(rand.New(rand.NewSource(rng.Int63())), app.HostOptions{Logger: logger.WithField("game", g)})
		for seat := range domain.NumSeats {
			id := bot.GetBotIdentity(seat)
			opts := bot.AgentOptions{Logger: logger}
			if seat == 0 && *script != "" {
				opts.Script = *script
			}
			a, err := bot.NewBotAgent(id, lvl, opts)
			if err != nil {
				return stats, err
			}
			if err := host.AddAgent(id.UserID, a); err != nil {
				return stats, err
			}
			stats[seat].name = id.DisplayName
			if opts.Script != "" {
				stats[seat].name += " (script)"
			}
		}
		if err := host.Run(context.Background()); err != nil {
			return stats, fmt.Errorf("game %d: %w", g, err)
		}
		for _, r := range host.Summary() {
			for seat := range domain.NumSeats {
				st := &stats[seat]
				st.rounds++
				st.calls += r.Calls[seat]
				st.tricks += r.TricksWon[seat]
				if r.TricksWon[seat] >= r.Calls[seat] {
					st.made++
				}
			}
		}
	}
	return stats, nil
}

func report(stats [domain.NumSeats]seatStats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "seat\tplayer\trounds\tmade\tavg call\tavg tricks")
	for seat, st := range stats {
		if st.rounds == 0 {
			continue
		}
		n := float64(st.rounds)
		fmt.Fprintf(w, "%d\t%s\t%d\t%.1f%%\t%.2f\t%.2f\n",
			seat, st.name, st.rounds, 100*float64(st.made)/n, float64(st.calls)/n, float64(st.tricks)/n)
	}
	w.Flush()
}
