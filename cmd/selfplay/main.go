// Selfplay pits two difficulty tiers against each other for tuning and
// regression checks: if a change makes the hard tier lose to the easy
// tier, something broke.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"hexmind/engine"
	"hexmind/game"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	redTier := flag.String("red", "hard", "tier playing red (easy|medium|hard)")
	blueTier := flag.String("blue", "medium", "tier playing blue (easy|medium|hard)")
	games := flag.Int("games", 10, "number of games to play")
	csvPath := flag.String("csv", "", "write per-game records to this CSV file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level)

	red, err := parseTier(*redTier)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -red flag")
	}
	blue, err := parseTier(*blueTier)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -blue flag")
	}

	var writer *recordWriter
	if *csvPath != "" {
		writer, err = newRecordWriter(*csvPath)
		if err != nil {
			log.Fatal().Err(err).Msg("opening record file")
		}
		defer writer.close()
	}

	redWins, blueWins := 0, 0
	for i := 1; i <= *games; i++ {
		winner, moves, elapsed := runGame(red, blue)
		switch winner {
		case game.Red:
			redWins++
		case game.Blue:
			blueWins++
		}
		log.Info().
			Int("game", i).
			Str("winner", winner.String()).
			Int("moves", moves).
			Dur("elapsed", elapsed).
			Msg("game over")
		if writer != nil {
			if err := writer.write(gameRecord{
				id:      i,
				red:     red,
				blue:    blue,
				winner:  winner,
				moves:   moves,
				elapsed: elapsed,
			}); err != nil {
				log.Fatal().Err(err).Msg("writing game record")
			}
		}
	}

	fmt.Printf("red (%s): %d wins, blue (%s): %d wins\n", red, redWins, blue, blueWins)
}

func runGame(redTier, blueTier engine.Tier) (game.CellState, int, time.Duration) {
	engines := map[game.CellState]*engine.Engine{
		game.Red:  engine.New(redTier),
		game.Blue: engine.New(blueTier),
	}
	tiers := map[game.CellState]engine.Tier{
		game.Red:  redTier,
		game.Blue: blueTier,
	}

	b := engine.NewSession()
	var history []string
	var lastMove *game.Move
	start := time.Now()
	moves := 0

	for engine.CheckWinner(b) == game.Empty {
		mover := b.ToMove()
		result := engines[mover].ComputeMove(context.Background(), engine.MoveRequest{
			Board:     game.Encode(b),
			LastMove:  lastMove,
			Tier:      tiers[mover],
			TurnCount: b.Turn(),
			History:   history,
		})
		if result.Move == nil {
			log.Warn().
				Strs("rationale", result.Rationale).
				Msg("no move produced; aborting game")
			break
		}

		next, err := engine.ApplyMove(b, *result.Move, mover)
		if err != nil {
			log.Fatal().Err(err).Msg("engine produced an illegal move")
		}
		b = next
		lastMove = result.Move
		history = append(history, game.Encode(b))
		moves++

		log.Debug().
			Str("mover", mover.String()).
			Str("move", result.Move.String()).
			Strs("rationale", result.Rationale).
			Int("visits", result.Visits).
			Float64("win_rate", result.WinRate).
			Msg("move played")
	}

	return engine.CheckWinner(b), moves, time.Since(start)
}

func parseTier(s string) (engine.Tier, error) {
	switch s {
	case "easy":
		return engine.TierEasy, nil
	case "medium":
		return engine.TierMedium, nil
	case "hard":
		return engine.TierHard, nil
	default:
		return 0, fmt.Errorf("unknown tier %q", s)
	}
}
