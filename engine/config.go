package engine

import (
	"time"

	"hexmind/book"
	"hexmind/searcher"
)

// Tier is the playing-strength setting exposed to the session.
type Tier int

const (
	TierEasy Tier = iota
	TierMedium
	TierHard
)

func (t Tier) String() string {
	switch t {
	case TierEasy:
		return "easy"
	case TierMedium:
		return "medium"
	case TierHard:
		return "hard"
	default:
		return "unknown"
	}
}

// Config bundles every knob one tier controls. Tiers differ in budget
// and deliberate imperfection, not in which components exist.
type Config struct {
	Episodes    int
	Budget      time.Duration
	Exploration float64
	Personality searcher.Personality
	RAVEK       float64 // non-positive disables RAVE
	WideningW   float64 // below 1 disables widening

	Book book.Config

	// EndgameThreshold enables the exact solver once the empty-cell
	// count falls to it; zero keeps the solver off for the tier.
	EndgameThreshold int
	EndgameDepth     int
	EndgameBudget    time.Duration

	// Workers above 1 fans the tree search out over isolated copies.
	Workers       int
	WorkerTimeout time.Duration

	// Blend lets the strategic analyzer override the tree move when a
	// candidate scores at or above BlendScore.
	Blend      bool
	BlendScore float64
}

// TierConfig returns the bundle for one tier. The numbers are tuning,
// not contract; only the ordering across tiers is load-bearing.
func TierConfig(t Tier) Config {
	switch t {
	case TierEasy:
		return Config{
			Episodes:    400,
			Exploration: 1.7,
			Personality: searcher.Unpredictable,
			RAVEK:       0,
			WideningW:   0,
			Book:        book.Config{MaxPieces: 4, TopK: 8, SkipProbability: 0.35},
		}
	case TierMedium:
		return Config{
			Episodes:         1500,
			Exploration:      1.4,
			Personality:      searcher.Balanced,
			RAVEK:            500,
			WideningW:        2.0,
			Book:             book.Config{MaxPieces: 6, TopK: 4, SkipProbability: 0.15},
			EndgameThreshold: 8,
			EndgameDepth:     8,
			EndgameBudget:    500 * time.Millisecond,
			Blend:            true,
			BlendScore:       55,
		}
	case TierHard:
		return Config{
			Episodes:         4000,
			Budget:           2 * time.Second,
			Exploration:      1.4,
			Personality:      searcher.Defensive,
			RAVEK:            500,
			WideningW:        2.0,
			Book:             book.Config{MaxPieces: 8, TopK: 2, SkipProbability: 0.02},
			EndgameThreshold: 15,
			EndgameDepth:     14,
			EndgameBudget:    1500 * time.Millisecond,
			Workers:          4,
			WorkerTimeout:    3 * time.Second,
			Blend:            true,
			BlendScore:       60,
		}
	default:
		return TierConfig(TierMedium)
	}
}

func (c Config) searchOptions(seed uint64) []searcher.Option {
	opts := []searcher.Option{
		searcher.WithExploration(c.Exploration),
		searcher.WithPersonality(c.Personality),
		searcher.WithRAVE(c.RAVEK),
		searcher.WithProgressiveWidening(c.WideningW),
		searcher.WithSeed(seed),
	}
	if c.Episodes > 0 {
		opts = append(opts, searcher.WithEpisodes(c.Episodes))
	}
	if c.Budget > 0 {
		opts = append(opts, searcher.WithDuration(c.Budget))
	}
	return opts
}
