package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"hexmind/engine"
	"hexmind/game"
)

type gameRecord struct {
	id      int
	red     engine.Tier
	blue    engine.Tier
	winner  game.CellState
	moves   int
	elapsed time.Duration
}

// recordWriter appends one CSV row per finished game for offline
// tuning comparisons.
type recordWriter struct {
	file *os.File
	csv  *csv.Writer
}

func newRecordWriter(path string) (*recordWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create record file: %w", err)
	}
	w := &recordWriter{file: f, csv: csv.NewWriter(f)}

	header := []string{"game", "red_tier", "blue_tier", "winner", "moves", "elapsed_ms"}
	if err := w.csv.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write record header: %w", err)
	}
	return w, nil
}

func (w *recordWriter) write(r gameRecord) error {
	row := []string{
		strconv.Itoa(r.id),
		r.red.String(),
		r.blue.String(),
		r.winner.String(),
		strconv.Itoa(r.moves),
		strconv.FormatInt(r.elapsed.Milliseconds(), 10),
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write game record: %w", err)
	}
	return nil
}

func (w *recordWriter) close() {
	w.csv.Flush()
	w.file.Close()
}
