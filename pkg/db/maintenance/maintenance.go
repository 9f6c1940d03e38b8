package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"travelglobe/pkg/store"
)

const seedStateKey = "timeline_seed_mtime"

// Run executes startup maintenance. It imports the seed fixture when it changed
// since the last import. A missing seed is not an error.
func Run(ctx context.Context, s store.Store, seedPath string) error {
	if seedPath == "" {
		return nil
	}
	slog.Info("Starting database maintenance...")

	imported, err := importSeed(ctx, s, seedPath, false)
	if err != nil {
		return fmt.Errorf("timeline seed import: %w", err)
	}
	if imported {
		slog.Info("Timeline seed imported", "path", seedPath)
	} else {
		slog.Debug("Timeline seed up to date", "path", seedPath)
	}
	return nil
}

// ForceImport imports the seed fixture regardless of the recorded modification time.
func ForceImport(ctx context.Context, s store.Store, seedPath string) error {
	_, err := importSeed(ctx, s, seedPath, true)
	return err
}

// importSeed imports a YAML timeline conditional on modification time.
func importSeed(ctx context.Context, s store.Store, path string, force bool) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		if force {
			return false, fmt.Errorf("seed file not found: %s", path)
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat seed: %w", err)
	}

	fileMTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	storedMTime, found := s.GetState(ctx, seedStateKey)
	if !force && found && storedMTime == fileMTime {
		return false, nil
	}

	if _, err := store.ImportYAML(ctx, s, path); err != nil {
		return false, err
	}

	if err := s.SetState(ctx, seedStateKey, fileMTime); err != nil {
		return true, fmt.Errorf("failed to update state: %w", err)
	}
	return true, nil
}
