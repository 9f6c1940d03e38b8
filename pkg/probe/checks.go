package probe

import (
	"context"
	"fmt"
	"net"
	"os"

	"travelglobe/pkg/store"
)

// Pinger is satisfied by *sql.DB and *db.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Database checks that the timeline database answers.
func Database(p Pinger) Probe {
	return Probe{
		Name:     "database",
		Critical: true,
		Check: func(ctx context.Context) error {
			return p.PingContext(ctx)
		},
	}
}

// SeedFile checks that a configured seed fixture parses. A missing file passes.
func SeedFile(path string) Probe {
	return Probe{
		Name: "seed",
		Check: func(ctx context.Context) error {
			if path == "" {
				return nil
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				return nil
			}
			_, err := store.LoadYAML(path)
			return err
		},
	}
}

// ListenAddr checks that the server address can be bound.
func ListenAddr(addr string) Probe {
	return Probe{
		Name:     "listen",
		Critical: true,
		Check: func(ctx context.Context) error {
			var lc net.ListenConfig
			l, err := lc.Listen(ctx, "tcp", addr)
			if err != nil {
				return fmt.Errorf("cannot bind %s: %w", addr, err)
			}
			return l.Close()
		},
	}
}
