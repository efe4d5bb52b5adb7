package sink

import (
	"context"
	"fmt"

	"github.com/jfmyers9/albumlog/internal/album"
	"github.com/jfmyers9/albumlog/internal/config"
	"github.com/rs/zerolog"
)

// Open returns the sink selected by cfg.Sink.Kind.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Sink, error) {
	switch cfg.Sink.Kind {
	case config.SinkSQLite:
		s, err := OpenSQLite(ctx, cfg.Sink.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.SinkMySQL:
		s, err := OpenMySQL(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.SinkJSONL, "":
		s, err := OpenFileStore(cfg.Sink.Dir, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.SinkS3:
		s, err := OpenObjectStore(ctx, cfg.ObjectStore, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.SinkMemory:
		return NewMemoryStore(), nil
	default:
		return nil, album.SinkUnavailable("open", fmt.Errorf("unknown sink kind %q", cfg.Sink.Kind))
	}
}
