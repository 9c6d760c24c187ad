package main

import (
	"context"
	"log"
	"time"

	"github.com/hearth-collective/hearth/internal/pkg/config"
	"github.com/hearth-collective/hearth/internal/pkg/counts"
	"github.com/hearth-collective/hearth/internal/pkg/database"
	"github.com/hearth-collective/hearth/internal/pkg/env"
	"github.com/hearth-collective/hearth/internal/pkg/indexer"
	"github.com/hearth-collective/hearth/internal/pkg/recordlog"
)

// rebuild drops the derived index and counters and refolds them from the
// record log. Run it after a crash between a log append and its projection,
// or after changing the collective configuration.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()

	collectives, err := config.LoadCollectives()
	if err != nil {
		log.Fatalf("could not load collective configuration: %v", err)
	}

	db := database.GetDB()
	ctx := context.Background()

	if err := indexer.Reset(ctx, db); err != nil {
		log.Fatalf("could not reset index: %v", err)
	}
	if err := counts.Reset(ctx, db); err != nil {
		log.Fatalf("could not reset counters: %v", err)
	}

	ix := indexer.New(collectives.Names(), indexer.NewEntryStore(db), counts.NewAggregator(db))
	store := recordlog.NewStore(db)

	start := time.Now()
	if err := store.Replay(ctx, ix.Apply); err != nil {
		log.Fatalf("replay failed: %v", err)
	}

	log.Printf("rebuild finished in %s", time.Since(start).Round(time.Millisecond))
}
