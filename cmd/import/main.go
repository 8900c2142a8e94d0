package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/artsmartiaux/association-go/internal/config"
	"github.com/artsmartiaux/association-go/internal/database"
	"github.com/artsmartiaux/association-go/internal/services/sync"

	"github.com/sirupsen/logrus"
)

// import runs the Facebook synchronization pipeline against a JSON file of
// event payloads, for backfills and for re-importing after a tag fix:
//
//	go run ./cmd/import -file events.json
func main() {
	file := flag.String("file", "", "path to a JSON array of Facebook event payloads")
	strict := flag.Bool("strict", false, "roll back a whole event on any sub-step failure")
	flag.Parse()

	logger := logrus.New()

	if *file == "" {
		logger.Fatal("-file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatal("Failed to read payload file: ", err)
	}

	var payloads []sync.EventPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		logger.Fatal("Failed to parse payload file: ", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: ", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database: ", err)
	}

	syncer := sync.NewSyncer(db, logger, nil, *strict || cfg.SyncStrictMode)
	batch := syncer.SyncMany(context.Background(), payloads)

	for i, result := range batch.Results {
		if result.Success {
			continue
		}
		logger.WithFields(logrus.Fields{
			"index": i,
			"error": result.Error,
		}).Error("payload failed")
	}

	logger.Infof("Import finished: %d succeeded, %d failed", batch.SuccessCount, batch.ErrorCount)
	if batch.ErrorCount > 0 {
		os.Exit(1)
	}
}
