// Command seed populates the document store with catalog and tournament
// fixtures for local development.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omgplay/arcade/internal/domain/model"
	"github.com/omgplay/arcade/pkg/logger"
)

const defaultTimeout = 30 * time.Second

func main() {
	var (
		uri      = flag.String("uri", "mongodb://localhost:27017", "MongoDB connection string")
		database = flag.String("db", "OMG", "Database name")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Named("seed")

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*uri))
	if err != nil {
		log.Error(ctx, "connect failed", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(*database)
	now := time.Now()

	categories := []interface{}{
		model.Category{ID: 1, Name: "Arcade", CreatedAt: now},
		model.Category{ID: 2, Name: "Puzzle", CreatedAt: now},
		model.Category{ID: 3, Name: "Racing", CreatedAt: now},
	}
	games := []interface{}{
		model.Game{ID: 101, Name: "Neon Runner", BundleURL: "https://cdn.example.com/bundles/neon-runner", CategoryNames: []string{"Arcade", "Racing"}, ImageURL: "https://cdn.example.com/img/neon-runner.png"},
		model.Game{ID: 102, Name: "Block Drop", BundleURL: "https://cdn.example.com/bundles/block-drop", CategoryNames: []string{"Puzzle"}, ImageURL: "https://cdn.example.com/img/block-drop.png"},
	}
	bundles := []interface{}{
		model.Bundle{ID: 1, Name: "starter", URL: "https://cdn.example.com/bundles/starter"},
	}
	tournaments := []interface{}{
		model.Tournament{Name: "Weekly Neon Cup", GameName: "Neon Runner", Prizes: []string{"1000 coins", "500 coins", "250 coins"}, WeekType: model.WeekCurrent},
		model.Tournament{Name: "Block Masters", GameName: "Block Drop", Prizes: []string{"800 coins", "400 coins"}, WeekType: model.WeekLast},
	}

	for col, docs := range map[string][]interface{}{
		"category":    categories,
		"games":       games,
		"bundles":     bundles,
		"tournaments": tournaments,
	} {
		// Idempotent-ish: skip collections that already hold documents.
		n, err := db.Collection(col).CountDocuments(ctx, bson.M{})
		if err != nil {
			log.Error(ctx, "count failed", logger.String("collection", col), logger.Error(err))
			os.Exit(1)
		}
		if n > 0 {
			log.Info(ctx, "collection already seeded", logger.String("collection", col), logger.Int64("count", n))
			continue
		}
		if _, err := db.Collection(col).InsertMany(ctx, docs); err != nil {
			log.Error(ctx, "insert failed", logger.String("collection", col), logger.Error(err))
			os.Exit(1)
		}
		log.Info(ctx, "seeded collection", logger.String("collection", col), logger.Int("count", len(docs)))
	}
}
