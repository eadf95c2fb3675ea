package main

import (
	"context"
	"flag"
	"fmt"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"friendnet/backend/internal/graph"
	"friendnet/backend/internal/social"
	"friendnet/backend/pkg/config"
	"friendnet/backend/pkg/logger"
)

type seedUser struct {
	username string
	age      int
	hobbies  []string
	friends  []string // usernames, linked after creation
}

var seedUsers = []seedUser{
	{"alice", 28, []string{"coding", "gaming", "hiking"}, []string{"bob", "carol"}},
	{"bob", 34, []string{"coding", "music"}, []string{"carol"}},
	{"carol", 25, []string{"gaming", "music", "photography"}, nil},
	{"dave", 41, []string{"hiking", "photography"}, []string{"alice"}},
	{"erin", 19, []string{"gaming", "sports"}, nil},
}

func main() {
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting demo data seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.StoreBackend != config.StoreNeo4j {
		log.Fatal("Seeding only makes sense against a persistent backend, set STORE_BACKEND=neo4j")
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	store := graph.NewStore(driver)

	log.Info("Creating constraints...")
	if err := store.EnsureConstraints(ctx); err != nil {
		log.Warn("Failed to create some constraints (may already exist)", zap.Error(err))
	}

	service := social.NewService(store, social.NewProjector())

	// Create users concurrently; the engine serializes the writes and the
	// username check, so duplicate seeds fail cleanly on re-runs.
	ids := make(map[string]string, len(seedUsers))
	var mu sync.Mutex
	var g errgroup.Group
	for _, su := range seedUsers {
		su := su
		g.Go(func() error {
			user, err := service.CreateUser(ctx, social.UserInput{
				Username: su.username,
				Age:      su.age,
				Hobbies:  su.hobbies,
			})
			if err != nil {
				return fmt.Errorf("create %s: %w", su.username, err)
			}
			mu.Lock()
			ids[su.username] = user.ID
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal("Failed to seed users", zap.Error(err))
	}
	log.Info("Users created", zap.Int("count", len(ids)))

	// Friendships are sequential: each link touches two users.
	linked := 0
	for _, su := range seedUsers {
		for _, friend := range su.friends {
			if err := service.Link(ctx, ids[su.username], ids[friend]); err != nil {
				log.Fatal("Failed to link users",
					zap.String("user", su.username),
					zap.String("friend", friend),
					zap.Error(err),
				)
			}
			linked++
		}
	}
	log.Info("Friendships created", zap.Int("count", linked))

	stats, err := service.Stats(ctx)
	if err != nil {
		log.Fatal("Failed to read stats", zap.Error(err))
	}
	log.Info("Seeding complete",
		zap.Int("total_users", stats.TotalUsers),
		zap.Int("total_friendships", stats.TotalFriendships),
		zap.Float64("average_score", stats.AverageScore),
	)
}
