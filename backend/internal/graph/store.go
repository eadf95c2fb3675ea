package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"friendnet/backend/internal/social"
	"friendnet/backend/pkg/logger"
)

// Store is the Neo4j-backed implementation of social.Store. Users live as
// :Person nodes and friendships as undirected FRIENDS_WITH relationships, so
// the stored shape mirrors the domain graph. All invariants are enforced by
// the engine above; this adapter only moves records.
type Store struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewStore creates a new Neo4j store adapter.
func NewStore(driver neo4j.DriverWithContext) *Store {
	return &Store{
		driver: driver,
		logger: logger.Get(),
	}
}

// Close closes the Neo4j driver connection.
func (s *Store) Close() error {
	return s.driver.Close(context.Background())
}

// Insert creates a fresh :Person node. Callers guarantee the id is new.
func (s *Store) Insert(ctx context.Context, user *social.User) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		CREATE (p:Person {
			id: $id,
			username: $username,
			age: $age,
			hobbies: $hobbies,
			created_at: datetime($createdAt),
			popularity_score: $score
		})
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"id":        user.ID,
		"username":  user.Username,
		"age":       user.Age,
		"hobbies":   user.Hobbies,
		"createdAt": user.CreatedAt.UTC().Format(time.RFC3339),
		"score":     user.PopularityScore,
	})
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}

	s.logger.Debug("Person inserted", zap.String("user_id", user.ID))
	return nil
}

// Get loads one user with their friend ids, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, id string) (*social.User, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (p:Person {id: $id})
		OPTIONAL MATCH (p)-[:FRIENDS_WITH]-(f:Person)
		RETURN p.id as id, p.username as username, p.age as age,
		       p.hobbies as hobbies, p.created_at as created_at,
		       p.popularity_score as popularity_score,
		       collect(f.id) as friend_ids
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"id": id,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to fetch record: %w", err)
		}
		return nil, nil
	}

	return userFromRecord(result.Record()), nil
}

// Save writes the user's properties and reconciles FRIENDS_WITH
// relationships against the record's friend set, both inside one
// transaction so readers never see a torn record.
func (s *Store) Save(ctx context.Context, user *social.User) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		setQuery := `
			MATCH (p:Person {id: $id})
			SET p.username = $username,
			    p.age = $age,
			    p.hobbies = $hobbies,
			    p.popularity_score = $score
			WITH p
			OPTIONAL MATCH (p)-[r:FRIENDS_WITH]-(o:Person)
			WHERE NOT o.id IN $friendIDs
			DELETE r
		`
		if _, err := tx.Run(ctx, setQuery, map[string]interface{}{
			"id":        user.ID,
			"username":  user.Username,
			"age":       user.Age,
			"hobbies":   user.Hobbies,
			"score":     user.PopularityScore,
			"friendIDs": user.Friends,
		}); err != nil {
			return nil, err
		}

		linkQuery := `
			MATCH (p:Person {id: $id})
			UNWIND $friendIDs as fid
			MATCH (o:Person {id: fid})
			MERGE (p)-[:FRIENDS_WITH]-(o)
		`
		if _, err := tx.Run(ctx, linkQuery, map[string]interface{}{
			"id":        user.ID,
			"friendIDs": user.Friends,
		}); err != nil {
			return nil, err
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to save person: %w", err)
	}

	return nil
}

// Remove deletes the node. The engine only deletes friendless users, but
// DETACH keeps the store safe against stray relationships.
func (s *Store) Remove(ctx context.Context, id string) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (p:Person {id: $id})
		DETACH DELETE p
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"id": id,
	})
	if err != nil {
		return fmt.Errorf("failed to remove person: %w", err)
	}

	s.logger.Debug("Person removed", zap.String("user_id", id))
	return nil
}

// List returns every user in creation order.
func (s *Store) List(ctx context.Context) ([]*social.User, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (p:Person)
		OPTIONAL MATCH (p)-[:FRIENDS_WITH]-(f:Person)
		WITH p, collect(f.id) as friend_ids
		RETURN p.id as id, p.username as username, p.age as age,
		       p.hobbies as hobbies, p.created_at as created_at,
		       p.popularity_score as popularity_score,
		       friend_ids
		ORDER BY p.created_at, p.id
	`

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}

	var users []*social.User
	for result.Next(ctx) {
		users = append(users, userFromRecord(result.Record()))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	return users, nil
}

// EnsureConstraints creates the id and username uniqueness constraints. The
// engine enforces username uniqueness itself; the constraint is a backstop
// for writers outside this process.
func (s *Store) EnsureConstraints(ctx context.Context) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT person_id_unique IF NOT EXISTS FOR (p:Person) REQUIRE p.id IS UNIQUE",
		"CREATE CONSTRAINT person_username_unique IF NOT EXISTS FOR (p:Person) REQUIRE p.username IS UNIQUE",
	}
	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("failed to create constraint: %w", err)
		}
	}
	return nil
}

func userFromRecord(record *neo4j.Record) *social.User {
	return &social.User{
		ID:              getStringFromRecord(record, "id"),
		Username:        getStringFromRecord(record, "username"),
		Age:             getIntFromRecord(record, "age"),
		Hobbies:         getStringSliceFromRecord(record, "hobbies"),
		Friends:         getStringSliceFromRecord(record, "friend_ids"),
		CreatedAt:       getTimeFromRecord(record, "created_at"),
		PopularityScore: getFloat64FromRecord(record, "popularity_score"),
	}
}
