package graph

import (
	"context"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"friendnet/backend/internal/social"
)

// These tests require a running Neo4j instance on bolt://localhost:7687
// with the default neo4j/password credentials.
func TestStore_InsertGetRemove(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, cleanup := createTestDriver(t)
	defer cleanup()

	store := NewStore(driver)
	id := "test-user-" + time.Now().Format("20060102150405.000")
	defer deletePerson(t, driver, id)

	user := &social.User{
		ID:              id,
		Username:        "store-test-" + id,
		Age:             30,
		Hobbies:         []string{"coding", "gaming"},
		Friends:         []string{},
		CreatedAt:       time.Now().UTC().Truncate(time.Second),
		PopularityScore: 0,
	}

	if err := store.Insert(ctx, user); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for existing user")
	}
	if got.Username != user.Username {
		t.Errorf("Expected username %q, got %q", user.Username, got.Username)
	}
	if len(got.Hobbies) != 2 {
		t.Errorf("Expected 2 hobbies, got %d", len(got.Hobbies))
	}

	if err := store.Remove(ctx, id); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	gone, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after remove failed: %v", err)
	}
	if gone != nil {
		t.Error("Expected nil after remove")
	}
}

func TestStore_SaveReconcilesFriendships(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, cleanup := createTestDriver(t)
	defer cleanup()

	store := NewStore(driver)
	stamp := time.Now().Format("20060102150405.000")
	aID, bID := "test-a-"+stamp, "test-b-"+stamp
	defer deletePerson(t, driver, aID)
	defer deletePerson(t, driver, bID)

	a := &social.User{ID: aID, Username: "a-" + stamp, Age: 30, Hobbies: []string{}, Friends: []string{}, CreatedAt: time.Now().UTC()}
	b := &social.User{ID: bID, Username: "b-" + stamp, Age: 30, Hobbies: []string{}, Friends: []string{}, CreatedAt: time.Now().UTC()}
	if err := store.Insert(ctx, a); err != nil {
		t.Fatalf("Insert a failed: %v", err)
	}
	if err := store.Insert(ctx, b); err != nil {
		t.Fatalf("Insert b failed: %v", err)
	}

	// link
	a.Friends = []string{bID}
	b.Friends = []string{aID}
	if err := store.Save(ctx, a); err != nil {
		t.Fatalf("Save a failed: %v", err)
	}
	if err := store.Save(ctx, b); err != nil {
		t.Fatalf("Save b failed: %v", err)
	}

	gotB, err := store.Get(ctx, bID)
	if err != nil {
		t.Fatalf("Get b failed: %v", err)
	}
	// the relationship is undirected, saving a already made it visible from b
	if len(gotB.Friends) != 1 || gotB.Friends[0] != aID {
		t.Errorf("Expected b to have friend %s, got %v", aID, gotB.Friends)
	}

	// unlink via reconciliation
	a.Friends = []string{}
	if err := store.Save(ctx, a); err != nil {
		t.Fatalf("Save a failed: %v", err)
	}
	gotA, err := store.Get(ctx, aID)
	if err != nil {
		t.Fatalf("Get a failed: %v", err)
	}
	if len(gotA.Friends) != 0 {
		t.Errorf("Expected no friends after reconciliation, got %v", gotA.Friends)
	}
}

func createTestDriver(t *testing.T) (neo4j.DriverWithContext, func()) {
	t.Helper()
	uri := "bolt://localhost:7687"
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth("neo4j", "password", ""))
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		t.Fatalf("Failed to verify connectivity: %v", err)
	}

	return driver, func() { driver.Close(context.Background()) }
}

func deletePerson(t *testing.T, driver neo4j.DriverWithContext, id string) {
	t.Helper()
	ctx := context.Background()
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	_, _ = session.Run(ctx, "MATCH (p:Person {id: $id}) DETACH DELETE p", map[string]interface{}{"id": id})
}
