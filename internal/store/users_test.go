package store

import (
	"context"
	"testing"

	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "testuser", "hash123", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %q", user.Username)
	}
	if user.Role != model.RoleUser {
		t.Errorf("expected role 'user', got %q", user.Role)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %q", got.Username)
	}
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "alice", "hash", model.RoleAdmin)

	user, err := GetUserByUsername(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.Username != "alice" {
		t.Errorf("expected 'alice', got %q", user.Username)
	}

	missing, err := GetUserByUsername(ctx, database, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestCountUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	n, err := CountUsers(ctx, database)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 users, got %d", n)
	}

	CreateUser(ctx, database, "alice", "hash", model.RoleAdmin)
	CreateUser(ctx, database, "bob", "hash", model.RoleUser)

	n, _ = CountUsers(ctx, database)
	if n != 2 {
		t.Errorf("expected 2 users, got %d", n)
	}
}

func TestListUsersAndUpdatePassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	bob, _ := CreateUser(ctx, database, "bob", "hash", model.RoleUser)
	CreateUser(ctx, database, "alice", "hash", model.RoleAdmin)

	users, err := ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].Username != "alice" {
		t.Errorf("expected alice first of 2 users, got %+v", users)
	}

	if err := UpdateUserPassword(ctx, database, bob.ID, "new-hash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}
	got, _ := GetUser(ctx, database, bob.ID)
	if got.PasswordHash != "new-hash" {
		t.Errorf("expected updated hash, got %q", got.PasswordHash)
	}
}
