package store

import (
	"context"
	"testing"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/db"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "somchai", "hash123", model.RoleDeptHead)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Role != model.RoleDeptHead {
		t.Errorf("expected role dept_head, got %q", user.Role)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "somchai" {
		t.Errorf("expected username 'somchai', got %q", got.Username)
	}
}

func TestCreateUserUnknownRole(t *testing.T) {
	database := db.NewTestDB(t)

	if _, err := CreateUser(context.Background(), database, "x", "hash", "manager"); err == nil {
		t.Error("expected error for unknown role")
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
	if user == nil || user.Username != "alice" {
		t.Fatalf("expected alice, got %+v", user)
	}

	missing, err := GetUserByUsername(ctx, database, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestDeletedUsernameCanBeReused(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _ := CreateUser(ctx, database, "store1", "hash", model.RoleStoreKeeper)
	if err := DeleteUser(ctx, database, first.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := CreateUser(ctx, database, "store1", "hash", model.RoleStoreKeeper); err != nil {
		t.Fatalf("expected username reuse after delete, got %v", err)
	}

	users, _ := ListUsers(ctx, database)
	if len(users) != 1 {
		t.Errorf("expected 1 active user, got %d", len(users))
	}
}

func TestUpdateUserRoleAndPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "pwuser", "oldhash", model.RoleUser)

	if err := UpdateUserRole(ctx, database, user.ID, model.RolePurchasing); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if err := UpdateUserPassword(ctx, database, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.Role != model.RolePurchasing {
		t.Errorf("expected role purchasing, got %q", got.Role)
	}
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}

	if err := UpdateUserPassword(ctx, database, 9999, "x"); err == nil {
		t.Error("expected error for missing user")
	}
}
