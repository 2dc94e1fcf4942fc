package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/config"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "auth-service-test-secret-0123456789abcdef"
	cfg.JWT.ExpireHours = 24

	svc := NewAuthService(cfg, repository.NewAdminRepository(db))
	return svc, db
}

func createTestAdmin(t *testing.T, svc *AuthService, db *gorm.DB, username, password string) *models.Admin {
	t.Helper()
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.Admin{Username: username, PasswordHash: hash}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func TestAuthServiceLogin(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createTestAdmin(t, svc, db, "root", "super-secret")

	admin, token, expiresAt, err := svc.Login("root", "super-secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}
	if admin.LastLoginAt == nil {
		t.Fatalf("expected last login timestamp to be set")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse jwt failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "root" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthServiceLoginInvalidCredentials(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createTestAdmin(t, svc, db, "root", "super-secret")

	if _, _, _, err := svc.Login("root", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials, got: %v", err)
	}
	if _, _, _, err := svc.Login("nobody", "super-secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown admin want ErrInvalidCredentials, got: %v", err)
	}
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	admin := createTestAdmin(t, svc, db, "root", "old-password")

	if err := svc.ChangePassword(admin.ID, "bad-guess", "new-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong old password want ErrInvalidCredentials, got: %v", err)
	}

	if err := svc.ChangePassword(admin.ID, "old-password", "new-password"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, _, _, err := svc.Login("root", "old-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should be rejected after change, got: %v", err)
	}
	if _, _, _, err := svc.Login("root", "new-password"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestAuthServiceParseJWTRejectsTampered(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	admin := createTestAdmin(t, svc, db, "root", "super-secret")

	token, _, err := svc.GenerateJWT(admin)
	if err != nil {
		t.Fatalf("generate jwt failed: %v", err)
	}
	if _, err := svc.ParseJWT(token + "x"); err == nil {
		t.Fatalf("expected error for tampered token")
	}
	if _, err := svc.ParseJWT("not-a-token"); err == nil {
		t.Fatalf("expected error for garbage token")
	}
}
