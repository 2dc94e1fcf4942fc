package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/config"
	"github.com/cyberworld360/cyberworld-store/internal/constants"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserAuthServiceTest(t *testing.T) (*UserAuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:user_auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "user-auth-test-secret-0123456789abcdef"
	cfg.JWT.ExpireHours = 24
	return NewUserAuthService(cfg, repository.NewUserRepository(db)), db
}

func TestUserAuthRegisterAndLogin(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	user, err := svc.Register(RegisterInput{
		Email:    " Customer@Example.com ",
		Password: "secret123",
		Name:     "Ama",
		City:     "Accra",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "customer@example.com" {
		t.Fatalf("email should be normalized, got %s", user.Email)
	}
	if user.Role != constants.RoleCustomer {
		t.Fatalf("role want customer, got %s", user.Role)
	}
	if user.PasswordHash == "secret123" || user.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}

	loggedIn, token, expiresAt, err := svc.Login("customer@example.com", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("login returned wrong user: %d vs %d", loggedIn.ID, user.ID)
	}
	if token == "" || !expiresAt.After(time.Now()) {
		t.Fatalf("unexpected token/expiry: %q %s", token, expiresAt)
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email || claims.Role != constants.RoleCustomer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestUserAuthRegisterValidation(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	if _, err := svc.Register(RegisterInput{Email: "not-an-email", Password: "secret123"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("bad email want ErrInvalidEmail, got: %v", err)
	}
	if _, err := svc.Register(RegisterInput{Email: "a@example.com", Password: "short"}); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("short password want ErrPasswordTooShort, got: %v", err)
	}

	if _, err := svc.Register(RegisterInput{Email: "dup@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(RegisterInput{Email: "DUP@example.com", Password: "secret123"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate email want ErrEmailTaken, got: %v", err)
	}
}

func TestUserAuthLoginInvalidCredentials(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	if _, err := svc.Register(RegisterInput{Email: "b@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, _, err := svc.Login("b@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials, got: %v", err)
	}
	if _, _, _, err := svc.Login("missing@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email want ErrInvalidCredentials, got: %v", err)
	}
}
