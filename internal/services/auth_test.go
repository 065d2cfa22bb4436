package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jrprasath/paperhouse-backend/internal/logger"
	pkgerrors "github.com/jrprasath/paperhouse-backend/internal/pkg/errors"
)

func testAuthService(t *testing.T) AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	svc, err := NewAuthService(logger.NewNop(), AuthConfig{
		AdminEmail:        "admin@paperhouse.example",
		AdminPasswordHash: string(hash),
		JWTSecretKey:      "test-secret",
		AccessTTL:         time.Minute,
	})
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func TestLoginAndVerifyRoundTrip(t *testing.T) {
	svc := testAuthService(t)
	token, expiresIn, err := svc.Login(context.Background(), "Admin@Paperhouse.example", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if expiresIn != 60 {
		t.Fatalf("expiresIn: want=60 got=%d", expiresIn)
	}
	actorID, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if actorID != "admin@paperhouse.example" {
		t.Fatalf("actor: got %q", actorID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := testAuthService(t)
	if _, _, err := svc.Login(context.Background(), "admin@paperhouse.example", "wrong"); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("wrong password: expected ErrUnauthorized, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "other@paperhouse.example", "hunter2"); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("unknown account: expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := testAuthService(t)
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.VerifyToken(token); !errors.Is(err, pkgerrors.ErrUnauthorized) {
			t.Fatalf("token %q: expected ErrUnauthorized, got %v", token, err)
		}
	}
}

func TestVerifyTokenRejectsForeignSignature(t *testing.T) {
	svc := testAuthService(t)
	foreign, _, err := foreignToken(t)
	if err != nil {
		t.Fatalf("foreignToken: %v", err)
	}
	if _, err := svc.VerifyToken(foreign); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for foreign signature, got %v", err)
	}
}

func foreignToken(t *testing.T) (string, int64, error) {
	t.Helper()
	svc, err := NewAuthService(logger.NewNop(), AuthConfig{
		AdminEmail:        "admin@paperhouse.example",
		AdminPasswordHash: mustHash(t, "hunter2"),
		JWTSecretKey:      "different-secret",
		AccessTTL:         time.Minute,
	})
	if err != nil {
		return "", 0, err
	}
	token, expiresIn, err := svc.Login(context.Background(), "admin@paperhouse.example", "hunter2")
	return token, expiresIn, err
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}
