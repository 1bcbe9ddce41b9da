package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	types "github.com/deenkids/deenkids-backend/internal/domain"
	pkgerrors "github.com/deenkids/deenkids-backend/internal/pkg/errors"
	"github.com/deenkids/deenkids-backend/internal/platform/logger"
	"github.com/deenkids/deenkids-backend/internal/requestdata"
)

func newTokenService(t *testing.T, accessTTL time.Duration) *authService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return &authService{
		log:          log,
		jwtSecretKey: "test-secret",
		accessTTL:    accessTTL,
		refreshTTL:   24 * time.Hour,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTokenService(t, time.Hour)
	user := &types.User{ID: uuid.New(), Email: "ustadh@test.dev", Role: types.RoleScholar}

	token, err := svc.generateAccessToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("set context: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		t.Fatal("no request data attached")
	}
	if rd.UserID != user.ID {
		t.Fatalf("user id = %s, want %s", rd.UserID, user.ID)
	}
	if rd.Role != types.RoleScholar {
		t.Fatalf("role = %q, want scholar", rd.Role)
	}
	if rd.Email != "ustadh@test.dev" {
		t.Fatalf("email = %q, want ustadh@test.dev", rd.Email)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := newTokenService(t, -time.Minute)
	user := &types.User{ID: uuid.New(), Role: types.RoleGuardian}

	token, err := svc.generateAccessToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := svc.SetContextFromToken(context.Background(), token); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("expired token: err = %v, want unauthorized", err)
	}
}

func TestForeignSigningKeyRejected(t *testing.T) {
	svc := newTokenService(t, time.Hour)

	claims := JWTClaims{
		Role: types.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.SetContextFromToken(context.Background(), forged); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("forged token: err = %v, want unauthorized", err)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	svc := newTokenService(t, time.Hour)
	if _, err := svc.SetContextFromToken(context.Background(), ""); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("empty token: err = %v, want unauthorized", err)
	}
}
