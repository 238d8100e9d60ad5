package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/nexovate-backend/internal/data/repos"
	"github.com/yungbote/nexovate-backend/internal/data/repos/testutil"
	apperrors "github.com/yungbote/nexovate-backend/internal/pkg/errors"
	"github.com/yungbote/nexovate-backend/internal/platform/ctxutil"
)

func newAuth(t *testing.T) (AuthService, context.Context) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	return NewAuthService(tx, log, repos.NewUserRepo(tx, log), "test-secret", time.Hour), context.Background()
}

func TestRegisterLoginMe(t *testing.T) {
	svc, ctx := newAuth(t)
	email := "Ada." + uuid.NewString()[:6] + "@Example.com"

	u, err := svc.Register(ctx, RegisterInput{Email: email, Password: "correct horse", FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", u.Password)

	_, err = svc.Register(ctx, RegisterInput{Email: email, Password: "another one", FirstName: "A", LastName: "L"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Login(ctx, email, "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, err := svc.Login(ctx, email, "correct horse")
	require.NoError(t, err)

	authed, err := svc.SetContextFromToken(ctx, token)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(authed)
	require.NotNil(t, rd)
	assert.Equal(t, u.ID, rd.UserID)

	me, err := svc.Me(authed)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc, ctx := newAuth(t)
	for _, in := range []RegisterInput{
		{Email: "not-an-email", Password: "long enough", FirstName: "A", LastName: "B"},
		{Email: "a@b.co", Password: "short", FirstName: "A", LastName: "B"},
		{Email: "a@b.co", Password: "long enough", FirstName: " ", LastName: "B"},
	} {
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	}
}

func TestSetContextFromTokenRejects(t *testing.T) {
	svc, ctx := newAuth(t)

	_, err := svc.SetContextFromToken(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = svc.SetContextFromToken(ctx, "garbage")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	s, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.SetContextFromToken(ctx, s)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()}})
	s, err = forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.SetContextFromToken(ctx, s)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
