package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:        "access-secret",
		RefreshSecretKey: "refresh-secret",
		AccessTokenExp:   15 * time.Minute,
		RefreshTokenExp:  24 * time.Hour,
		TokenIssuer:      "classroom",
	})
}

func testUser() *models.User {
	return &models.User{
		ID:        uuid.New(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@school.test",
		Type:      models.UserTypeTeacher,
	}
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestService()
	user := testUser()

	pair, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.Equal(t, 900, pair.ExpiresIn)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	p, err := claims.Principal()
	require.NoError(t, err)
	assert.Equal(t, models.Principal{
		ID:        user.ID,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@school.test",
		Type:      models.UserTypeTeacher,
	}, p)

	_, err = svc.ValidateRefreshToken(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestJWTService_TokensAreNotInterchangeable(t *testing.T) {
	svc := newTestService()
	pair, err := svc.GenerateTokenPair(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestService()
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	pair, err := svc.GenerateTokenPair(testUser())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestJWTService_Malformed(t *testing.T) {
	svc := newTestService()

	_, err := svc.ValidateAccessToken("")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	_, err = svc.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, apperrors.ErrInvalidFormat)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{header: "bearer abc", want: "abc"},
		{header: "", wantErr: apperrors.ErrTokenNotFound},
		{header: "Basic dXNlcg==", wantErr: apperrors.ErrInvalidFormat},
	}
	for _, tc := range tests {
		t.Run(tc.header, func(t *testing.T) {
			got, err := ExtractBearerToken(tc.header)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPasswordWithCost("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
