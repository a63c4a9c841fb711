package auth

import (
	"context"
	"testing"
	"time"

	"go_trial/cravewave/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryLogin(t *testing.T) {
	d := NewDirectory(SeedUsers())
	ctx := context.Background()

	u, err := d.Login(ctx, "  Rest@Crave.com ")
	require.NoError(t, err)
	assert.Equal(t, "r1", u.ID)
	assert.Equal(t, models.RoleRestaurantPartner, u.Role)
	assert.Equal(t, "res1", u.RestaurantID)

	_, err = d.Login(ctx, "nobody@crave.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = d.Login(ctx, "")
	assert.ErrorIs(t, err, models.ErrValidation)

	got, err := d.User(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Speedy Driver", got.Name)
}

func TestSeedUsersCoverEveryRole(t *testing.T) {
	seen := map[models.Role]bool{}
	for _, u := range SeedUsers() {
		seen[u.Role] = true
	}
	for _, r := range models.Roles() {
		assert.True(t, seen[r], r.String())
	}
}

func newTestIssuer(at time.Time) *Issuer {
	i := NewIssuer("test-secret", time.Hour, 24*time.Hour)
	i.now = func() time.Time { return at }
	return i
}

func TestIssueAndParse(t *testing.T) {
	i := newTestIssuer(time.Now())
	actor := models.Actor{UserID: "r1", Role: models.RoleRestaurantPartner, RestaurantID: "res1"}

	tokens, err := i.Issue(actor)
	require.NoError(t, err)

	got, err := i.Parse(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, actor, got)

	_, err = i.Parse(tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejects(t *testing.T) {
	issued := time.Now()
	i := newTestIssuer(issued)
	tokens, err := i.Issue(models.Actor{UserID: "u1", Role: models.RoleCustomer})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := newTestIssuer(issued.Add(2 * time.Hour))
		_, err := later.Parse(tokens.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewIssuer("another-secret", time.Hour, time.Hour)
		_, err := other.Parse(tokens.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := i.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  "x1",
			"role": "CHEF",
			"type": tokenAccess,
			"exp":  issued.Add(time.Hour).Unix(),
		})
		s, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = i.Parse(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRefresh(t *testing.T) {
	issued := time.Now()
	i := newTestIssuer(issued)
	actor := models.Actor{UserID: "u1", Role: models.RoleCustomer}
	tokens, err := i.Issue(actor)
	require.NoError(t, err)

	// access token has expired, refresh token has not
	later := newTestIssuer(issued.Add(2 * time.Hour))
	fresh, got, err := later.Refresh(tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, actor, got)

	parsed, err := later.Parse(fresh.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, actor, parsed)

	_, _, err = later.Refresh(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
