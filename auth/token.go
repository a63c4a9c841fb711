package auth

import (
	"errors"
	"fmt"
	"time"

	"go_trial/cravewave/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Issuer signs and verifies HS256 tokens carrying an Actor.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Issue returns an access and a refresh token for actor.
func (i *Issuer) Issue(actor models.Actor) (Tokens, error) {
	access, err := i.sign(actor, tokenAccess, i.accessTTL)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := i.sign(actor, tokenRefresh, i.refreshTTL)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// Parse verifies an access token.
func (i *Issuer) Parse(tokenString string) (models.Actor, error) {
	return i.parse(tokenString, tokenAccess)
}

// Refresh verifies a refresh token and returns a new pair for the same actor.
func (i *Issuer) Refresh(refreshToken string) (Tokens, models.Actor, error) {
	actor, err := i.parse(refreshToken, tokenRefresh)
	if err != nil {
		return Tokens{}, models.Actor{}, err
	}
	tokens, err := i.Issue(actor)
	return tokens, actor, err
}

func (i *Issuer) sign(actor models.Actor, kind string, ttl time.Duration) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":           actor.UserID,
		"role":          actor.Role.String(),
		"restaurant_id": actor.RestaurantID,
		"type":          kind,
		"iat":           now.Unix(),
		"exp":           now.Add(ttl).Unix(),
	})
	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return s, nil
}

func (i *Issuer) parse(tokenString, kind string) (models.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return models.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != kind {
		return models.Actor{}, fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}
	sub, _ := claims["sub"].(string)
	roleName, _ := claims["role"].(string)
	restaurantID, _ := claims["restaurant_id"].(string)
	role, err := models.ParseRole(roleName)
	if err != nil || sub == "" {
		return models.Actor{}, fmt.Errorf("%w: bad subject or role", ErrInvalidToken)
	}
	return models.Actor{UserID: sub, Role: role, RestaurantID: restaurantID}, nil
}
