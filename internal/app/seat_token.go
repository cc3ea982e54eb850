package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// SeatClaims binds a player name to a room.
type SeatClaims struct {
	Room string `json:"room"`
	jwt.StandardClaims
}

// TokenIssuer signs and verifies HS256 seat tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultSeatTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a token allowing player to take a seat in room.
func (s *TokenIssuer) Issue(room, player string) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", fmt.Errorf("seat token secret is not configured")
	}
	if room == "" || player == "" {
		return "", fmt.Errorf("room and player are required")
	}
	now := s.now()
	claims := SeatClaims{
		Room: room,
		StandardClaims: jwt.StandardClaims{
			Issuer:    SeatTokenIssuer,
			Subject:   player,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, expiry, issuer and room, and returns the player.
func (s *TokenIssuer) Verify(tokenString, room string) (string, error) {
	claims := &SeatClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSeatToken, err)
	}
	if !token.Valid || claims.Issuer != SeatTokenIssuer || claims.Subject == "" {
		return "", ErrInvalidSeatToken
	}
	if claims.Room != room {
		return "", fmt.Errorf("%w: issued for room %s", ErrInvalidSeatToken, claims.Room)
	}
	return claims.Subject, nil
}
