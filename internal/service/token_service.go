package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chat-api/internal/model"
)

// TokenService signs and validates HS256 access tokens and derives refresh
// tokens. It is a pure function of the token, the clock and an immutable
// configuration snapshot, so it needs no locking.
type TokenService struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
	skew      time.Duration
}

func NewTokenService(secret string, issuer string, audience string, accessTTL time.Duration, skew time.Duration) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
		skew:      skew,
	}
}

// Issue signs an access token for the user: subject, username, email and the
// user's role names uppercased, bounded by issuer/audience/expiry.
func (s *TokenService) Issue(user model.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.accessTTL)

	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, strings.ToUpper(role.NormalizedName))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"email":    user.Email,
		"roles":    roles,
		"iss":      s.issuer,
		"aud":      s.audience,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry. Expiry is
// checked against now with the configured clock-skew tolerance, so a token
// remains acceptable until exp + skew. Expired tokens surface
// model.ErrTokenExpired so callers can tell clients to refresh.
func (s *TokenService) Verify(tokenString string, now time.Time) (*model.AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.skew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	parsed, err := parser.Parse(tokenString, s.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}

	return claimsFromToken(parsed)
}

// VerifyIgnoringExpiry validates everything Verify does except the expiry,
// for the refresh flow: a stale access token still proves who the caller is,
// the stored refresh token proves the session is current.
func (s *TokenService) VerifyIgnoringExpiry(tokenString string) (*model.AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	parsed, err := parser.Parse(tokenString, s.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}

	issuer, err := parsed.Claims.GetIssuer()
	if err != nil || issuer != s.issuer {
		return nil, fmt.Errorf("%w: issuer mismatch", model.ErrInvalidToken)
	}

	audience, err := parsed.Claims.GetAudience()
	if err != nil || !containsFold(audience, s.audience) {
		return nil, fmt.Errorf("%w: audience mismatch", model.ErrInvalidToken)
	}

	return claimsFromToken(parsed)
}

// IssueRefresh derives an opaque refresh token from the user's password hash
// salted with email and a near-past timestamp, so every issuance yields a
// fresh value. The caller persists it as the user's single valid refresh
// token; the overwrite is what invalidates all prior ones.
func (s *TokenService) IssueRefresh(user model.User, now time.Time) string {
	salt := fmt.Sprintf("%s@%d", user.Email, now.Add(-100*time.Millisecond).UnixNano())
	sum := sha256.Sum256([]byte(user.PasswordHash + "@" + salt))
	return hex.EncodeToString(sum[:])
}

func (s *TokenService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
	}
	return s.secret, nil
}

func claimsFromToken(token *jwt.Token) (*model.AccessClaims, error) {
	claimsMap, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", model.ErrInvalidToken)
	}

	claims := &model.AccessClaims{}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.Username, _ = claimsMap["username"].(string)
	claims.Email, _ = claimsMap["email"].(string)

	if rawRoles, ok := claimsMap["roles"].([]any); ok {
		for _, raw := range rawRoles {
			if role, ok := raw.(string); ok {
				claims.Roles = append(claims.Roles, strings.ToUpper(role))
			}
		}
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", model.ErrInvalidToken)
	}
	return claims, nil
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
