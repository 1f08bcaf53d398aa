package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
	"github.com/aussiebroadwan/albumhub/pkg/jwtx"
)

// Codec turns claims into signed strings and back.
type Codec interface {
	Encode(claims jwtx.Claims) (string, error)
	Decode(token string) (jwtx.Claims, error)
}

// TokenService mints and checks access and refresh tokens. Configure it once
// at startup; after that it is safe for concurrent use.
type TokenService struct {
	Codec       Codec
	Issuer      string
	AccessTTL   time.Duration   // zero means jwtx.DefaultAccessTokenTTL
	RefreshTTL  time.Duration   // zero means jwtx.DefaultRefreshTokenTTL
	Revocations *RevocationList // optional

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// IssueAccessToken mints a short-lived token carrying the user's roles.
func (s *TokenService) IssueAccessToken(username string, roles []domain.Role) (string, error) {
	claims := jwtx.NewClaims(jwtx.ClassAccess, username, s.Issuer, domain.RoleStrings(roles), s.accessTTL(), s.now())
	return s.Codec.Encode(claims)
}

// IssueRefreshToken mints a long-lived token with no roles; roles are looked
// up again when it is redeemed.
func (s *TokenService) IssueRefreshToken(username string) (string, error) {
	claims := jwtx.NewClaims(jwtx.ClassRefresh, username, s.Issuer, nil, s.refreshTTL(), s.now())
	return s.Codec.Encode(claims)
}

// ValidateAccessToken returns the principal behind a usable access token.
// Every failure matches ErrInvalidToken.
func (s *TokenService) ValidateAccessToken(token string) (domain.Principal, error) {
	claims, err := s.verify(token, jwtx.ClassAccess)
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.Principal{
		Username: claims.Subject,
		Roles:    domain.ParseRoles(claims.Roles),
	}, nil
}

// VerifyRefreshToken returns the claims of a usable refresh token.
func (s *TokenService) VerifyRefreshToken(token string) (jwtx.Claims, error) {
	return s.verify(token, jwtx.ClassRefresh)
}

// ValidateRefreshToken reports whether token is a usable refresh token issued
// to expectedUsername.
func (s *TokenService) ValidateRefreshToken(token, expectedUsername string) bool {
	claims, err := s.VerifyRefreshToken(token)
	return err == nil && claims.Subject == expectedUsername
}

// ExtractUsername reads the subject of a correctly signed token, expired or not.
func (s *TokenService) ExtractUsername(token string) (string, error) {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Revoke puts token on the deny list until it expires. Revoking a token that
// has already expired or was already revoked is a no-op.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	_, err = s.revokeClaims(ctx, claims)
	return err
}

// revokeClaims reports whether this call was the one that revoked the token.
func (s *TokenService) revokeClaims(ctx context.Context, claims jwtx.Claims) (bool, error) {
	if s.Revocations == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return true, nil
	}
	if !s.now().Before(claims.ExpiresAt.Time) {
		return true, nil
	}
	return s.Revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *TokenService) verify(token string, class jwtx.TokenClass) (jwtx.Claims, error) {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if err := s.check(&claims, class); err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

var (
	errWrongClass = errors.New("wrong token class")
	errNoSubject  = errors.New("missing subject")
	errRevoked    = errors.New("token revoked")
)

func (s *TokenService) check(claims *jwtx.Claims, class jwtx.TokenClass) error {
	if claims.Class != class {
		return errWrongClass
	}
	if claims.Subject == "" {
		return errNoSubject
	}
	if err := claims.ValidAt(s.now()); err != nil {
		return err
	}
	if err := claims.ValidateIssuer(s.Issuer); err != nil {
		return err
	}
	if s.Revocations != nil && s.Revocations.IsRevoked(claims.ID) {
		return errRevoked
	}
	return nil
}
