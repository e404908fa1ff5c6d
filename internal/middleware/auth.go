package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	IdentityKey contextKey = "identity"
)

// Identity is what a verified access token says about its bearer.
type Identity struct {
	UserID    uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}

// AuthError is a failed authentication. Status is 401 for missing, invalid,
// expired or revoked tokens and 422 when the token is structurally broken or
// its subject is not a user id.
type AuthError struct {
	Status  int
	Code    string
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// RevocationChecker reports whether a token id has been revoked (logout).
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type JWTAuth struct {
	Secret  []byte
	TTL     time.Duration
	revoked RevocationChecker
}

func NewJWTAuth(secret string, ttl time.Duration) *JWTAuth {
	return &JWTAuth{Secret: []byte(secret), TTL: ttl}
}

// WithRevocation enables the revocation check for every authenticated request.
func (j *JWTAuth) WithRevocation(checker RevocationChecker) *JWTAuth {
	j.revoked = checker
	return j
}

// GenerateAccessToken issues an HS256 token whose subject is the user id.
func (j *JWTAuth) GenerateAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Authenticate verifies a raw token string and extracts the bearer's identity.
func (j *JWTAuth) Authenticate(tokenStr string) (*Identity, error) {
	if tokenStr == "" {
		return nil, &AuthError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "Missing authorization token"}
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, &AuthError{Status: http.StatusUnprocessableEntity, Code: "MALFORMED_TOKEN", Message: "Malformed token"}
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, &AuthError{Status: http.StatusUnauthorized, Code: "TOKEN_EXPIRED", Message: "Token has expired"}
	default:
		return nil, &AuthError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "Invalid token"}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, &AuthError{Status: http.StatusUnprocessableEntity, Code: "INVALID_IDENTITY", Message: "Invalid user identity in token"}
	}

	identity := &Identity{UserID: userID, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// Verify authenticates tokenStr and rejects it if its id has been revoked.
func (j *JWTAuth) Verify(ctx context.Context, tokenStr string) (*Identity, error) {
	identity, err := j.Authenticate(tokenStr)
	if err != nil {
		return nil, err
	}

	if j.revoked != nil && identity.TokenID != "" {
		revoked, err := j.revoked.IsRevoked(ctx, identity.TokenID)
		if err != nil {
			return nil, &AuthError{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: "Failed to verify token"}
		}
		if revoked {
			return nil, &AuthError{Status: http.StatusUnauthorized, Code: "TOKEN_REVOKED", Message: "Token has been revoked"}
		}
	}
	return identity, nil
}

// Middleware validates the bearer token and attaches the identity to the context.
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header", r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format", r)
			return
		}

		identity, err := j.Verify(r.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			writeAuthError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, identity.UserID)
		ctx = context.WithValue(ctx, IdentityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts user_id from request context
func GetUserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(UserIDKey).(uuid.UUID)
	return id
}

// GetIdentity returns the full token identity, or nil outside authenticated routes.
func GetIdentity(ctx context.Context) *Identity {
	identity, _ := ctx.Value(IdentityKey).(*Identity)
	return identity
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		writeError(w, authErr.Status, authErr.Code, authErr.Message, r)
		return
	}
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", r)
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get(RequestIDHeader)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
		},
	})
}
