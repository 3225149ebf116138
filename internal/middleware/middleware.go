package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/auth"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by JWTAuth
const (
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
	ClientIDKey = "clientID"
	ScopesKey   = "scopes"
)

// JWTAuth validates HS256 bearer tokens issued to users at login or to
// service clients by the token endpoint. Both carry uid and role claims.
func JWTAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Missing Authorization header. A valid Bearer token is required.")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Authorization header must use Bearer scheme. Format: 'Bearer <token>'")
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			abortUnauthorized(c, "Bearer token is empty")
			return
		}

		claims, err := parseAndValidateJWT(tokenString, jwtSecret)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		if err := extractAndSetClaims(c, claims); err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, details string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		models.NewAPIError(models.ErrUnauthorized, "Not authorized", map[string]interface{}{"reason": details}))
}

// CurrentPrincipal returns the caller set by JWTAuth, or a zero Principal
func CurrentPrincipal(c *gin.Context) auth.Principal {
	var p auth.Principal
	if v, ok := c.Get(UserIDKey); ok {
		p.UserID, _ = v.(uint)
	}
	if v, ok := c.Get(UserRoleKey); ok {
		if role, ok := v.(string); ok {
			p.Role = models.Role(role)
		}
	}
	p.ClientID = c.GetString(ClientIDKey)
	return p
}

// parseJWTToken validates and parses a JWT token using HMAC signing method
func parseJWTToken(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// reject alg switching
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v. Expected HMAC", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}
	return claims, nil
}

// parseAndValidateJWT parses the JWT and checks the time based claims
func parseAndValidateJWT(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	claims, err := parseJWTToken(tokenString, jwtSecret)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("token missing required 'exp' claim")
	}
	if exp.Before(now) {
		return nil, fmt.Errorf("token has expired")
	}

	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("invalid iat claim: %w", err)
	}
	// small skew allowance between hosts
	if iat != nil && iat.After(now.Add(time.Minute)) {
		return nil, fmt.Errorf("token issued in the future")
	}

	return claims, nil
}

// extractAndSetClaims copies uid, role, aud and scope into the gin context
func extractAndSetClaims(c *gin.Context, claims jwt.MapClaims) error {
	userID, err := extractUserID(claims)
	if err != nil {
		return err
	}
	if userID == 0 {
		return fmt.Errorf("invalid user identifier: cannot be zero")
	}

	role, err := extractRole(claims)
	if err != nil {
		return err
	}

	c.Set(UserIDKey, userID)
	c.Set(UserRoleKey, string(role))

	switch aud := claims["aud"].(type) {
	case string:
		if aud != "" {
			c.Set(ClientIDKey, aud)
		}
	case []interface{}:
		if len(aud) > 0 {
			if first, ok := aud[0].(string); ok && first != "" {
				c.Set(ClientIDKey, first)
			}
		}
	}

	if scope, ok := claims["scope"].(string); ok && scope != "" {
		c.Set(ScopesKey, scope)
	}
	return nil
}

// extractUserID reads the uid claim, which is a numeric string
func extractUserID(claims jwt.MapClaims) (uint, error) {
	if uid, ok := claims["uid"].(string); ok && uid != "" {
		parsedID, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid uid claim format: must be a numeric string, got: %s", uid)
		}
		return uint(parsedID), nil
	}

	// JSON numbers decode as float64
	if uid, ok := claims["uid"].(float64); ok {
		if uid <= 0 {
			return 0, fmt.Errorf("invalid uid claim: must be positive, got: %f", uid)
		}
		return uint(uid), nil
	}

	return 0, fmt.Errorf("token missing required 'uid' claim")
}

// extractRole requires an explicit, known role claim
func extractRole(claims jwt.MapClaims) (models.Role, error) {
	raw, ok := claims["role"].(string)
	if !ok || raw == "" {
		return "", fmt.Errorf("token missing required 'role' claim")
	}
	role := models.Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("invalid role '%s'. Allowed roles: admin, user", raw)
	}
	return role, nil
}
