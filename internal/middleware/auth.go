package middleware

import (
	"net/http"
	"strings"

	"github.com/Empasex/Mini-POS/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	ClaimsKey = "claims"
)

// Canonical roles. Tokens may carry the English or legacy aliases.
const (
	RolAdministrador = "administrador"
	RolSupervisor    = "supervisor"
	RolCajero        = "cajero"
)

var rolAliases = map[string]string{
	"admin":         RolAdministrador,
	"administrador": RolAdministrador,
	"supervisor":    RolSupervisor,
	"stock":         RolSupervisor,
	"inventario":    RolSupervisor,
	"cajero":        RolCajero,
	"employee":      RolCajero,
	"ventas":        RolCajero,
}

// NormalizeRol maps a role alias to its canonical name, case-insensitively.
// Unknown roles are returned lowercased.
func NormalizeRol(rol string) string {
	r := strings.ToLower(strings.TrimSpace(rol))
	if canon, ok := rolAliases[r]; ok {
		return canon
	}
	return r
}

// JWTClaims are the custom claims embedded in every access token. Tokens are
// issued by the auth service; this backend only verifies them.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Rol      string `json:"rol"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token on every protected route. An empty
// secret rejects every request.
func JWTAuth(secret string) gin.HandlerFunc {
	if secret == "" {
		log.Warn().Msg("JWT_SECRET not set: protected routes will reject every request")
	}
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion no configurada"))
			return
		}
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}

		claims.Rol = NormalizeRol(claims.Rol)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role, after alias normalization,
// is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[NormalizeRol(r)] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed[NormalizeRol(claims.Rol)] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the typed claims set by JWTAuth, or nil.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
