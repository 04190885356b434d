// cmd/gentoken/main.go: Firma un JWT de prueba con JWT_SECRET.
// Uso: JWT_SECRET=... go run ./cmd/gentoken -rol administrador -ttl 8h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Empasex/Mini-POS/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	rol := flag.String("rol", middleware.RolAdministrador, "rol del token")
	username := flag.String("username", "admin", "username del token")
	ttl := flag.Duration("ttl", 8*time.Hour, "vigencia")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET no configurado")
		os.Exit(1)
	}

	now := time.Now()
	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: *username,
		Rol:      middleware.NormalizeRol(*rol),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	fmt.Println(token)
}
