package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tipos de principal que puede portar un token.
const (
	PrincipalAdmin   = "admin"
	PrincipalUser    = "user"
	PrincipalDealer  = "dealer"
	PrincipalSubUser = "sub_user"
)

// Claims incluye los claims estándar JWT más los campos propios de la
// aplicación. DealerID solo viene informado cuando el principal es un
// sub-usuario (que se direcciona siempre como dealer+subUser).
type Claims struct {
	jwt.RegisteredClaims
	PrincipalID   string `json:"principal_id"`
	PrincipalType string `json:"principal_type"` // admin | user | dealer | sub_user
	DealerID      string `json:"dealer_id,omitempty"`
}

// Generate genera un token JWT firmado con el principal y su tipo.
func Generate(secret, principalID, principalType, dealerID, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   principalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		PrincipalID:   principalID,
		PrincipalType: principalType,
		DealerID:      dealerID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve los claims de la aplicación.
// Falla cerrado: cualquier error de firma o expiración rechaza el token.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}
