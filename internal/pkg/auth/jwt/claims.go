package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims issued to signed-in users.
type Payload struct {
	// StandardClaims embeds the standard JWT fields (Exp, Iat, Iss) used for
	// token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the user's account identifier.
	ID string `json:"id"`

	// Username is the user's login name, carried for display and logging.
	Username string `json:"username"`
}
