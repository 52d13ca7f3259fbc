package security

import (
	"errors"
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Options controls verification parameters. Token issuance belongs to the
// auth service; this gateway only verifies what it is handed.
type Options struct {
	Secret []byte
	Alg    string // HS256/HS384/HS512, default HS256
}

func DefaultOptions(secret []byte) Options {
	return Options{Secret: secret, Alg: "HS256"}
}

type Claims struct {
	jwtlib.MapClaims
}

// Subject returns the "sub" claim, the opaque user identifier.
func (c *Claims) Subject() string {
	sub, _ := c.GetSubject()
	return sub
}

func Verify(opts Options, token string) (*Claims, error) {
	alg := opts.Alg
	if alg == "" {
		alg = "HS256"
	}
	if _, err := signingMethod(alg); err != nil {
		return nil, err
	}
	// the configured algorithm is the only one accepted; a token signed
	// with any other method fails before the key is consulted
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		return opts.Secret, nil
	}, jwtlib.WithValidMethods([]string{alg}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	mc, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return &Claims{MapClaims: mc}, nil
}

func signingMethod(alg string) (jwtlib.SigningMethod, error) {
	switch alg {
	case "", "HS256":
		return jwtlib.SigningMethodHS256, nil
	case "HS384":
		return jwtlib.SigningMethodHS384, nil
	case "HS512":
		return jwtlib.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported alg: %s", alg)
	}
}
