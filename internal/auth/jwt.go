package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoCredential = errors.New("no credential")
	ErrInvalidToken = errors.New("invalid token")
)

// Access is the role container Keycloak uses for both realm and client roles.
type Access struct {
	Roles []string `json:"roles"`
}

// Claims follows the Keycloak access token layout.
type Claims struct {
	PreferredUsername string            `json:"preferred_username,omitempty"`
	Email             string            `json:"email,omitempty"`
	RealmAccess       Access            `json:"realm_access"`
	ResourceAccess    map[string]Access `json:"resource_access,omitempty"`
	jwt.RegisteredClaims
}

// TokenMaker signs HS256 tokens in the Keycloak claim layout. It backs local
// development tokens and tests; production tokens come from the identity
// provider.
type TokenMaker struct {
	secret   []byte
	issuer   string
	clientID string
}

func NewTokenMaker(secret, issuer, clientID string) *TokenMaker {
	return &TokenMaker{
		secret:   []byte(secret),
		issuer:   issuer,
		clientID: clientID,
	}
}

// New issues a token whose client roles (resource_access[clientID]) are roles.
func (t *TokenMaker) New(subject, username string, roles []Role, ttl time.Duration) (string, error) {
	now := time.Now()

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}

	claims := Claims{
		PreferredUsername: username,
		ResourceAccess:    map[string]Access{t.clientID: {Roles: names}},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

type VerifierConfig struct {
	Secret         string
	RealmPublicKey string
	Issuer         string
	ClientID       string
}

// Verifier validates access tokens signed either with a shared HS256 secret
// or with the realm RS256 key.
type Verifier struct {
	secret   []byte
	rsaKey   *rsa.PublicKey
	clientID string
	parser   *jwt.Parser
}

func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	v := &Verifier{clientID: cfg.ClientID}

	var methods []string
	if cfg.Secret != "" {
		v.secret = []byte(cfg.Secret)
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}
	if cfg.RealmPublicKey != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(realmKeyPEM(cfg.RealmPublicKey)))
		if err != nil {
			return nil, fmt.Errorf("failed to parse realm public key: %w", err)
		}
		v.rsaKey = key
		methods = append(methods, jwt.SigningMethodRS256.Alg())
	}
	if len(methods) == 0 {
		return nil, errors.New("verifier needs a secret or a realm public key")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	v.parser = jwt.NewParser(opts...)

	return v, nil
}

func (v *Verifier) Parse(tokenStr string) (Claims, error) {
	var c Claims

	token, err := v.parser.ParseWithClaims(tokenStr, &c, v.key)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if token == nil || !token.Valid {
		return Claims{}, fmt.Errorf("%w: token not valid", ErrInvalidToken)
	}
	if c.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return c, nil
}

// Principal flattens realm roles and the roles of the configured client into
// one set.
func (v *Verifier) Principal(c Claims) Principal {
	roles := Roles{}
	roles.Add(c.RealmAccess.Roles...)
	if client, ok := c.ResourceAccess[v.clientID]; ok {
		roles.Add(client.Roles...)
	}

	username := c.PreferredUsername
	if username == "" {
		username = c.Subject
	}

	return Principal{Subject: c.Subject, Username: username, Roles: roles}
}

func (v *Verifier) key(token *jwt.Token) (any, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.secret == nil {
			return nil, errors.New("hmac tokens are not accepted")
		}
		return v.secret, nil
	case *jwt.SigningMethodRSA:
		if v.rsaKey == nil {
			return nil, errors.New("rsa tokens are not accepted")
		}
		return v.rsaKey, nil
	default:
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
}

// Keycloak publishes the realm key as bare base64 DER.
func realmKeyPEM(key string) string {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "-----BEGIN") {
		return key
	}
	return "-----BEGIN PUBLIC KEY-----\n" + key + "\n-----END PUBLIC KEY-----\n"
}
