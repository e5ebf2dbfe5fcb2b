package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod selects the algorithm identity tokens are signed with.
type SigningMethod string

const (
	// MethodEd25519 signs with EdDSA over Ed25519 keys.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs with a shared HMAC secret.
	MethodHS256 SigningMethod = "hs256"
)

// Verification failures reported by Verify in addition to the parser errors
// of github.com/golang-jwt/jwt/v5.
var (
	ErrMissingSubject   = errors.New("identity token has no subject")
	ErrMissingKeyID     = errors.New("missing kid")
	ErrUnknownKeyID     = errors.New("unknown kid")
	ErrFutureIssuedAt   = errors.New("token iat too far in the future")
	ErrSigningKeyAbsent = errors.New("manager has no signing key")
)

// Config configures a Manager.
//
// A verify-only manager is an Ed25519 manager without a PrivateKey.
type Config struct {
	// TTL is the lifetime of issued tokens.
	TTL           time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	// MaxFutureIAT rejects tokens issued further in the future than this.
	// Zero selects ten minutes.
	MaxFutureIAT time.Duration
	KeyID        string
	// VerifyKeys maps kid to verification key. When set, every verified
	// token must carry a known kid.
	VerifyKeys map[string][]byte
}

// Manager issues and verifies OpenID-style identity tokens whose subject is
// a cross-platform account id.
type Manager struct {
	config Config
	now    func() time.Time
}

// IdentityClaims are the claims of an identity token.
type IdentityClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires a shared secret")
		}
	case MethodEd25519:
		if err := validateEdKeys(cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported signing method %q", cfg.SigningMethod)
	}
	if cfg.KeyID != "" && len(cfg.VerifyKeys) > 0 {
		if _, ok := cfg.VerifyKeys[cfg.KeyID]; !ok {
			return nil, errors.New("KeyID is not present in VerifyKeys")
		}
	}

	return &Manager{config: cfg, now: time.Now}, nil
}

func validateEdKeys(cfg Config) error {
	if len(cfg.PrivateKey) > 0 {
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return err
		}
	}
	if len(cfg.PublicKey) > 0 {
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return err
		}
	}
	if len(cfg.VerifyKeys) == 0 && len(cfg.PublicKey) == 0 {
		return errors.New("ed25519 requires public key or verify key set")
	}
	for kid, key := range cfg.VerifyKeys {
		if strings.TrimSpace(kid) == "" {
			return errors.New("verify key map contains empty kid")
		}
		if _, err := parseEdPublicKey(key); err != nil {
			return fmt.Errorf("invalid ed25519 verify key for kid %q: %w", kid, err)
		}
	}
	return nil
}

// CanIssue reports whether the manager holds a signing key.
func (m *Manager) CanIssue() bool {
	return len(m.config.PrivateKey) > 0
}

// Issue signs an identity token for subject. name is carried as the display
// name claim when non-empty.
func (m *Manager) Issue(subject, name string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", ErrMissingSubject
	}
	if !m.CanIssue() {
		return "", ErrSigningKeyAbsent
	}

	now := m.now()
	claims := IdentityClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	token := jwt.NewWithClaims(m.method(), claims)
	if m.config.KeyID != "" {
		token.Header["kid"] = m.config.KeyID
	}
	key, err := m.signKey()
	if err != nil {
		return "", err
	}
	return token.SignedString(key)
}

// Verify parses tokenStr, checks its signature, issuer, audience and time
// claims, and returns its claims. Tokens without a subject are rejected.
func (m *Manager) Verify(tokenStr string) (*IdentityClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method().Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &IdentityClaims{}, m.keyFor)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMissingSubject
	}
	if claims.IssuedAt != nil && claims.IssuedAt.After(m.now().Add(m.config.MaxFutureIAT)) {
		return nil, ErrFutureIssuedAt
	}
	return claims, nil
}

func (m *Manager) keyFor(t *jwt.Token) (any, error) {
	if t.Method.Alg() != m.method().Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}
	kid, _ := t.Header["kid"].(string)

	if len(m.config.VerifyKeys) > 0 {
		if kid == "" {
			return nil, ErrMissingKeyID
		}
		key, ok := m.config.VerifyKeys[kid]
		if !ok {
			return nil, ErrUnknownKeyID
		}
		return m.verifyKeyFrom(key)
	}
	if m.config.KeyID != "" {
		if kid == "" {
			return nil, ErrMissingKeyID
		}
		if kid != m.config.KeyID {
			return nil, ErrUnknownKeyID
		}
	}
	if m.config.SigningMethod == MethodHS256 {
		return m.config.PrivateKey, nil
	}
	return parseEdPublicKey(m.config.PublicKey)
}

func (m *Manager) method() jwt.SigningMethod {
	if m.config.SigningMethod == MethodHS256 {
		return jwt.SigningMethodHS256
	}
	return jwt.SigningMethodEdDSA
}

func (m *Manager) signKey() (any, error) {
	if m.config.SigningMethod == MethodHS256 {
		return m.config.PrivateKey, nil
	}
	return parseEdPrivateKey(m.config.PrivateKey)
}

func (m *Manager) verifyKeyFrom(key []byte) (any, error) {
	if m.config.SigningMethod == MethodHS256 {
		return key, nil
	}
	return parseEdPublicKey(key)
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
