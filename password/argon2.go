package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

var (
	ErrSecretTooShort  = errors.New("secret too short")
	ErrSecretTooLong   = errors.New("secret too long")
	ErrMalformedHash   = errors.New("malformed secret hash")
	ErrUnsupportedHash = errors.New("unsupported secret hash")
)

// Config sets the Argon2id cost parameters and the accepted secret length.
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// MinSecretBytes and MaxSecretBytes bound the raw secret length.
	// MaxSecretBytes of zero means 1024.
	MinSecretBytes int
	MaxSecretBytes int
}

// DefaultConfig is sized for interactive verification of account
// secrets.
func DefaultConfig() Config {
	return Config{
		Memory:         64 * 1024,
		Time:           1,
		Parallelism:    2,
		SaltLength:     16,
		KeyLength:      32,
		MinSecretBytes: 10,
		MaxSecretBytes: 1024,
	}
}

// Hasher hashes and verifies secrets. It is safe for concurrent use.
type Hasher struct {
	config Config
}

type params struct {
	memory      uint32
	time        uint32
	parallelism uint8
}

type encoded struct {
	params
	salt []byte
	hash []byte
}

func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.MaxSecretBytes == 0 {
		cfg.MaxSecretBytes = 1024
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Hasher{config: cfg}, nil
}

// Hash returns secret in PHC form. Secrets are hashed byte for byte, with no
// Unicode normalization.
func (h *Hasher) Hash(secret string) (string, error) {
	if err := h.checkLength(secret); err != nil {
		return "", err
	}

	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	p := params{memory: h.config.Memory, time: h.config.Time, parallelism: h.config.Parallelism}
	key := derive(secret, salt, p, h.config.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID, argon2.Version,
		p.memory, p.time, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether secret matches stored. A malformed stored hash is an
// error; a mismatch is not.
func (h *Hasher) Verify(secret, stored string) (bool, error) {
	if len(secret) > h.config.MaxSecretBytes {
		return false, ErrSecretTooLong
	}
	e, err := decode(stored)
	if err != nil {
		return false, err
	}
	key := derive(secret, e.salt, e.params, uint32(len(e.hash)))
	return subtle.ConstantTimeCompare(key, e.hash) == 1, nil
}

// NeedsRehash reports whether stored was produced with weaker parameters than
// the hasher's.
func (h *Hasher) NeedsRehash(stored string) (bool, error) {
	e, err := decode(stored)
	if err != nil {
		return false, err
	}
	return h.config.Memory > e.memory ||
		h.config.Time > e.time ||
		h.config.Parallelism > e.parallelism ||
		h.config.KeyLength != uint32(len(e.hash)), nil
}

func (h *Hasher) checkLength(secret string) error {
	if len(secret) < h.config.MinSecretBytes {
		return fmt.Errorf("%w: need at least %d bytes", ErrSecretTooShort, h.config.MinSecretBytes)
	}
	if len(secret) > h.config.MaxSecretBytes {
		return fmt.Errorf("%w: at most %d bytes", ErrSecretTooLong, h.config.MaxSecretBytes)
	}
	return nil
}

func derive(secret string, salt []byte, p params, keyLen uint32) []byte {
	return argon2.IDKey([]byte(secret), salt, p.time, p.memory, p.parallelism, keyLen)
}

// decode parses $argon2id$v=19$m=..,t=..,p=..$salt$hash.
func decode(s string) (*encoded, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, ErrMalformedHash
	}
	if parts[1] != algorithmID {
		return nil, fmt.Errorf("%w: algorithm %q", ErrUnsupportedHash, parts[1])
	}
	version, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return nil, fmt.Errorf("%w: missing version", ErrMalformedHash)
	}
	if v, err := strconv.Atoi(version); err != nil || v != argon2.Version {
		return nil, fmt.Errorf("%w: version %q", ErrUnsupportedHash, version)
	}

	p, err := decodeParams(parts[3])
	if err != nil {
		return nil, err
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < int(minSaltLength) {
		return nil, fmt.Errorf("%w: salt", ErrMalformedHash)
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) < int(minKeyLength) {
		return nil, fmt.Errorf("%w: hash", ErrMalformedHash)
	}
	return &encoded{params: p, salt: salt, hash: hash}, nil
}

func decodeParams(s string) (params, error) {
	var (
		p    params
		seen int
	)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return params{}, fmt.Errorf("%w: parameter %q", ErrMalformedHash, pair)
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return params{}, fmt.Errorf("%w: parameter %q", ErrMalformedHash, pair)
		}
		switch k {
		case "m":
			if n < uint64(minMemoryKB) {
				return params{}, fmt.Errorf("%w: memory below minimum", ErrUnsupportedHash)
			}
			p.memory = uint32(n)
		case "t":
			if n < uint64(minTimeCost) {
				return params{}, fmt.Errorf("%w: time cost below minimum", ErrUnsupportedHash)
			}
			p.time = uint32(n)
		case "p":
			if n < uint64(minParallelism) || n > 255 {
				return params{}, fmt.Errorf("%w: parallelism out of range", ErrUnsupportedHash)
			}
			p.parallelism = uint8(n)
		default:
			return params{}, fmt.Errorf("%w: parameter %q", ErrMalformedHash, k)
		}
		seen++
	}
	if seen != 3 {
		return params{}, fmt.Errorf("%w: expected m, t and p", ErrMalformedHash)
	}
	return p, nil
}

func validateConfig(cfg Config) error {
	switch {
	case cfg.Memory < minMemoryKB:
		return errors.New("password: memory must be >= 8192 KB")
	case cfg.Time < minTimeCost:
		return errors.New("password: time must be >= 1")
	case cfg.Parallelism < minParallelism:
		return errors.New("password: parallelism must be >= 1")
	case cfg.SaltLength < minSaltLength:
		return errors.New("password: salt length must be >= 16")
	case cfg.KeyLength < minKeyLength:
		return errors.New("password: key length must be >= 16")
	case cfg.MinSecretBytes < 0 || cfg.MaxSecretBytes < cfg.MinSecretBytes:
		return errors.New("password: invalid secret length bounds")
	}
	return nil
}
