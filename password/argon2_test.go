package password

import (
	"errors"
	"strings"
	"testing"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Memory = 8 * 1024
	cfg.Parallelism = 1
	return cfg
}

func newTestHasher(t *testing.T, cfg Config) *Hasher {
	t.Helper()
	h, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	h := newTestHasher(t, testConfig())

	stored, err := h.Hash("dev-tool-secret")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(stored, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", stored)
	}

	ok, err := h.Verify("dev-tool-secret", stored)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("dev-tool-secreT", stored)
	if err != nil || ok {
		t.Fatalf("expected mismatch, got ok=%v err=%v", ok, err)
	}
}

func TestHashIsSalted(t *testing.T) {
	h := newTestHasher(t, testConfig())
	a, _ := h.Hash("same-secret-value")
	b, _ := h.Hash("same-secret-value")
	if a == b {
		t.Fatal("expected different salts")
	}
}

func TestHashLengthBounds(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSecretBytes = 16
	h := newTestHasher(t, cfg)

	if _, err := h.Hash("short"); !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("expected ErrSecretTooShort, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("x", 17)); !errors.Is(err, ErrSecretTooLong) {
		t.Fatalf("expected ErrSecretTooLong, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("x", 16)); err != nil {
		t.Fatalf("expected max length to be accepted, got %v", err)
	}
	if _, err := h.Verify(strings.Repeat("x", 17), "$argon2id$"); !errors.Is(err, ErrSecretTooLong) {
		t.Fatalf("expected ErrSecretTooLong on verify, got %v", err)
	}
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	h := newTestHasher(t, testConfig())
	valid, _ := h.Hash("dev-tool-secret")
	parts := strings.Split(valid, "$")

	tests := map[string]struct {
		stored string
		want   error
	}{
		"empty":         {"", ErrMalformedHash},
		"bcrypt":        {"$2a$10$abcdefghijklmnopqrstuv", ErrMalformedHash},
		"argon2i":       {strings.Join([]string{"", "argon2i", parts[2], parts[3], parts[4], parts[5]}, "$"), ErrUnsupportedHash},
		"old version":   {strings.Join([]string{"", parts[1], "v=16", parts[3], parts[4], parts[5]}, "$"), ErrUnsupportedHash},
		"weak memory":   {strings.Join([]string{"", parts[1], parts[2], "m=1024,t=1,p=1", parts[4], parts[5]}, "$"), ErrUnsupportedHash},
		"missing param": {strings.Join([]string{"", parts[1], parts[2], "m=8192,t=1", parts[4], parts[5]}, "$"), ErrMalformedHash},
		"bad salt":      {strings.Join([]string{"", parts[1], parts[2], parts[3], "!!", parts[5]}, "$"), ErrMalformedHash},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := h.Verify("dev-tool-secret", tt.stored); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := newTestHasher(t, testConfig())
	stored, err := weak.Hash("dev-tool-secret")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if again, _ := weak.NeedsRehash(stored); again {
		t.Fatal("same parameters must not need a rehash")
	}

	strongCfg := testConfig()
	strongCfg.Time = 2
	strong := newTestHasher(t, strongCfg)
	if upgrade, err := strong.NeedsRehash(stored); err != nil || !upgrade {
		t.Fatalf("expected rehash, got %v %v", upgrade, err)
	}
}

func TestNewHasherValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.SaltLength = 8
	if _, err := NewHasher(cfg); err == nil {
		t.Fatal("expected short salt to be rejected")
	}

	cfg = testConfig()
	cfg.MinSecretBytes = 20
	cfg.MaxSecretBytes = 10
	if _, err := NewHasher(cfg); err == nil {
		t.Fatal("expected inverted bounds to be rejected")
	}
}
