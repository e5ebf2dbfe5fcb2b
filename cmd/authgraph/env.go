package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authgraph"
	"github.com/MrEthical07/authgraph/devbackend"
	"github.com/MrEthical07/authgraph/jwt"
	"github.com/MrEthical07/authgraph/password"
)

const identityTokenTTL = time.Hour

// env is everything a command needs. close releases it in reverse order.
type env struct {
	config   authgraph.Config
	redis    redis.UniversalClient
	tokens   *jwt.Manager
	backend  *devbackend.Backend
	accounts *devbackend.Accounts
	engine   *authgraph.Engine
	logger   *slog.Logger

	cleanup []func()
}

func (e *env) close() {
	for i := len(e.cleanup) - 1; i >= 0; i-- {
		e.cleanup[i]()
	}
}

func openEnv(opts *rootOptions) (_ *env, err error) {
	e := &env{}
	defer func() {
		if err != nil {
			e.close()
		}
	}()

	e.config = authgraph.DefaultConfig()
	if opts.ConfigPath != "" {
		if e.config, err = authgraph.LoadConfigFile(opts.ConfigPath); err != nil {
			return nil, err
		}
	}
	e.logger = authgraph.NewLogger(e.config.Logging, os.Stderr)

	addr := opts.RedisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("start miniredis: %w", err)
		}
		e.cleanup = append(e.cleanup, mr.Close)
		addr = mr.Addr()
		e.logger.Info("using in-process miniredis", "addr", addr)
	}
	e.redis = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	e.cleanup = append(e.cleanup, func() { _ = e.redis.Close() })

	if e.tokens, err = newTokenManager(opts.JWTSecret); err != nil {
		return nil, err
	}
	hasher, err := password.NewHasher(password.DefaultConfig())
	if err != nil {
		return nil, err
	}

	e.backend = devbackend.New(e.redis, devbackend.Config{
		Prefix:   opts.Prefix,
		Device:   opts.Device,
		Verifier: e.tokens,
	})
	e.accounts, err = devbackend.NewAccounts(e.redis, devbackend.AccountsConfig{
		Prefix: opts.Prefix,
		Issuer: e.tokens,
		Hasher: hasher,
	})
	if err != nil {
		return nil, err
	}

	b := authgraph.New().
		WithConfig(e.config).
		WithBackend(e.backend).
		WithAccountService(e.accounts).
		WithIdentityIssuer(e.tokens).
		WithLogger(e.logger)
	if e.config.RateLimit.Enabled {
		b.WithRedis(e.redis)
	}
	if e.config.Audit.Enabled {
		b.WithAuditSink(authgraph.NewJSONWriterSink(os.Stderr))
	}
	if e.engine, err = b.Build(); err != nil {
		return nil, err
	}
	e.cleanup = append(e.cleanup, e.engine.Close)
	return e, nil
}

func newTokenManager(secret string) (*jwt.Manager, error) {
	if secret != "" {
		return jwt.NewManager(jwt.Config{
			TTL:           identityTokenTTL,
			SigningMethod: jwt.MethodHS256,
			PrivateKey:    []byte(secret),
		})
	}
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return jwt.NewManager(jwt.Config{
		TTL:           identityTokenTTL,
		SigningMethod: jwt.MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
}
