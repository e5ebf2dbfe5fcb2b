package devbackend

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/internal"
	"github.com/MrEthical07/authgraph/jwt"
)

// Config configures a Backend.
type Config struct {
	// Prefix namespaces every key. Empty selects "ag:dev".
	Prefix string
	// Device names the device whose anonymous credential this backend
	// manages. Empty selects "local".
	Device string
	// ContinuanceTTL bounds how long an unbound credential can be turned
	// into an account. Zero selects ten minutes.
	ContinuanceTTL time.Duration
	// Verifier checks OPENID_ACCESS_TOKEN and FEDERATED credentials. Without
	// it those credential types are rejected as unavailable.
	Verifier *jwt.Manager
}

// Backend is a Redis platform backend. It is safe for concurrent use.
type Backend struct {
	redis  redis.UniversalClient
	config Config
	now    func() time.Time
}

var (
	_ graph.Backend         = (*Backend)(nil)
	_ graph.DeviceIDBackend = (*Backend)(nil)
	_ graph.LinkBackend     = (*Backend)(nil)
)

func New(client redis.UniversalClient, cfg Config) *Backend {
	if cfg.Prefix == "" {
		cfg.Prefix = "ag:dev"
	}
	if cfg.Device == "" {
		cfg.Device = "local"
	}
	if cfg.ContinuanceTTL <= 0 {
		cfg.ContinuanceTTL = 10 * time.Minute
	}
	return &Backend{redis: client, config: cfg, now: time.Now}
}

/* ==== KEYS ==== */

func (b *Backend) deviceKey() string { return b.config.Prefix + ":device:" + b.config.Device }
func (b *Backend) bindKey(cred string) string { return b.config.Prefix + ":bind:" + cred }
func (b *Backend) tokenKey(ct string) string { return b.config.Prefix + ":ct:" + ct }
func (b *Backend) userKey(user graph.UserID) string { return b.config.Prefix + ":user:" + user.String() }

/* ==== graph.Backend ==== */

// Login returns the user bound to the credential, or a fresh continuance
// token when the credential is valid but unbound.
func (b *Backend) Login(ctx context.Context, req graph.LoginRequest) (graph.LoginResult, error) {
	cred, err := b.credentialKey(ctx, req)
	if err != nil {
		return graph.LoginResult{}, err
	}

	user, err := b.redis.Get(ctx, b.bindKey(cred)).Result()
	switch {
	case err == nil:
		return graph.LoginResult{User: graph.UserID(user)}, nil
	case !isNil(err):
		return graph.LoginResult{}, storeError("login", err)
	}

	ct := uuid.NewString()
	if err := b.redis.Set(ctx, b.tokenKey(ct), cred, b.config.ContinuanceTTL).Err(); err != nil {
		return graph.LoginResult{}, storeError("login", err)
	}
	return graph.LoginResult{ContinuanceToken: graph.ContinuanceToken(ct)}, nil
}

// CreateUser consumes token and binds its credential to a new user. A token
// whose credential was bound in the meantime fails with
// CodeDuplicateNotAllowed.
func (b *Backend) CreateUser(ctx context.Context, token graph.ContinuanceToken) (graph.UserID, error) {
	if !token.IsValid() {
		return graph.NoUserID, rejected("create_user", nil)
	}
	user := uuid.NewString()
	created := strconv.FormatInt(b.now().Unix(), 10)

	res, err := createUserLua.Run(ctx, b.redis,
		[]string{b.tokenKey(string(token))},
		b.config.Prefix, user, created,
	).Slice()
	if err != nil {
		return graph.NoUserID, storeError("create_user", err)
	}
	if len(res) != 2 {
		return graph.NoUserID, storeError("create_user", ErrUnknownStatus)
	}

	switch status, _ := res[0].(int64); status {
	case statusDone:
		return graph.UserID(user), nil
	case statusMissing:
		return graph.NoUserID, rejected("create_user", errExpiredToken)
	case statusConflict:
		return graph.NoUserID, duplicate("create_user")
	default:
		return graph.NoUserID, storeError("create_user", ErrUnknownStatus)
	}
}

// SignOut records the sign-out on an existing user.
func (b *Backend) SignOut(ctx context.Context, user graph.UserID) error {
	key := b.userKey(user)
	n, err := b.redis.Exists(ctx, key).Result()
	if err != nil {
		return storeError("sign_out", err)
	}
	if n == 0 {
		return notFound("sign_out", nil)
	}
	if err := b.redis.HSet(ctx, key, "signed_out_at", b.now().Unix()).Err(); err != nil {
		return storeError("sign_out", err)
	}
	return nil
}

/* ==== graph.DeviceIDBackend ==== */

// CreateDeviceID mints the device credential. A second call fails with
// CodeDuplicateNotAllowed.
func (b *Backend) CreateDeviceID(ctx context.Context, deviceModel string) error {
	created, err := b.redis.HSetNX(ctx, b.deviceKey(), "id", uuid.NewString()).Result()
	if err != nil {
		return storeError("create_device_id", err)
	}
	if !created {
		return duplicate("create_device_id")
	}
	if err := b.redis.HSet(ctx, b.deviceKey(), "model", deviceModel).Err(); err != nil {
		return storeError("create_device_id", err)
	}
	return nil
}

/* ==== graph.LinkBackend ==== */

// LinkAccount binds the credential behind token to user.
func (b *Backend) LinkAccount(ctx context.Context, user graph.UserID, token graph.ContinuanceToken) error {
	if !user.IsValid() || !token.IsValid() {
		return rejected("link_account", nil)
	}
	status, err := linkLua.Run(ctx, b.redis,
		[]string{b.tokenKey(string(token)), b.userKey(user)},
		b.config.Prefix, user.String(),
	).Int64()
	if err != nil {
		return storeError("link_account", err)
	}

	switch status {
	case statusDone:
		return nil
	case statusNoOwner:
		return notFound("link_account", fmt.Errorf("user %s", user))
	case statusMissing:
		return rejected("link_account", errExpiredToken)
	case statusConflict:
		return duplicate("link_account")
	default:
		return storeError("link_account", ErrUnknownStatus)
	}
}

/* ==== CREDENTIALS ==== */

// credentialKey maps a login request onto the stable key its binding is
// stored under.
func (b *Backend) credentialKey(ctx context.Context, req graph.LoginRequest) (string, error) {
	switch req.Type {
	case graph.CredentialDeviceIDAccessToken:
		id, err := b.redis.HGet(ctx, b.deviceKey(), "id").Result()
		if isNil(err) {
			return "", notFound("login", fmt.Errorf("no device id for %s", b.config.Device))
		}
		if err != nil {
			return "", storeError("login", err)
		}
		return internal.CredentialKey(req.Type, req.ID, id), nil

	case graph.CredentialOpenIDAccessToken:
		subject, err := b.verify(req.Token)
		if err != nil {
			return "", err
		}
		return internal.CredentialKey(req.Type, "", subject), nil

	case graph.CredentialFederated:
		subject, err := b.verify(req.Token)
		if err != nil {
			return "", err
		}
		if subject != req.ID {
			return "", rejected("login", fmt.Errorf("token subject does not match account %s", req.ID))
		}
		return internal.CredentialKey(req.Type, req.ID, ""), nil

	default:
		if req.Type == "" || req.Token == "" {
			return "", rejected("login", errEmptyCredential)
		}
		return internal.CredentialKey(req.Type, req.ID, req.Token), nil
	}
}

func (b *Backend) verify(token string) (string, error) {
	if b.config.Verifier == nil {
		return "", graph.NewBackendError("login", graph.CodeUnavailable, ErrVerifierRequired)
	}
	claims, err := b.config.Verifier.Verify(token)
	if err != nil {
		return "", rejected("login", err)
	}
	return claims.Subject, nil
}
