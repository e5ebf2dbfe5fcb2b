package devbackend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/internal"
	"github.com/MrEthical07/authgraph/jwt"
	"github.com/MrEthical07/authgraph/password"
	"github.com/MrEthical07/authgraph/provider/federated"
)

// AccountsConfig configures Accounts.
type AccountsConfig struct {
	// Prefix is shared with the Backend. Empty selects "ag:dev".
	Prefix string
	// Issuer signs access tokens. It must be able to verify them as well.
	Issuer *jwt.Manager
	// Hasher stores account secrets.
	Hasher *password.Hasher

	ExchangeCodeTTL time.Duration
	ContinuanceTTL  time.Duration
	RefreshTTL      time.Duration
}

// Accounts is a Redis federated account service.
type Accounts struct {
	redis  redis.UniversalClient
	config AccountsConfig
	prefix string
}

var _ federated.AccountService = (*Accounts)(nil)

func NewAccounts(client redis.UniversalClient, cfg AccountsConfig) (*Accounts, error) {
	if cfg.Issuer == nil || !cfg.Issuer.CanIssue() {
		return nil, ErrVerifierRequired
	}
	if cfg.Hasher == nil {
		return nil, ErrHasherRequired
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ag:dev"
	}
	if cfg.ExchangeCodeTTL <= 0 {
		cfg.ExchangeCodeTTL = 5 * time.Minute
	}
	if cfg.ContinuanceTTL <= 0 {
		cfg.ContinuanceTTL = 10 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	return &Accounts{redis: client, config: cfg, prefix: cfg.Prefix + ":fed"}, nil
}

func (a *Accounts) accountKey(id federated.AccountID) string { return a.prefix + ":acct:" + id.String() }
func (a *Accounts) emailKey(email string) string { return a.prefix + ":email:" + normalizeEmail(email) }
func (a *Accounts) codeKey(code string) string { return a.prefix + ":code:" + code }
func (a *Accounts) refreshKey(token string) string { return a.prefix + ":refresh:" + token }
func (a *Accounts) sessionsKey(id federated.AccountID) string {
	return a.prefix + ":sessions:" + id.String()
}
func (a *Accounts) developerKey(address, name string) string {
	return a.prefix + ":dev:" + address + ":" + name
}
func (a *Accounts) externalKey(ext string) string { return a.prefix + ":ext:" + ext }
func (a *Accounts) tokenKey(ct string) string { return a.prefix + ":ct:" + ct }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

/* ==== PROVISIONING ==== */

// CreateAccount registers an account signing in with email and secret.
func (a *Accounts) CreateAccount(ctx context.Context, email, secret string) (federated.AccountID, error) {
	if normalizeEmail(email) == "" {
		return "", rejected("create_account", errEmptyCredential)
	}
	hash, err := a.config.Hasher.Hash(secret)
	if err != nil {
		return "", rejected("create_account", err)
	}

	id := federated.AccountID(uuid.NewString())
	claimed, err := a.redis.SetNX(ctx, a.emailKey(email), id.String(), 0).Result()
	if err != nil {
		return "", storeError("create_account", err)
	}
	if !claimed {
		return "", duplicate("create_account")
	}
	if err := a.redis.HSet(ctx, a.accountKey(id),
		"email", normalizeEmail(email),
		"secret", hash,
	).Err(); err != nil {
		return "", storeError("create_account", err)
	}
	return id, nil
}

// IssueExchangeCode returns a single-use code that signs in as account.
func (a *Accounts) IssueExchangeCode(ctx context.Context, account federated.AccountID) (string, error) {
	if err := a.requireAccount(ctx, "issue_exchange_code", account); err != nil {
		return "", err
	}
	code := uuid.NewString()
	if err := a.redis.Set(ctx, a.codeKey(code), account.String(), a.config.ExchangeCodeTTL).Err(); err != nil {
		return "", storeError("issue_exchange_code", err)
	}
	return code, nil
}

// RegisterDeveloperCredential makes the developer tool at address sign in
// as account under name.
func (a *Accounts) RegisterDeveloperCredential(ctx context.Context, address, name string, account federated.AccountID) error {
	if err := a.requireAccount(ctx, "register_developer_credential", account); err != nil {
		return err
	}
	if err := a.redis.Set(ctx, a.developerKey(address, name), account.String(), 0).Err(); err != nil {
		return storeError("register_developer_credential", err)
	}
	return nil
}

/* ==== federated.AccountService ==== */

func (a *Accounts) Login(ctx context.Context, login federated.Login) (federated.AccountID, error) {
	switch login.Kind {
	case federated.LoginExchangeCode:
		return a.lookup("login", a.redis.GetDel(ctx, a.codeKey(login.Token)), true)
	case federated.LoginDeveloper:
		return a.lookup("login", a.redis.Get(ctx, a.developerKey(login.ID, login.Token)), false)
	case federated.LoginPersistent:
		return a.lookup("login", a.redis.Get(ctx, a.refreshKey(login.Token)), true)
	case federated.LoginPassword:
		return a.loginPassword(ctx, login.ID, login.Token)
	default:
		return "", rejected("login", fmt.Errorf("unsupported login kind %s", login.Kind))
	}
}

// LoginExternal resolves a platform credential to its linked account, or a
// continuance token for linking it.
func (a *Accounts) LoginExternal(ctx context.Context, creds graph.ExternalCredentials) (federated.ExternalLoginResult, error) {
	if creds == nil || creds.Token() == "" {
		return federated.ExternalLoginResult{}, rejected("login_external", errEmptyCredential)
	}
	ext := internal.CredentialKey(creds.Type(), creds.ID(), creds.Token())

	account, err := a.redis.Get(ctx, a.externalKey(ext)).Result()
	switch {
	case err == nil:
		return federated.ExternalLoginResult{Account: federated.AccountID(account)}, nil
	case !isNil(err):
		return federated.ExternalLoginResult{}, storeError("login_external", err)
	}

	ct := uuid.NewString()
	if err := a.redis.Set(ctx, a.tokenKey(ct), ext, a.config.ContinuanceTTL).Err(); err != nil {
		return federated.ExternalLoginResult{}, storeError("login_external", err)
	}
	return federated.ExternalLoginResult{ContinuanceToken: graph.ContinuanceToken(ct)}, nil
}

// Interactive signs in with the provided email and secret, or an exchange
// code, and links req.LinkToken to the account when set.
func (a *Accounts) Interactive(ctx context.Context, req federated.InteractiveRequest) (federated.AccountID, error) {
	var (
		account federated.AccountID
		err     error
	)
	if req.Credentials.Type == federated.CredentialExchangeCode {
		account, err = a.Login(ctx, federated.Login{Kind: federated.LoginExchangeCode, Token: req.Credentials.Token})
	} else {
		account, err = a.loginPassword(ctx, req.Credentials.ID, req.Credentials.Token)
	}
	if err != nil {
		return "", err
	}
	if !req.LinkToken.IsValid() {
		return account, nil
	}

	status, err := linkExternalLua.Run(ctx, a.redis,
		[]string{a.tokenKey(string(req.LinkToken))},
		a.prefix, account.String(),
	).Int64()
	if err != nil {
		return "", storeError("interactive_link", err)
	}
	switch status {
	case statusDone:
		return account, nil
	case statusMissing:
		return "", rejected("interactive_link", errExpiredToken)
	case statusConflict:
		return "", duplicate("interactive_link")
	default:
		return "", storeError("interactive_link", ErrUnknownStatus)
	}
}

// CopyToken issues an access token for account and records a refresh token
// that LoginPersistent accepts until SignOut.
func (a *Accounts) CopyToken(ctx context.Context, account federated.AccountID) (federated.Token, error) {
	if err := a.requireAccount(ctx, "copy_token", account); err != nil {
		return federated.Token{}, err
	}
	email, err := a.redis.HGet(ctx, a.accountKey(account), "email").Result()
	if err != nil && !isNil(err) {
		return federated.Token{}, storeError("copy_token", err)
	}

	access, err := a.config.Issuer.Issue(account.String(), email)
	if err != nil {
		return federated.Token{}, graph.NewBackendError("copy_token", graph.CodeUnexpected, err)
	}
	claims, err := a.config.Issuer.Verify(access)
	if err != nil {
		return federated.Token{}, graph.NewBackendError("copy_token", graph.CodeUnexpected, err)
	}

	refresh := uuid.NewString()
	_, err = a.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, a.refreshKey(refresh), account.String(), a.config.RefreshTTL)
		p.SAdd(ctx, a.sessionsKey(account), refresh)
		p.Expire(ctx, a.sessionsKey(account), a.config.RefreshTTL)
		return nil
	})
	if err != nil {
		return federated.Token{}, storeError("copy_token", err)
	}

	return federated.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}

// SignOut revokes every refresh token of account.
func (a *Accounts) SignOut(ctx context.Context, account federated.AccountID) error {
	if err := signOutLua.Run(ctx, a.redis, []string{a.sessionsKey(account)}, a.prefix).Err(); err != nil {
		return storeError("sign_out", err)
	}
	return nil
}

/* ==== HELPERS ==== */

func (a *Accounts) loginPassword(ctx context.Context, email, secret string) (federated.AccountID, error) {
	id, err := a.lookup("login", a.redis.Get(ctx, a.emailKey(email)), false)
	if err != nil {
		return "", err
	}
	stored, err := a.redis.HGet(ctx, a.accountKey(id), "secret").Result()
	if isNil(err) {
		return "", notFound("login", nil)
	}
	if err != nil {
		return "", storeError("login", err)
	}

	ok, err := a.config.Hasher.Verify(secret, stored)
	if err != nil || !ok {
		return "", rejected("login", err)
	}
	if upgrade, _ := a.config.Hasher.NeedsRehash(stored); upgrade {
		if hash, herr := a.config.Hasher.Hash(secret); herr == nil {
			_ = a.redis.HSet(ctx, a.accountKey(id), "secret", hash).Err()
		}
	}
	return id, nil
}

// lookup reads an account id. A missing key is CodeInvalidCredentials when
// the key holds a credential and CodeNotFound when it holds a registration.
func (a *Accounts) lookup(op string, cmd *redis.StringCmd, credential bool) (federated.AccountID, error) {
	v, err := cmd.Result()
	switch {
	case isNil(err) && credential:
		return "", rejected(op, nil)
	case isNil(err):
		return "", notFound(op, nil)
	case err != nil:
		return "", storeError(op, err)
	}
	return federated.AccountID(v), nil
}

func (a *Accounts) requireAccount(ctx context.Context, op string, account federated.AccountID) error {
	if !account.IsValid() {
		return notFound(op, nil)
	}
	n, err := a.redis.Exists(ctx, a.accountKey(account)).Result()
	if err != nil {
		return storeError(op, err)
	}
	if n == 0 {
		return notFound(op, fmt.Errorf("account %s", account))
	}
	return nil
}
