package devbackend

import "github.com/redis/go-redis/v9"

const (
	statusMissing  int64 = 0
	statusDone     int64 = 1
	statusConflict int64 = 2
	statusNoOwner  int64 = -1
)

// KEYS[1] continuance token, ARGV[1] prefix, ARGV[2] new user id,
// ARGV[3] creation time. Returns {status, user id}.
const createUserScript = `
local cred = redis.call("GET", KEYS[1])
if not cred then
  return {0, ""}
end
local bind = ARGV[1] .. ":bind:" .. cred
local existing = redis.call("GET", bind)
if existing then
  redis.call("DEL", KEYS[1])
  return {2, existing}
end
local user = ARGV[1] .. ":user:" .. ARGV[2]
redis.call("SET", bind, ARGV[2])
redis.call("HSET", user, "created_at", ARGV[3])
redis.call("SADD", user .. ":creds", cred)
redis.call("DEL", KEYS[1])
return {1, ARGV[2]}
`

// KEYS[1] continuance token, KEYS[2] user hash, ARGV[1] prefix,
// ARGV[2] user id.
const linkScript = `
if redis.call("EXISTS", KEYS[2]) == 0 then
  return -1
end
local cred = redis.call("GET", KEYS[1])
if not cred then
  return 0
end
if redis.call("SETNX", ARGV[1] .. ":bind:" .. cred, ARGV[2]) == 0 then
  return 2
end
redis.call("SADD", KEYS[2] .. ":creds", cred)
redis.call("DEL", KEYS[1])
return 1
`

// KEYS[1] federated continuance token, ARGV[1] federated prefix,
// ARGV[2] account id.
const linkExternalScript = `
local ext = redis.call("GET", KEYS[1])
if not ext then
  return 0
end
if redis.call("SETNX", ARGV[1] .. ":ext:" .. ext, ARGV[2]) == 0 then
  return 2
end
redis.call("DEL", KEYS[1])
return 1
`

// KEYS[1] session set of an account, ARGV[1] federated prefix. Returns the
// number of refresh tokens revoked.
const signOutScript = `
local tokens = redis.call("SMEMBERS", KEYS[1])
for _, t in ipairs(tokens) do
  redis.call("DEL", ARGV[1] .. ":refresh:" .. t)
end
redis.call("DEL", KEYS[1])
return #tokens
`

var (
	createUserLua   = redis.NewScript(createUserScript)
	linkLua         = redis.NewScript(linkScript)
	linkExternalLua = redis.NewScript(linkExternalScript)
	signOutLua      = redis.NewScript(signOutScript)
)
