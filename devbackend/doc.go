// Package devbackend is a Redis-backed platform backend and federated account
// service for local development and integration tests.
//
// [Backend] implements graph.Backend, graph.DeviceIDBackend and
// graph.LinkBackend. Credentials are bound to users under hashed keys;
// unbound credentials receive a short-lived continuance token that
// [Backend.CreateUser] and [Backend.LinkAccount] consume atomically through
// Lua scripts.
//
// [Accounts] implements federated.AccountService. Account secrets are stored
// as Argon2id hashes and access tokens are identity JWTs whose subject is the
// account id, so a Backend sharing the same verifier accepts them as FEDERATED
// credentials.
//
// Key layout, with the default prefix:
//
//	ag:dev:device:<name>        hash  id, model
//	ag:dev:bind:<credential>    user id
//	ag:dev:ct:<token>           credential key, expiring
//	ag:dev:user:<id>            hash  created_at, signed_out_at
//	ag:dev:user:<id>:creds      set of credential keys
//	ag:dev:fed:...              account service keys
package devbackend
