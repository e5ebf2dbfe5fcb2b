// Package password hashes and verifies secrets with Argon2id.
//
// Hashes use the PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The development backend stores developer tool credentials with it.
// [Hasher.NeedsRehash] reports hashes produced with weaker parameters so they
// can be replaced on the next successful verification.
//
// The package never stores secrets and never logs them.
package password
