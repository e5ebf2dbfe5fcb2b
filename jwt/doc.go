// Package jwt issues and verifies OpenID-style identity tokens.
//
// The subject of an identity token is a cross-platform account id. The
// automated testing provider issues them, and the first-party provider and
// the reference backend verify them before exchanging them for a platform
// session.
package jwt
