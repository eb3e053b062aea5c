// Package auth issues and verifies the bearer tokens that guard Luminary's
// control endpoints.
//
// Tokens are HS256 JWTs signed with the api.auth.jwt_secret from config.
// There are no user accounts: a token names its holder (the subject) and
// carries the control scope. Reads such as the show catalogue and the
// preview stream stay open.
package auth
