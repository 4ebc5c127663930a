// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, session tokens and small
identifier helpers.

# Passwords

Passwords are hashed with bcrypt at the default cost:

	hash, err := auth.HashPassword(pw)      // ErrPasswordTooShort under 8 chars
	err = auth.CheckPassword(hash, pw)      // ErrInvalidCredentials on mismatch

# Session Tokens

Sessions are HS256 JWTs carrying the user id (subject) and role:

	token, expiresAt, err := auth.IssueToken(userID, role, secret, ttl, time.Now())
	session, err := auth.ParseToken(token, secret)

Only HS256 is accepted; expired or tampered tokens return ErrInvalidToken.
The role in the token is a hint: middleware reloads the profile on every
request so a demoted or deactivated account loses access immediately.

# IP Hashing

Activity log entries keep a salted hash of the client address, never the
address itself:

	hash := auth.HashIP(ipAddress, salt)

# ID Generation

Random hex IDs for object names:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
