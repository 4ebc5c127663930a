// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are resolved in this order, later winning:

 1. defaults
 2. a .env file in the working directory (never overrides the real environment)
 3. environment variables
 4. CLI flags

# Environment Variables and Flags

	PORT              -p               Server port (default 3318)
	DATABASE_URL      -d               Database URL (required)
	DATABASE_TYPE     -t               sqlite or postgres (default sqlite)
	JWT_SECRET        --jwt-secret     Session signing secret (required)
	SESSION_TTL       --session-ttl    Session lifetime (default 24h)
	SUPPORT_ADMIN_ID  --support-admin  Fallback recipient of voter messages
	SUPPORT_ROUTING   --support-routing fixed or assigned (default fixed)
	STORAGE_DIR       --storage        Upload directory (default ./storage)
	PUBLIC_BASE_URL   --public-url     Base of public file URLs
	REQUEST_TIMEOUT   --timeout        Per-request timeout (default 15s)
	LOG_LEVEL         --log-level      debug, info, warn, error
	RATE_LIMIT_RPS                     Requests per second per client (default 5)
	RATE_LIMIT_BURST                   Burst size (default 10)
	MAX_AVATAR_BYTES                   Upload limit (default 2 MiB)
	ENVIRONMENT                        development or production

# Validation

ParseFlags returns an error if DATABASE_URL or JWT_SECRET is missing, if
DATABASE_TYPE or SUPPORT_ROUTING is unknown, or if a duration is not
positive.
*/
package cliparse
