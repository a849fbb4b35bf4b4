package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/flagx"
)

// parseFlags overrides Config fields from the command line:
//
//	-a   listen address, e.g. ":8080"
//	-d   PostgreSQL DSN; empty keeps data in memory
//	-s   JWT HMAC secret
//	-t   access token validity, minutes
//	-r   refresh token validity, minutes
//	-R   Redis address for password-reset tokens
//	-u   S3 access key
//	-p   S3 secret key
//	-b   S3 bucket for avatars; empty keeps avatars in memory
//	-g   S3 region
//	-e   S3 base endpoint, e.g. "http://127.0.0.1:9000/"
//	-l   log level
//
// Flags this loader does not define are left for others.
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "listen address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "postgres DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT secret")
	flagx.DurationVar(fs, &config.AccessTokenValidityDuration, "t", time.Minute, "access token validity (minutes)")
	flagx.DurationVar(fs, &config.RefreshTokenValidityDuration, "r", time.Minute, "refresh token validity (minutes)")
	fs.StringVar(&config.RedisAddr, "R", config.RedisAddr, "redis address")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 avatar bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := flagx.ParseOwn(fs, os.Args[1:]); err != nil {
		panic(err)
	}
}
