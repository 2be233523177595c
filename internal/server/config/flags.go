package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/medsupply/internal/flagx"
)

var knownFlags = []string{
	"-a", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e", "-l",
	"-issue-token", "--issue-token",
}

// parseFlags overlays command-line flags onto config.
//
//	-a string       gRPC bind address (e.g. ":50051")
//	-d string       PostgreSQL DSN
//	-s string       JWT HMAC secret key
//	-t duration     validity of issued tokens (e.g. "720h")
//	-u string       S3 root user
//	-p string       S3 root password
//	-b string       S3 bucket name
//	-g string       S3 region
//	-e string       S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//	-l string       log level
//	-issue-token    print an access token for the given user and exit
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token validity")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.IssueToken, "issue-token", config.IssueToken, "print an access token for this user and exit")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}
