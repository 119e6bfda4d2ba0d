package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/flashdeck/internal/flagx"
	"github.com/dmitrijs2005/flashdeck/internal/timex"
)

// FlagNames lists the short flags owned by the server configuration; other
// components filter them out of os.Args.
var FlagNames = []string{"-a", "-storage", "-d", "-badger", "-s", "-t", "-cost", "-log", "-seed", "-u", "-p", "-b", "-g", "-e"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string        HTTP bind address (e.g., ":4000")
//	-storage string  storage driver: postgres | badger
//	-d string        PostgreSQL DSN
//	-badger string   badger data directory
//	-s string        JWT HMAC secret key
//	-t string        token validity ("7d", "12h")
//	-cost int        bcrypt cost
//	-log string      log backend: slog | zap | logrus
//	-seed            seed default decks at startup
//	-u string        S3 root user
//	-p string        S3 root password
//	-b string        S3 bucket name
//	-g string        S3 region
//	-e string        S3 base endpoint (e.g., "http://127.0.0.1:9000/")
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], FlagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.StorageDriver, "storage", config.StorageDriver, "storage driver (postgres|badger)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BadgerPath, "badger", config.BadgerPath, "badger data directory")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.String("t", config.TokenValidityDuration.String(), "token validity duration (e.g. 7d, 12h)")
	fs.IntVar(&config.BcryptCost, "cost", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogBackend, "log", config.LogBackend, "log backend (slog|zap|logrus)")
	fs.BoolVar(&config.SeedOnStart, "seed", config.SeedOnStart, "seed default decks at startup")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	d, err := timex.ParseDuration(*tokenValidity)
	if err != nil {
		panic(err)
	}
	config.TokenValidityDuration = d
}
