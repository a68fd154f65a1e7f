package config

import (
	"flag"
	"os"
	"time"

	"github.com/lighthouse-crew/profilesync/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-w int      autosave debounce window, milliseconds
//	-r string   CRM relay base URL (empty disables the relay)
//	-t string   CRM relay bearer token
//	-q int      CRM relay queue size
//	-x string   Redis address for the status bus (empty keeps it log-only)
//	-n string   Redis channel for save-status events
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - The debounce flag is accepted as an integer in milliseconds and then
//     converted to a time.Duration value.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-w", "-r", "-t", "-q", "-x", "-n", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	autosaveDebounce := fs.Int("w", int(config.AutosaveDebounce.Milliseconds()), "autosave_debounce (in milliseconds)")

	fs.StringVar(&config.RelayBaseURL, "r", config.RelayBaseURL, "CRM relay base URL")
	fs.StringVar(&config.RelayToken, "t", config.RelayToken, "CRM relay bearer token")
	fs.IntVar(&config.RelayQueueSize, "q", config.RelayQueueSize, "CRM relay queue size")

	fs.StringVar(&config.RedisAddr, "x", config.RedisAddr, "Redis address")
	fs.StringVar(&config.RedisChannel, "n", config.RedisChannel, "Redis status channel")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AutosaveDebounce = time.Duration(*autosaveDebounce) * time.Millisecond
}
