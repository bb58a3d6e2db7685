package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/flagx"
)

// parseFlags applies the short command-line flags:
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-m string   metrics bind address, empty disables /metrics
//	-k string   storage driver: sqlite or postgres
//	-d string   database DSN or SQLite file path
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-l string   log level
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-m", "-k", "-d", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address for the /metrics endpoint")
	fs.StringVar(&config.Driver, "k", config.Driver, "storage driver (sqlite|postgres)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*tokenMinutes) * time.Minute

	if config.Driver != DriverSQLite && config.Driver != DriverPostgres {
		panic(fmt.Sprintf("unknown storage driver %q", config.Driver))
	}
}
