package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	FlagRunAddr         string
	FlagLogLevel        string
	MaxBodyBytes        int64
	ShutdownTimeout     time.Duration
	EnablePprof         bool
	EnableHTTPS         bool
	TLSCertFile         string
	TLSKeyFile          string
	DefaultRunAddr      = ":8084"
	DefaultMaxBodyBytes = int64(1 << 20)
)

// ParseFlags читает флаги командной строки, затем переменные окружения.
// Переменные окружения имеют приоритет. Файл .env подхватывается, если он есть.
func ParseFlags() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return parse(flag.CommandLine, os.Args[1:], os.Getenv)
}

func parse(fs *flag.FlagSet, args []string, getenv func(string) string) error {
	fs.StringVar(&FlagRunAddr, "a", DefaultRunAddr, "address and port to run server")
	fs.StringVar(&FlagLogLevel, "l", "info", "log level")
	fs.Int64Var(&MaxBodyBytes, "b", DefaultMaxBodyBytes, "max request body size in bytes")
	fs.DurationVar(&ShutdownTimeout, "t", 10*time.Second, "graceful shutdown timeout")
	fs.BoolVar(&EnablePprof, "p", false, "mount /debug/pprof handlers")
	fs.BoolVar(&EnableHTTPS, "s", false, "serve HTTPS with a self-signed certificate")
	fs.StringVar(&TLSCertFile, "cert", "server.crt", "TLS certificate path")
	fs.StringVar(&TLSKeyFile, "key", "server.key", "TLS key path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if envRunAddr := getenv("SERVER_ADDRESS"); envRunAddr != "" {
		FlagRunAddr = envRunAddr
	}

	if envLogLevel := getenv("LOG_LEVEL"); envLogLevel != "" {
		FlagLogLevel = envLogLevel
	}

	if envBody := getenv("MAX_BODY_BYTES"); envBody != "" {
		v, err := strconv.ParseInt(envBody, 10, 64)
		if err != nil {
			return fmt.Errorf("parse MAX_BODY_BYTES: %w", err)
		}
		MaxBodyBytes = v
	}

	if envTimeout := getenv("SHUTDOWN_TIMEOUT"); envTimeout != "" {
		v, err := time.ParseDuration(envTimeout)
		if err != nil {
			return fmt.Errorf("parse SHUTDOWN_TIMEOUT: %w", err)
		}
		ShutdownTimeout = v
	}

	if envPprof := getenv("ENABLE_PPROF"); envPprof != "" {
		v, err := strconv.ParseBool(envPprof)
		if err != nil {
			return fmt.Errorf("parse ENABLE_PPROF: %w", err)
		}
		EnablePprof = v
	}

	if envHTTPS := getenv("ENABLE_HTTPS"); envHTTPS != "" {
		v, err := strconv.ParseBool(envHTTPS)
		if err != nil {
			return fmt.Errorf("parse ENABLE_HTTPS: %w", err)
		}
		EnableHTTPS = v
	}

	if envCert := getenv("TLS_CERT_FILE"); envCert != "" {
		TLSCertFile = envCert
	}

	if envKey := getenv("TLS_KEY_FILE"); envKey != "" {
		TLSKeyFile = envKey
	}

	if MaxBodyBytes <= 0 {
		MaxBodyBytes = DefaultMaxBodyBytes
	}

	return nil
}
