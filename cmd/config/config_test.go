package config

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, parse(fs, nil, env(nil)))

	assert.Equal(t, ":8084", FlagRunAddr)
	assert.Equal(t, "info", FlagLogLevel)
	assert.Equal(t, int64(1<<20), MaxBodyBytes)
	assert.Equal(t, 10*time.Second, ShutdownTimeout)
	assert.False(t, EnablePprof)
	assert.False(t, EnableHTTPS)
	assert.Equal(t, "server.crt", TLSCertFile)
	assert.Equal(t, "server.key", TLSKeyFile)
}

func TestParseEnvOverridesFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	args := []string{"-a", ":9000", "-l", "debug", "-b", "512"}
	err := parse(fs, args, env(map[string]string{
		"SERVER_ADDRESS":   "0.0.0.0:8084",
		"SHUTDOWN_TIMEOUT": "3s",
		"ENABLE_PPROF":     "true",
		"ENABLE_HTTPS":     "1",
		"TLS_CERT_FILE":    "/etc/gw/tls.crt",
		"TLS_KEY_FILE":     "/etc/gw/tls.key",
	}))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8084", FlagRunAddr)
	assert.Equal(t, "debug", FlagLogLevel)
	assert.Equal(t, int64(512), MaxBodyBytes)
	assert.Equal(t, 3*time.Second, ShutdownTimeout)
	assert.True(t, EnablePprof)
	assert.True(t, EnableHTTPS)
	assert.Equal(t, "/etc/gw/tls.crt", TLSCertFile)
	assert.Equal(t, "/etc/gw/tls.key", TLSKeyFile)
}

func TestParseInvalidEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "body size", env: map[string]string{"MAX_BODY_BYTES": "lots"}},
		{name: "timeout", env: map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
		{name: "pprof", env: map[string]string{"ENABLE_PPROF": "maybe"}},
		{name: "https", env: map[string]string{"ENABLE_HTTPS": "sometimes"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			assert.Error(t, parse(fs, nil, env(test.env)))
		})
	}
}

func TestParseNonPositiveBodyFallsBack(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, parse(fs, []string{"-b", "0"}, env(nil)))
	assert.Equal(t, DefaultMaxBodyBytes, MaxBodyBytes)
}
