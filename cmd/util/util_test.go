package util

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("line longer than %d characters: %q", Wrap, line)
		}
	}
	if got := WrapString("  short   text "); got != "short text" {
		t.Errorf("WrapString collapsed spaces incorrectly: %q", got)
	}
	if got := WrapString(""); got != "" {
		t.Errorf("WrapString(\"\") = %q", got)
	}
}

func TestGetClientConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("endpoints", "a:1, b:2,,")
	viper.Set("timeout", 7)
	viper.Set("retries", 2)
	viper.Set("conn-per-endpoint", 4)
	viper.Set("tcp-nodelay", true)

	config := GetClientConfig()
	if len(config.Endpoints) != 2 || config.Endpoints[0] != "a:1" || config.Endpoints[1] != "b:2" {
		t.Errorf("unexpected endpoints: %v", config.Endpoints)
	}
	if config.TimeoutSecond != 7 || config.RetryCount != 2 || config.ConnectionsPerEndpoint != 4 || !config.TCPNoDelay {
		t.Errorf("unexpected config: %+v", config)
	}
}

func TestSelection(t *testing.T) {
	t.Cleanup(viper.Reset)

	for _, name := range []string{"http", "tcp", "unix"} {
		viper.Set("transport", name)
		if _, err := GetClientTransport(); err != nil {
			t.Errorf("client transport %s: %v", name, err)
		}
		if _, err := GetServerTransport(); err != nil {
			t.Errorf("server transport %s: %v", name, err)
		}
	}
	viper.Set("transport", "udp")
	if _, err := GetClientTransport(); err == nil {
		t.Error("expected error for unknown client transport")
	}
	if _, err := GetServerTransport(); err == nil {
		t.Error("expected error for unknown server transport")
	}

	for _, name := range []string{"json", "gob", "binary", "proto", "resp"} {
		viper.Set("serializer", name)
		if _, err := GetSerializer(); err != nil {
			t.Errorf("serializer %s: %v", name, err)
		}
	}
	viper.Set("serializer", "xml")
	if _, err := GetSerializer(); err == nil {
		t.Error("expected error for unknown serializer")
	}
}

func TestInitConfigReadsEnvironment(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("HKV_LOG_LEVEL", "debug")

	InitConfig()
	if got := viper.GetString("log-level"); got != "debug" {
		t.Errorf("log-level = %q, want debug", got)
	}
}
