package common

import (
	"strings"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logger.LogLevel
		wantErr bool
	}{
		{"debug", logger.DEBUG, false},
		{"INFO", logger.INFO, false},
		{"", logger.INFO, false},
		{"warn", logger.WARNING, false},
		{"warning", logger.WARNING, false},
		{"error", logger.ERROR, false},
		{"verbose", logger.INFO, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitLoggers(t *testing.T) {
	if err := InitLoggers("loud"); err == nil {
		t.Error("Expected error for invalid log level")
	}
	if err := InitLoggers("error"); err != nil {
		t.Fatalf("Failed to init loggers: %v", err)
	}
	if err := InitLoggers("info"); err != nil {
		t.Fatalf("Failed to init loggers: %v", err)
	}
}

func TestConfigString(t *testing.T) {
	server := DefaultServerConfig()
	server.MemtableShards = 16
	out := server.String()
	for _, want := range []string{"RPC SERVER", ":8080", "Memtable Shards", "16", "512 KB", "LOGGING"} {
		if !strings.Contains(out, want) {
			t.Errorf("Server config string is missing %q:\n%s", want, out)
		}
	}

	client := ClientConfig{Endpoints: []string{"localhost:8080", "localhost:8081"}, TimeoutSecond: 3}
	out = client.String()
	for _, want := range []string{"CLIENT CONFIGURATION", "3 sec", "localhost:8081"} {
		if !strings.Contains(out, want) {
			t.Errorf("Client config string is missing %q:\n%s", want, out)
		}
	}
}
