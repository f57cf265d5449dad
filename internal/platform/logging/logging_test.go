package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/trip-budget-api/internal/platform/config"
	"github.com/Overland-East-Bay/trip-budget-api/internal/platform/logging"
)

func TestNew_FileOutputWritesJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "api.log")
	logger, closer, err := logging.New(config.LoggingConfig{
		Level:     "debug",
		Format:    "json",
		Output:    "file",
		FilePath:  path,
		MaxSizeMB: 1,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level=%v", logger.GetLevel())
	}

	logger.WithField("tripId", "t1").Info("itinerary optimized")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(b, &entry); err != nil {
		t.Fatalf("unmarshal %q: %v", b, err)
	}
	if entry["msg"] != "itinerary optimized" || entry["tripId"] != "t1" || entry["level"] != "info" {
		t.Fatalf("entry=%v", entry)
	}
}

func TestNew_RejectsBadSettings(t *testing.T) {
	t.Parallel()

	bad := []config.LoggingConfig{
		{Level: "loud"},
		{Level: "info", Format: "xml"},
		{Level: "info", Output: "syslog"},
	}
	for _, cfg := range bad {
		if _, _, err := logging.New(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}

	if _, c, err := logging.New(config.LoggingConfig{Level: "warn", Format: "text"}); err != nil {
		t.Fatalf("text: %v", err)
	} else if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
