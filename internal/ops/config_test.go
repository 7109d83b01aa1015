package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `{
		"queues": {"login": "custom.login", "replyPrefix": "custom.reply."},
		"ringSize": 1024,
		"heartbeat": {"thresholdMs": 30000, "intervalMs": 10000},
		"kafka": {"brokers": ["k1:9092", "k2:9092"], "groupId": "oes-test"},
		"journal": {"enabled": true, "host": "db", "port": 5433, "user": "oes", "database": "journal"},
		"providers": [
			{"name": "Sim", "driver": "sim", "settings": {"ConnectOnStart": true}}
		]
	}`)

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Server.Queues.Login != "custom.login" {
		t.Fatalf("login queue mismatch! got %s", loaded.Server.Queues.Login)
	}
	if loaded.Server.Queues.ReplyPrefix != "custom.reply." {
		t.Fatalf("reply prefix mismatch! got %s", loaded.Server.Queues.ReplyPrefix)
	}
	// unset queue names keep the defaults
	if loaded.Server.Queues.OrderRequest != "oes.orders" {
		t.Fatalf("order queue mismatch! got %s", loaded.Server.Queues.OrderRequest)
	}
	if loaded.Server.RingSize != 1024 {
		t.Fatalf("ring size mismatch! got %d", loaded.Server.RingSize)
	}
	if loaded.Server.HeartbeatThreshold != 30*time.Second {
		t.Fatalf("threshold mismatch! got %v", loaded.Server.HeartbeatThreshold)
	}
	if len(loaded.Kafka.Brokers) != 2 || loaded.Kafka.GroupID != "oes-test" {
		t.Fatalf("kafka mismatch! got %+v", loaded.Kafka)
	}
	if !loaded.Journaled || loaded.Journal.Database != "journal" || loaded.Journal.Port != 5433 {
		t.Fatalf("journal mismatch! got %+v", loaded.Journal)
	}
	if len(loaded.Providers) != 1 || loaded.Providers[0].Name != "Sim" {
		t.Fatalf("providers mismatch! got %+v", loaded.Providers)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `{}`)

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Server.Queues.Login != "oes.login" {
		t.Fatalf("default login queue mismatch! got %s", loaded.Server.Queues.Login)
	}
	if loaded.Journaled {
		t.Fatalf("journal enabled by default")
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	testCases := []struct {
		desc string
		body string
	}{
		{"duplicate provider", `{"providers": [{"name": "Sim", "driver": "sim"}, {"name": "Sim", "driver": "sim"}]}`},
		{"empty provider name", `{"providers": [{"name": "", "driver": "sim"}]}`},
		{"empty driver", `{"providers": [{"name": "Sim", "driver": ""}]}`},
		{"interval above threshold", `{"heartbeat": {"thresholdMs": 1000, "intervalMs": 5000}}`},
		{"journal without database", `{"journal": {"enabled": true}}`},
		{"negative ring size", `{"ringSize": -1}`},
		{"malformed json", `{`},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			path := writeConfig(t, tc.body)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error for %s", tc.desc)
			}
		})
	}
}
