package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"main/internal/heartbeat"
	"main/internal/journal"
	"main/internal/server"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Queues    QueuesConfig     `json:"queues"`
	RingSize  int              `json:"ringSize"`
	Heartbeat HeartbeatConfig  `json:"heartbeat"`
	Kafka     KafkaConfig      `json:"kafka"`
	Journal   JournalConfig    `json:"journal"`
	Providers []ProviderConfig `json:"providers"`
}

// QueuesConfig overrides individual queue names. Empty fields keep the
// defaults.
type QueuesConfig struct {
	Login          string `json:"login"`
	Logout         string `json:"logout"`
	Inquiry        string `json:"inquiry"`
	AppInfo        string `json:"appInfo"`
	Heartbeat      string `json:"heartbeat"`
	OrderRequest   string `json:"orderRequest"`
	LocateResponse string `json:"locateResponse"`
	ReplyPrefix    string `json:"replyPrefix"`
}

// HeartbeatConfig sets the liveness watchdog, in milliseconds.
type HeartbeatConfig struct {
	ThresholdMs int `json:"thresholdMs"`
	IntervalMs  int `json:"intervalMs"`
}

// KafkaConfig locates the message transport.
type KafkaConfig struct {
	Brokers []string `json:"brokers"`
	GroupID string   `json:"groupId"`
}

// JournalConfig describes the execution journal database. Disabled when
// empty.
type JournalConfig struct {
	Enabled    bool   `json:"enabled"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	User       string `json:"user"`
	Password   string `json:"password"`
	Database   string `json:"database"`
	SSLMode    string `json:"sslMode"`
	BufferSize int    `json:"bufferSize"`
}

// ProviderConfig declares one execution provider gateway.
type ProviderConfig struct {
	Name     string          `json:"name"`
	Driver   string          `json:"driver"`
	Settings json.RawMessage `json:"settings"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Server    server.Config
	Kafka     KafkaConfig
	Journal   journal.Option
	Journaled bool
	Providers []ProviderConfig
}

// Load reads a JSON config file and resolves it.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return resolve(cfg)
}

func resolve(cfg FileConfig) (Loaded, error) {
	queues := resolveQueues(cfg.Queues)

	if cfg.RingSize < 0 {
		return Loaded{}, fmt.Errorf("ringSize must be >= 0")
	}
	threshold := heartbeat.DefaultThreshold
	if cfg.Heartbeat.ThresholdMs > 0 {
		threshold = time.Duration(cfg.Heartbeat.ThresholdMs) * time.Millisecond
	}
	interval := heartbeat.DefaultInterval
	if cfg.Heartbeat.IntervalMs > 0 {
		interval = time.Duration(cfg.Heartbeat.IntervalMs) * time.Millisecond
	}
	if interval > threshold {
		return Loaded{}, fmt.Errorf("heartbeat interval %s exceeds threshold %s", interval, threshold)
	}

	seen := make(map[string]struct{}, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if p.Name == "" {
			return Loaded{}, fmt.Errorf("provider with empty name")
		}
		if p.Driver == "" {
			return Loaded{}, fmt.Errorf("provider %s: empty driver", p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return Loaded{}, fmt.Errorf("duplicate provider name: %s", p.Name)
		}
		seen[p.Name] = struct{}{}
	}

	loaded := Loaded{
		Server: server.Config{
			Queues:             queues,
			RingSize:           cfg.RingSize,
			HeartbeatThreshold: threshold,
			HeartbeatInterval:  interval,
		},
		Kafka:     cfg.Kafka,
		Providers: cfg.Providers,
	}

	if cfg.Journal.Enabled {
		if cfg.Journal.Database == "" {
			return Loaded{}, fmt.Errorf("journal enabled with empty database")
		}
		loaded.Journaled = true
		loaded.Journal = journal.Option{
			Host:       cfg.Journal.Host,
			Port:       cfg.Journal.Port,
			User:       cfg.Journal.User,
			Password:   cfg.Journal.Password,
			Database:   cfg.Journal.Database,
			SSLMode:    cfg.Journal.SSLMode,
			BufferSize: cfg.Journal.BufferSize,
		}
	}
	return loaded, nil
}

func resolveQueues(cfg QueuesConfig) server.Queues {
	q := server.DefaultQueues()
	if cfg.Login != "" {
		q.Login = cfg.Login
	}
	if cfg.Logout != "" {
		q.Logout = cfg.Logout
	}
	if cfg.Inquiry != "" {
		q.Inquiry = cfg.Inquiry
	}
	if cfg.AppInfo != "" {
		q.AppInfo = cfg.AppInfo
	}
	if cfg.Heartbeat != "" {
		q.Heartbeat = cfg.Heartbeat
	}
	if cfg.OrderRequest != "" {
		q.OrderRequest = cfg.OrderRequest
	}
	if cfg.LocateResponse != "" {
		q.LocateResponse = cfg.LocateResponse
	}
	if cfg.ReplyPrefix != "" {
		q.ReplyPrefix = cfg.ReplyPrefix
	}
	return q
}
