package config

// Config is the top-level YAML structure.
type Config struct {
	Server    ServerConf    `yaml:"server"`
	Redis     RedisConf     `yaml:"redis"`
	Telemetry TelemetryConf `yaml:"telemetry"`
	Ingest    IngestConf    `yaml:"ingest"`
}

// ServerConf holds HTTP listener settings.
type ServerConf struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
	IdleTimeoutMs  int    `yaml:"idle_timeout_ms"`
}

// RedisConf configures the remote tier. An empty Addr is the sole switch
// that disables it: the store then runs on the local and memory tiers.
type RedisConf struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// TelemetryConf holds event store settings.
type TelemetryConf struct {
	LocalPath      string `yaml:"local_path"`
	ReadLimit      int    `yaml:"read_limit"`
	ProbeTimeoutMs int    `yaml:"probe_timeout_ms"`
}

// IngestConf holds tunable ingest pool settings.
type IngestConf struct {
	WriteWorkers   int `yaml:"write_workers"`
	QueueDepth     int `yaml:"queue_depth"`
	WriteTimeoutMs int `yaml:"write_timeout_ms"`
}
