package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1|max:65535"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required"`
}

type DecoyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Count   int    `yaml:"count"`
}

// ReviewConfig holds the session parameters the reviewer would otherwise
// pick on the configuration screen.
type ReviewConfig struct {
	Directory string      `yaml:"directory"`
	Questions []string    `yaml:"questions"`
	Buckets   []string    `yaml:"buckets"`
	Percent   float64     `yaml:"percent"`
	Reviewer  string      `yaml:"reviewer"`
	Decoys    DecoyConfig `yaml:"decoys"`
}

type ExportConfig struct {
	Dir  string `yaml:"dir"`
	Path string `yaml:"path"`
}

type PreviewConfig struct {
	MaxWidth int    `yaml:"maxWidth" validate:"required|min:16|max:4096"`
	Columns  int    `yaml:"columns" validate:"required|min:1|max:12"`
	Dir      string `yaml:"dir"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size" validate:"min:0"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CommCareConfig struct {
	BaseURL           string        `yaml:"baseUrl"`
	InputsFile        string        `yaml:"inputsFile"`
	EnvFile           string        `yaml:"envFile"`
	DownloadDir       string        `yaml:"downloadDir"`
	JSONBlock         string        `yaml:"jsonBlock"`
	Limit             int           `yaml:"limit" validate:"min:0"`
	MaxForms          int           `yaml:"maxForms" validate:"min:0"`
	ReceivedStart     string        `yaml:"receivedStart"`
	ReceivedEnd       string        `yaml:"receivedEnd"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"maxRetries" validate:"min:0"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Command   string
	Logger    LoggerConfig   `yaml:"logger"`
	Review    ReviewConfig   `yaml:"review"`
	Export    ExportConfig   `yaml:"export"`
	Preview   PreviewConfig  `yaml:"preview"`
	WebServer Server         `yaml:"webServer"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
	CommCare  CommCareConfig `yaml:"commcare"`
}
