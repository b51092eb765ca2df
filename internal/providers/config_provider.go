package providers

import (
	"errors"
	"fmt"
	"path/filepath"
	"photoaudit/internal/structures"
	"strings"

	"github.com/spf13/viper"
)

const AppName = "PhotoAudit"

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", ".")
	v.SetDefault("review.buckets", []string{"Real", "Fake"})
	v.SetDefault("review.percent", 10.0)
	v.SetDefault("review.decoys.count", 5)
	v.SetDefault("export.dir", ".")
	v.SetDefault("preview.maxWidth", 400)
	v.SetDefault("preview.columns", 3)
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8090)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 32)
	v.SetDefault("commcare.baseUrl", "https://www.commcarehq.org")
	v.SetDefault("commcare.inputsFile", "api_inputs.txt")
	v.SetDefault("commcare.envFile", ".env")
	v.SetDefault("commcare.downloadDir", "downloaded_photos")
	v.SetDefault("commcare.jsonBlock", "commcare")
	v.SetDefault("commcare.limit", 100)
	v.SetDefault("commcare.requestsPerSecond", 2.0)
	v.SetDefault("commcare.timeout", "30s")
	v.SetDefault("commcare.maxRetries", 3)
}

// applyFlags lets command line values win over the file and the environment.
func applyFlags(v *viper.Viper, flags *structures.CliFlags) {
	if flags.Directory != "" {
		v.Set("review.directory", flags.Directory)
	}
	if flags.Questions != "" {
		v.Set("review.questions", splitList(flags.Questions))
	}
	if flags.Buckets != "" {
		v.Set("review.buckets", splitList(flags.Buckets))
	}
	if flags.Percent != 0 {
		v.Set("review.percent", flags.Percent)
	}
	if flags.Reviewer != "" {
		v.Set("review.reviewer", flags.Reviewer)
	}
	if flags.DecoyDir != "" {
		v.Set("review.decoys.enabled", true)
		v.Set("review.decoys.dir", flags.DecoyDir)
	}
	if flags.DecoyCount != 0 {
		v.Set("review.decoys.count", flags.DecoyCount)
	}
	if flags.OutPath != "" {
		v.Set("export.path", flags.OutPath)
	}
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	setDefaults(v)

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.BindEnv("logger.level", "PHOTOAUDIT_LOG_LEVEL")
	v.BindEnv("logger.dir", "PHOTOAUDIT_LOG_DIR")
	v.BindEnv("review.directory", "PHOTOAUDIT_DIRECTORY")
	v.BindEnv("review.reviewer", "PHOTOAUDIT_REVIEWER")
	v.BindEnv("review.percent", "PHOTOAUDIT_PERCENT")
	v.BindEnv("export.dir", "PHOTOAUDIT_EXPORT_DIR")
	v.BindEnv("webServer.port", "PHOTOAUDIT_PORT")
	v.BindEnv("cache.enabled", "PHOTOAUDIT_CACHE_ENABLED")
	v.BindEnv("metrics.enabled", "PHOTOAUDIT_METRICS_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	applyFlags(v, flags)

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode
	conf.Command = flags.Command

	return &conf, nil
}
