package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/h-wang94/terraforming-mars/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "GAMESTORE_LOG_LEVEL")
	viper.BindEnv("storage.dir", "GAMESTORE_STORAGE_DIR")
	viper.BindEnv("archive.dir", "GAMESTORE_ARCHIVE_DIR")
	viper.BindEnv("cache.enabled", "GAMESTORE_CACHE_ENABLED")
	viper.BindEnv("cache.size", "GAMESTORE_CACHE_SIZE")
	viper.BindEnv("webServer.port", "GAMESTORE_PORT")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "GameStateDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
