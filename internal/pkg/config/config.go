// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Parsing содержит настройки разбора страниц архива
type Parsing struct {
	Encoding string `yaml:"encoding"` // windows-1251 или utf-8
	// ID владельца архива: его сообщения в архиве идут без ссылки на автора
	SelfID             int64         `yaml:"self_id"`
	ProfileURLPrefix   string        `yaml:"profile_url_prefix"`
	TimezoneCorrection time.Duration `yaml:"timezone_correction"`
}

// Processing содержит конфигурацию обработки
type Processing struct {
	Workers int `yaml:"workers"` // 0 - по числу доступных процессоров
}

// Output содержит конфигурацию вывода результата
type Output struct {
	Dir      string `yaml:"dir"`
	Pretty   bool   `yaml:"pretty"`
	Stdout   bool   `yaml:"stdout"`
	Progress bool   `yaml:"progress"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	// Длинные фрагменты входных данных в логах обрезаются до этого числа символов
	MaxFragmentLength int `yaml:"max_fragment_length"`
}

// Config содержит конфигурацию приложения
type Config struct {
	Parsing    Parsing    `yaml:"parsing"`
	Processing Processing `yaml:"processing"`
	Output     Output     `yaml:"output"`
	Logging    Logging    `yaml:"logging"`
}

// defaultConfig возвращает конфигурацию со значениями по умолчанию
func defaultConfig() *Config {
	return &Config{
		Parsing: Parsing{
			Encoding:           DefaultEncoding,
			SelfID:             DefaultSelfID,
			ProfileURLPrefix:   DefaultProfileURLPrefix,
			TimezoneCorrection: DefaultTimezoneCorrection,
		},
		Processing: Processing{
			Workers: DefaultWorkers,
		},
		Output: Output{
			Dir:      DefaultOutputDir,
			Pretty:   DefaultPretty,
			Progress: DefaultProgress,
		},
		Logging: Logging{
			Level:             DefaultLogLevel,
			Format:            DefaultLogFormat,
			MaxFragmentLength: DefaultMaxFragmentLength,
		},
	}
}

// LoadConfig загружает конфигурацию из YAML-файла поверх значений по умолчанию.
// Если путь не указан, читается config.yml из текущей папки, если он есть.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	if err := loadFromYAML(path, cfg); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	return cfg, nil
}

// loadFromYAML загружает конфигурацию из YAML-файла
func loadFromYAML(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}

	return nil
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	switch strings.ToLower(c.Parsing.Encoding) {
	case "windows-1251", "cp1251", "utf-8", "utf8":
		// all good
	default:
		return fmt.Errorf("parsing.encoding должен быть одним из: windows-1251, utf-8")
	}

	if c.Parsing.SelfID < 0 {
		return fmt.Errorf("parsing.self_id должно быть неотрицательным: это ID пользователя")
	}

	if !strings.HasSuffix(c.Parsing.ProfileURLPrefix, "/") {
		return fmt.Errorf("parsing.profile_url_prefix должен заканчиваться на /")
	}

	if c.Parsing.TimezoneCorrection%time.Second != 0 {
		return fmt.Errorf("parsing.timezone_correction должно быть целым числом секунд")
	}

	if c.Processing.Workers < 0 {
		return fmt.Errorf("processing.workers должно быть неотрицательным (0 для числа процессоров)")
	}

	if c.Output.Dir == "" && !c.Output.Stdout {
		return fmt.Errorf("output.dir не может быть пустым")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "text", "json":
		// all good
	default:
		return fmt.Errorf("logging.format должен быть одним из: text, json")
	}

	if c.Logging.MaxFragmentLength <= 0 {
		return fmt.Errorf("logging.max_fragment_length должно быть положительным")
	}

	return nil
}
