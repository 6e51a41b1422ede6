package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vk-archive-parser/internal/adapters/decoder"
	"vk-archive-parser/internal/adapters/exporter"
	"vk-archive-parser/internal/adapters/parser"
	"vk-archive-parser/internal/core/services"
	"vk-archive-parser/internal/log"
	"vk-archive-parser/internal/pkg/config"
	"vk-archive-parser/internal/pkg/term"
	"vk-archive-parser/internal/ports"
	"vk-archive-parser/internal/usecase"
)

// flags содержит значения флагов командной строки.
// Флаг переопределяет значение из конфигурации, только если он задан явно.
type flags struct {
	configPath string
	outputDir  string
	selfID     int64
	workers    int
	stdout     bool
	pretty     bool
	noProgress bool
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd(&flags{}).Execute(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vk-archive-parser [flags] <chat-folder>...",
		Short:         "Переводит папки чатов из архива VK в JSON",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "путь к YAML-файлу конфигурации (по умолчанию config.yml, если есть)")
	fs.StringVarP(&f.outputDir, "output", "o", config.DefaultOutputDir, "папка для JSON-файлов")
	fs.Int64Var(&f.selfID, "self-id", config.DefaultSelfID, "ID владельца архива")
	fs.IntVar(&f.workers, "workers", config.DefaultWorkers, "число файлов, разбираемых одновременно (0 - по числу процессоров)")
	fs.BoolVar(&f.stdout, "stdout", false, "писать JSON в stdout вместо файлов")
	fs.BoolVar(&f.pretty, "pretty", config.DefaultPretty, "форматировать JSON с отступами")
	fs.BoolVar(&f.noProgress, "no-progress", false, "не показывать индикатор прогресса")
	fs.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "уровень логирования: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", config.DefaultLogFormat, "формат логов: text, json")

	return cmd
}

// loadConfig читает конфигурацию и применяет к ней явно заданные флаги.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("output") {
		cfg.Output.Dir = f.outputDir
	}
	if fs.Changed("self-id") {
		cfg.Parsing.SelfID = f.selfID
	}
	if fs.Changed("workers") {
		cfg.Processing.Workers = f.workers
	}
	if fs.Changed("stdout") {
		cfg.Output.Stdout = f.stdout
	}
	if fs.Changed("pretty") {
		cfg.Output.Pretty = f.pretty
	}
	if fs.Changed("no-progress") {
		cfg.Output.Progress = !f.noProgress
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run(cmd *cobra.Command, f *flags, dirs []string) error {
	// 1. Загрузка и валидация конфигурации
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Инициализация логгера. stdout занят результатом, поэтому логи идут в stderr
	logger := log.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.MaxFragmentLength).
		With(slog.String("run_id", uuid.NewString()))
	slog.SetDefault(logger)

	// 3. Инициализация зависимостей
	dec, err := decoder.New(cfg.Parsing.Encoding)
	if err != nil {
		return err
	}
	pageParser := parser.NewHTMLParser(
		parser.WithSelfID(cfg.Parsing.SelfID),
		parser.WithProfileURLPrefix(cfg.Parsing.ProfileURLPrefix),
		parser.WithTimezoneCorrection(cfg.Parsing.TimezoneCorrection),
	)
	progress := term.NewTerminalProgress(os.Stderr, cfg.Output.Progress && !cfg.Output.Stdout)

	var out ports.Exporter
	if cfg.Output.Stdout {
		out = exporter.NewStreamExporter(cmd.OutOrStdout(), cfg.Output.Pretty)
	} else {
		out = exporter.NewJSONFileExporter(cfg.Output.Dir, cfg.Output.Pretty)
	}

	processor := usecase.NewProcessArchiveUseCase(dec, pageParser, services.NewAggregationService(),
		usecase.WithWorkers(cfg.Processing.Workers),
		usecase.WithProgress(progress),
		usecase.WithLogger(logger),
	)

	// 4. Обработка с остановкой по сигналу
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting archive processing", "chats", len(dirs), "encoding", cfg.Parsing.Encoding)
	if err := processor.Run(ctx, out, dirs...); err != nil {
		return err
	}
	slog.Info("Archive processed", "chats", len(dirs))
	return nil
}
