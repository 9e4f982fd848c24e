// Package cli - командная строка сервиса: запуск HTTP-сервера, выгрузка броней
// и управление учетными записями администраторов.
package cli

import (
	"fmt"

	"feastiq/internal/config"
	"feastiq/internal/repository/gormrepo"
	pkgconfig "feastiq/pkg/config"
	"feastiq/pkg/db"
	"feastiq/pkg/masker"
	"feastiq/pkg/zaplogger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

const defaultEnvFile = ".env"

type CLI struct {
	rootCmd *cobra.Command
	envFile string

	newLogger func(level string, outputs ...string) (*zap.Logger, error)
}

func New() *CLI {
	c := &CLI{newLogger: zaplogger.New}
	c.rootCmd = c.newRootCmd()
	return c
}

// Execute запускает команду и возвращает код выхода.
func (c *CLI) Execute() int {
	if err := c.rootCmd.Execute(); err != nil {
		fmt.Fprintf(c.rootCmd.ErrOrStderr(), "feastiq: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "feastiq",
		Short:         "FeastIQ - restaurant table reservations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&c.envFile, "env-file", defaultEnvFile, "dotenv file loaded before the environment is read")

	cmd.AddCommand(c.newServeCmd())
	cmd.AddCommand(c.newExportCmd())
	cmd.AddCommand(c.newAdminCmd())
	cmd.AddCommand(c.newVersionCmd())
	return cmd
}

// app - общие зависимости команд, работающих с базой.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
}

// bootstrap читает конфигурацию, поднимает логгер и базу и применяет миграции.
// Логи команд, пишущих в stdout, уходят в stderr.
func (c *CLI) bootstrap(logOutput string) (*app, error) {
	var cfg config.Config
	if err := pkgconfig.LoadConfigFiles(&pkgconfig.ConfigFile{
		Path:     c.envFile,
		Optional: c.envFile == defaultEnvFile,
		Config:   &cfg,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := c.newLogger(cfg.LogLevel, logOutput)
	if err != nil {
		return nil, err
	}
	if err := masker.LogConfigs(logger, &cfg); err != nil {
		logger.Error("error logging configs", zap.Error(err))
	}

	gdb, err := db.NewGormConnection(cfg.DBConfig, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := gormrepo.Migrate(gdb); err != nil {
		_ = db.Close(gdb)
		_ = logger.Sync()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &app{cfg: cfg, logger: logger, db: gdb}, nil
}

func (a *app) close() {
	if err := db.Close(a.db); err != nil {
		a.logger.Error("error closing database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
