package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigFile структура предоставляет путь к файлу, а также указатель на структуру.
// Структуры могут содержать теги envconfig.
type ConfigFile struct {
	// Путь к .env файлу. Пустой путь - только переменные окружения.
	Path string
	// Если true, отсутствие файла не считается ошибкой.
	Optional bool
	// Указатель на структуру конфигурации.
	Config interface{}
}

// LoadConfigFiles загружает несколько .env файлов и анмаршалит окружение в структуры.
// Переменные, уже заданные в окружении, не перезаписываются значениями из файла.
func LoadConfigFiles(configFiles ...*ConfigFile) error {
	for _, configFile := range configFiles {
		if configFile.Path != "" {
			if err := godotenv.Load(configFile.Path); err != nil {
				if !(configFile.Optional && errors.Is(err, fs.ErrNotExist)) {
					return err
				}
			}
		}

		if err := envconfig.Process("", configFile.Config); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfigs анмаршалит переменные окружения в структуры.
//   - config - ссылки на структуры с тегами envconfig.
func LoadConfigs(config ...interface{}) error {
	for _, cfg := range config {
		if err := envconfig.Process("", cfg); err != nil {
			return err
		}
	}
	return nil
}
