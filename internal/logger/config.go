// internal/logger/config.go
package logger

type Config struct {
	LogFile    string // пустая строка отключает файловый лог
	MaxSize    int    // мегабайты
	MaxAge     int    // дни
	MaxBackups int    // количество файлов
	Compress   bool   // сжимать ротированные файлы
	Debug      bool
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		LogFile:    "launcher.log",
		MaxSize:    50,   // 50 MB
		MaxAge:     7,    // 7 дней
		MaxBackups: 3,    // 3 файла
		Compress:   true, // сжимать старые логи
		Debug:      false,
	}
}
