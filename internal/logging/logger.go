package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options описывает ротацию файла логов. Пустой File означает вывод только в stdout.
type Options struct {
	File       string
	MaxSize    int // в мегабайтах
	MaxBackups int
	MaxAge     int // в днях
	Compress   bool
}

// Logger объединяет stdout и файл с ротацией
type Logger struct {
	*log.Logger
	writer io.Writer
	file   *lumberjack.Logger
}

func New(opts Options) (*Logger, error) {
	l := &Logger{writer: os.Stdout}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}

		l.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSize, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAge, 28),
			Compress:   opts.Compress,
		}
		l.writer = io.MultiWriter(os.Stdout, l.file)
	}

	l.Logger = log.New(l.writer, "", log.LstdFlags)
	return l, nil
}

// Writer returns the sink shared with gin's request log.
func (l *Logger) Writer() io.Writer {
	return l.writer
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
