package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"guestbook/internal/config"
)

// LineFormatter renders "[timestamp] [level] message key=value ...".
type LineFormatter struct{}

func (f *LineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	fmt.Fprintf(b, "[%s] [%s] %s", entry.Time.Format("2006-01-02 15:04:05.000"), entry.Level, entry.Message)
	for _, key := range sortedKeys(entry.Data) {
		fmt.Fprintf(b, " %s=%v", key, entry.Data[key])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// New builds the process logger. The returned closer releases the log file,
// if one was configured.
func New(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level failed: %w", err)
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&LineFormatter{})
	default:
		return nil, nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return log, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), os.ModePerm); err != nil {
		return nil, nil, fmt.Errorf("create log dir failed: %w", err)
	}
	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o666)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file failed: %w", err)
	}
	log.SetOutput(io.MultiWriter(file, os.Stderr))
	return log, file, nil
}

func sortedKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
