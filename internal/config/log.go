package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (l LogConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", l.Level, err)
	}
	return lvl, nil
}

// Logger builds a text or JSON slog logger writing to w.
func (l LogConfig) Logger(w io.Writer) (*slog.Logger, error) {
	lvl, err := l.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(l.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("config: unknown log format %q", l.Format)
}
