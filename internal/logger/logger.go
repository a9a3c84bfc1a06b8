package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config는 로그 설정입니다
type Config struct {
	Level      string // debug, info, warn, error
	File       string // 비어 있으면 콘솔에만 출력
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New는 콘솔과 회전 로그 파일에 동시에 기록하는 로거를 생성합니다
func New(cfg Config) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("로그 레벨 파싱 실패: %w", err)
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if cfg.File == "" {
		log.SetOutput(os.Stdout)
		return log, nopCloser{}, nil
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, file))

	return log, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
