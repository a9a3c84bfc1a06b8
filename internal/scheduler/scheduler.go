package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Task는 스케줄러가 실행할 작업을 정의하는 인터페이스입니다
type Task interface {
	Execute(ctx context.Context) error
}

// Scheduler는 고정 간격으로 작업을 순차 실행하는 스케줄러입니다.
// 작업 실행이 끝난 뒤에 다음 대기를 시작하므로 실행이 겹치지 않습니다.
type Scheduler struct {
	interval time.Duration
	task     Task
	align    bool // true면 interval 경계(예: 매 분 00초)에 맞춰 실행
	log      *logrus.Entry
	stopCh   chan struct{}
}

// Option은 스케줄러 옵션을 정의합니다
type Option func(*Scheduler)

// WithAlignment는 실행 시각을 interval 경계에 맞춥니다
func WithAlignment() Option {
	return func(s *Scheduler) {
		s.align = true
	}
}

// WithLogger는 스케줄러 로거를 설정합니다
func WithLogger(log *logrus.Entry) Option {
	return func(s *Scheduler) {
		s.log = log
	}
}

// NewScheduler는 새로운 스케줄러를 생성합니다
func NewScheduler(interval time.Duration, task Task, opts ...Option) *Scheduler {
	s := &Scheduler{
		interval: interval,
		task:     task,
		log:      logrus.NewEntry(logrus.StandardLogger()),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// nextWait는 다음 실행까지의 대기 시간을 계산합니다
func (s *Scheduler) nextWait(now time.Time) time.Duration {
	if !s.align {
		return s.interval
	}
	return now.Truncate(s.interval).Add(s.interval).Sub(now)
}

// Start는 스케줄러를 시작합니다. 첫 실행은 한 interval 뒤입니다.
// ctx가 취소되거나 Stop이 호출될 때까지 반환하지 않습니다.
func (s *Scheduler) Start(ctx context.Context) error {
	wait := s.nextWait(time.Now())
	s.log.Debugf("다음 실행까지 %v 대기", wait.Round(time.Second))

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-s.stopCh:
			return nil

		case <-timer.C:
			// 작업 실행
			if err := s.task.Execute(ctx); err != nil {
				s.log.WithError(err).Error("작업 실행 실패")
				// 에러가 발생해도 계속 실행
			}

			wait = s.nextWait(time.Now())
			s.log.Debugf("다음 실행까지 %v 대기", wait.Round(time.Second))

			// 타이머 리셋
			timer.Reset(wait)
		}
	}
}

// Stop은 스케줄러를 중지합니다
func (s *Scheduler) Stop() {
	close(s.stopCh)
}
