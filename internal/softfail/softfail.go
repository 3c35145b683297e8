// Package softfail - канал для ошибок, которые не прерывают операцию.
// Кеш, архивирование, рассылка: сбой логируется и операция продолжается.
package softfail

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Sink принимает мягкие ошибки
type Sink interface {
	Warn(op string, err error, fields logrus.Fields)
}

// LogSink пишет мягкие ошибки в logrus на уровне warn
type LogSink struct {
	logger *logrus.Logger
}

func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Warn(op string, err error, fields logrus.Fields) {
	s.logger.WithFields(fields).WithField("op", op).WithError(err).Warn("Soft failure, continuing")
}

// Failure - одна зафиксированная мягкая ошибка
type Failure struct {
	Op     string
	Err    error
	Fields logrus.Fields
}

// Recorder запоминает мягкие ошибки, используется в тестах
type Recorder struct {
	mu       sync.Mutex
	failures []Failure
}

func (r *Recorder) Warn(op string, err error, fields logrus.Fields) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, Failure{Op: op, Err: err, Fields: fields})
}

// Failures возвращает копию списка
func (r *Recorder) Failures() []Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Failure, len(r.failures))
	copy(out, r.failures)
	return out
}

// Ops возвращает только имена операций, удобно для assert.Equal
func (r *Recorder) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]string, 0, len(r.failures))
	for _, f := range r.failures {
		ops = append(ops, f.Op)
	}
	return ops
}

// Nop отбрасывает все
type Nop struct{}

func (Nop) Warn(string, error, logrus.Fields) {}
