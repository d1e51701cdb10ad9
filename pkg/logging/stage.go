package logging

import (
	"time"
)

// Stage times one step of an analysis run and logs its outcome.
type Stage struct {
	logger Logger
	name   string
	start  time.Time
}

// StartStage logs the start of a step at debug level.
func StartStage(logger Logger, name string, fields ...Field) *Stage {
	if len(fields) > 0 {
		logger = logger.With(fields...)
	}
	logger.Debug(name+" started", Operation(name))
	return &Stage{logger: logger, name: name, start: time.Now()}
}

// Done logs the completed step with its latency and returns the elapsed time.
func (s *Stage) Done(fields ...Field) time.Duration {
	elapsed := time.Since(s.start)
	s.logger.Info(s.name+" completed", append(fields, Operation(s.name), Latency(elapsed))...)
	return elapsed
}

// Fail logs the failed step and returns the elapsed time.
func (s *Stage) Fail(err error) time.Duration {
	elapsed := time.Since(s.start)
	s.logger.Error(s.name+" failed", Operation(s.name), Latency(elapsed), Error(err))
	return elapsed
}
