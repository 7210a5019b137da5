package llm

import (
	log "github.com/sirupsen/logrus"
)

// LLMCallEvent records metadata about a single LLM invocation.
type LLMCallEvent struct {
	Task         TaskType
	Model        string
	LatencyMs    int64
	Attempts     int
	InputTokens  int
	OutputTokens int
	Success      bool
	ErrorCode    string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// LogObserver writes LLM call events through a logrus logger.
type LogObserver struct {
	logger *log.Logger
}

// NewLogObserver creates an Observer that logs events to logger.
func NewLogObserver(logger *log.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(event LLMCallEvent) {
	entry := o.logger.WithFields(log.Fields{
		"task":          event.Task,
		"model":         event.Model,
		"latency_ms":    event.LatencyMs,
		"attempts":      event.Attempts,
		"input_tokens":  event.InputTokens,
		"output_tokens": event.OutputTokens,
	})
	if !event.Success {
		entry.WithField("error_code", event.ErrorCode).Warn("llm call failed")
		return
	}
	entry.Info("llm call")
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}
