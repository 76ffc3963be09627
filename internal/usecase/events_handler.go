package usecase

import (
	"context"
	"encoding/json"

	"SignalHub/internal/domain/models"
	drepo "SignalHub/internal/domain/repository"
)

// SignalEventsHandler consumes lifecycle events off the bus and appends
// them to the audit log.
type SignalEventsHandler struct {
	topic   string
	log     drepo.EventLog
	metrics drepo.Metrics
}

func NewSignalEventsHandler(topic string, log drepo.EventLog, metrics drepo.Metrics) *SignalEventsHandler {
	return &SignalEventsHandler{topic: topic, log: log, metrics: metrics}
}

func (h *SignalEventsHandler) Topic() string { return h.topic }

func (h *SignalEventsHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.SignalEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if err := h.log.Append(ctx, &ev); err != nil {
		h.metrics.RecordError("event_log_append")
		return err
	}
	return nil
}
