package sync

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Toolenaar/decky/internal/domain/card"
	"github.com/Toolenaar/decky/internal/metrics"
)

// Change-notification subjects. Delivery is at-least-once and unordered;
// all writes are idempotent overwrites so the last one physically applied
// wins.
const (
	SubjectCardCreated = "card.created"
	SubjectCardUpdated = "card.updated"
	SubjectCardDeleted = "card.deleted"
)

// ChangeEvent is the payload on card.* subjects. Record is absent on
// deletes.
type ChangeEvent struct {
	ID     string             `json:"id"`
	Record *card.SourceRecord `json:"record,omitempty"`
}

// StartConsumer subscribes the service to catalog change notifications.
// Sync failures are logged and swallowed: a broken index must never push
// failures back at the catalog and trigger a retry storm.
func (s *Service) StartConsumer(nc *nats.Conn) ([]*nats.Subscription, error) {
	var subs []*nats.Subscription

	upsert := func(msg *nats.Msg) {
		ev, ok := s.decodeEvent(msg)
		if !ok || ev.Record == nil {
			s.logger.Warn("change event without record", zap.String("subject", msg.Subject))
			metrics.SyncEventsTotal.WithLabelValues(msg.Subject, "malformed").Inc()
			return
		}
		if err := s.UpsertOne(context.Background(), ev.Record, ev.ID); err != nil {
			s.logger.Error("card sync failed",
				zap.String("subject", msg.Subject),
				zap.String("card", ev.ID),
				zap.Error(err))
			metrics.SyncEventsTotal.WithLabelValues(msg.Subject, "error").Inc()
			return
		}
		metrics.SyncEventsTotal.WithLabelValues(msg.Subject, "success").Inc()
		s.logger.Info("card synced", zap.String("card", ev.ID))
	}

	for _, subject := range []string{SubjectCardCreated, SubjectCardUpdated} {
		sub, err := nc.Subscribe(subject, upsert)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	sub, err := nc.Subscribe(SubjectCardDeleted, func(msg *nats.Msg) {
		ev, ok := s.decodeEvent(msg)
		if !ok || ev.ID == "" {
			s.logger.Warn("delete event without id")
			metrics.SyncEventsTotal.WithLabelValues(msg.Subject, "malformed").Inc()
			return
		}
		if err := s.DeleteOne(context.Background(), ev.ID); err != nil {
			s.logger.Error("card delete failed",
				zap.String("card", ev.ID),
				zap.Error(err))
			metrics.SyncEventsTotal.WithLabelValues(msg.Subject, "error").Inc()
			return
		}
		metrics.SyncEventsTotal.WithLabelValues(msg.Subject, "success").Inc()
		s.logger.Info("card removed from index", zap.String("card", ev.ID))
	})
	if err != nil {
		return nil, err
	}
	subs = append(subs, sub)

	return subs, nil
}

func (s *Service) decodeEvent(msg *nats.Msg) (*ChangeEvent, bool) {
	var ev ChangeEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		s.logger.Warn("malformed change event",
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return nil, false
	}
	return &ev, true
}
