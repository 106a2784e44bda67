package consumer

import (
	"context"
	"fmt"

	"qota/internal/penalties/service"
	"qota/pkg/kafka"
	"qota/pkg/logger"
	"qota/pkg/model"
)

// penaltyEvent mirrors the penalty.assessed payload published by the
// reservations service. The JSON shape is the contract between the two
// services, not a shared type.
type penaltyEvent struct {
	MembershipID  string `json:"membership_id"`
	ReservationID string `json:"reservation_id"`
	Reason        string `json:"reason"`
}

// NewPenaltyEventHandler returns the message handler for the penalties
// topic. Unknown event types are acknowledged without processing so a
// schema addition upstream does not wedge the consumer group.
func NewPenaltyEventHandler(svc service.PenaltyService, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		eventType := msg.GetEventType()
		if eventType != kafka.EventPenaltyAssessed {
			log.Debug("Skipping event", "event_type", eventType, "event_id", msg.GetEventID())
			return nil
		}

		var event penaltyEvent
		if err := msg.DecodeValue(&event); err != nil {
			return fmt.Errorf("invalid penalty event payload: %w", err)
		}

		penalty := &model.Penalty{
			MembershipID:  event.MembershipID,
			ReservationID: event.ReservationID,
			Reason:        event.Reason,
		}

		if err := svc.Record(ctx, penalty); err != nil {
			return fmt.Errorf("failed to record penalty for reservation %s: %w", event.ReservationID, err)
		}

		log.Info("Penalty event processed",
			"event_id", msg.GetEventID(),
			"membership_id", event.MembershipID,
			"reservation_id", event.ReservationID,
			"reason", event.Reason,
		)
		return nil
	}
}
