package service

import (
	"context"
	"time"

	"qota/internal/reservations/availability"
	"qota/pkg/kafka"
	"qota/pkg/logger"
	"qota/pkg/model"
)

// EventPublisher emits reservation lifecycle events. Publishing is best
// effort: the reservation is already durable when an event goes out, so
// failures are logged and never roll back the submission.
type EventPublisher interface {
	ReservationConfirmed(ctx context.Context, reservation *model.Reservation)
	ReservationCancelled(ctx context.Context, reservation *model.Reservation, penalized bool)
	PenaltyAssessed(ctx context.Context, reservation *model.Reservation, reason string)
}

// ReservationEvent is the payload for reservation.confirmed and
// reservation.cancelled events.
type ReservationEvent struct {
	ReservationID string    `json:"reservation_id"`
	PropertyID    string    `json:"property_id"`
	MembershipID  string    `json:"membership_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Nights        int       `json:"nights"`
	Status        string    `json:"status"`
	Penalized     bool      `json:"penalized"`
}

// PenaltyEvent is the payload for penalty.assessed events, consumed by
// the penalties worker which records the penalty against the membership.
type PenaltyEvent struct {
	MembershipID  string `json:"membership_id"`
	ReservationID string `json:"reservation_id"`
	Reason        string `json:"reason"`
}

type kafkaEventPublisher struct {
	reservations *kafka.Producer
	penalties    *kafka.Producer
	source       string
	log          *logger.Logger
}

func NewKafkaEventPublisher(reservations, penalties *kafka.Producer, source string, log *logger.Logger) EventPublisher {
	return &kafkaEventPublisher{
		reservations: reservations,
		penalties:    penalties,
		source:       source,
		log:          log,
	}
}

func (p *kafkaEventPublisher) ReservationConfirmed(ctx context.Context, reservation *model.Reservation) {
	p.publishReservation(ctx, reservation, kafka.EventReservationConfirmed, false)
}

func (p *kafkaEventPublisher) ReservationCancelled(ctx context.Context, reservation *model.Reservation, penalized bool) {
	p.publishReservation(ctx, reservation, kafka.EventReservationCancelled, penalized)
}

func (p *kafkaEventPublisher) publishReservation(ctx context.Context, reservation *model.Reservation, eventType string, penalized bool) {
	msg := kafka.NewMessage().
		WithKey(reservation.PropertyID). // keyed by property so events for one calendar stay ordered
		WithEventType(eventType).
		WithSource(p.source).
		WithSchemaVersion("1").
		WithValue(ReservationEvent{
			ReservationID: reservation.ID,
			PropertyID:    reservation.PropertyID,
			MembershipID:  reservation.MembershipID,
			StartDate:     reservation.StartDate,
			EndDate:       reservation.EndDate,
			Nights:        availability.Nights(reservation.StartDate, reservation.EndDate),
			Status:        reservation.Status,
			Penalized:     penalized,
		}).
		Build()

	if err := p.reservations.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish reservation event",
			"event_type", eventType,
			"reservation_id", reservation.ID,
			"error", err,
		)
	}
}

func (p *kafkaEventPublisher) PenaltyAssessed(ctx context.Context, reservation *model.Reservation, reason string) {
	msg := kafka.NewMessage().
		WithKey(reservation.MembershipID).
		WithEventType(kafka.EventPenaltyAssessed).
		WithSource(p.source).
		WithSchemaVersion("1").
		WithValue(PenaltyEvent{
			MembershipID:  reservation.MembershipID,
			ReservationID: reservation.ID,
			Reason:        reason,
		}).
		Build()

	if err := p.penalties.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish penalty event",
			"reservation_id", reservation.ID,
			"membership_id", reservation.MembershipID,
			"reason", reason,
			"error", err,
		)
	}
}
