package nats

import (
	"time"

	"github.com/brojonat/tipjar/service/db"
)

// TipEvent represents a confirmed tip published to NATS.
// Events are published to the subject "tips.confirmed.{tipper_address}".
type TipEvent struct {
	// On-chain identifiers
	RecordAddress string `json:"record_address"`
	TipperAddress string `json:"tipper_address"`
	Network       string `json:"network"`

	// Tip details
	AmountLamports   int64  `json:"amount_lamports"`
	Message          string `json:"message"`
	TimestampSeconds int64  `json:"timestamp_seconds"`

	// Metadata
	PublishedAt time.Time `json:"published_at"`
}

// FromDBTip converts an indexed tip to a TipEvent for publishing.
func FromDBTip(t *db.Tip) *TipEvent {
	return &TipEvent{
		RecordAddress:    t.RecordAddress,
		TipperAddress:    t.TipperAddress,
		Network:          t.Network,
		AmountLamports:   t.AmountLamports,
		Message:          t.Message,
		TimestampSeconds: t.TimestampSeconds,
		PublishedAt:      time.Now().UTC(),
	}
}
