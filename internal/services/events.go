package services

import (
	"encoding/json"
	"log"
	"time"
)

// Routing keys of the published domain events.
const (
	EventCertificateIssued   = "certificate.issued"
	EventCertificateVerified = "certificate.verified"
)

// EventPublisher delivers domain events to a message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// CertificateEvent is the body of every published event.
type CertificateEvent struct {
	Type            string    `json:"type"`
	CertificateID   string    `json:"certificateId"`
	IssuerName      string    `json:"issuerName,omitempty"`
	TransactionHash string    `json:"transactionHash,omitempty"`
	Status          string    `json:"status,omitempty"`
	VerifierEmail   string    `json:"verifierEmail,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// publishEvent is best effort: the state change it reports is already
// persisted, so failures are only logged.
func publishEvent(publisher EventPublisher, event CertificateEvent) {
	if publisher == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event.Type, err)
		return
	}
	if err := publisher.Publish("", event.Type, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for certificate %s: %v", event.Type, event.CertificateID, err)
		return
	}
	log.Printf("Published %s event for certificate %s", event.Type, event.CertificateID)
}
