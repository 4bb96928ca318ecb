package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/arcadialabs/landgrid-backend/pkg/config"
	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	"github.com/arcadialabs/landgrid-backend/pkg/outbox"
)

func testRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{
		ParcelEventsTopic: "parcel-events",
		RegionEventsTopic: "region-events",
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func envelopeRow(t *testing.T, eventType enums.OutboxEventType, aggType enums.OutboxAggregateType, data interface{}) models.OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	env := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    "evt-1",
		OccurredAt: time.Now(),
		Data:       raw,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		EventType:     eventType,
		AggregateType: aggType,
		AggregateID:   "genesis-17",
		Payload:       payload,
	}
}

func TestResolveParcelPurchased(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.EventParcelPurchased, enums.AggregateParcel, map[string]interface{}{
		"parcelId": "genesis-17",
		"toOwner":  "0xabc",
		"price":    96,
	})

	resolved, err := reg.Resolve(row)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "parcel-events" {
		t.Fatalf("expected parcel topic, got %s", resolved.Descriptor.Topic)
	}
	if resolved.Envelope.EventID != "evt-1" {
		t.Fatalf("unexpected envelope %+v", resolved.Envelope)
	}
}

func TestResolveRegionTopicRouting(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.EventRegionCreated, enums.AggregateRegion, map[string]interface{}{
		"regionId": "genesis",
		"width":    40,
		"height":   40,
	})

	resolved, err := reg.Resolve(row)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "region-events" {
		t.Fatalf("expected region topic, got %s", resolved.Descriptor.Topic)
	}
}

func TestResolveAggregateMismatch(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.EventParcelListed, enums.AggregateRegion, map[string]interface{}{})

	_, err := reg.Resolve(row)
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}

func TestResolveMissingAggregateID(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.EventParcelListed, enums.AggregateParcel, map[string]interface{}{})
	row.AggregateID = ""

	_, err := reg.Resolve(row)
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}

func TestResolveNullPayload(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.EventParcelDelisted, enums.AggregateParcel, nil)

	_, err := reg.Resolve(row)
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}

func TestNewEventRegistryRequiresTopics(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{RegionEventsTopic: "r"}); err == nil {
		t.Fatal("expected error for missing parcel topic")
	}
	if _, err := NewEventRegistry(config.PubSubConfig{ParcelEventsTopic: "p"}); err == nil {
		t.Fatal("expected error for missing region topic")
	}
}
