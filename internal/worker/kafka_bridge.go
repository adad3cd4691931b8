package worker

import (
	"context"

	"github.com/example/docverify-service/internal/kafka/consumer"
)

// NewRecordFromConsumer constructs a worker record from the supplied Kafka
// consumer record. The consumer record's commit binding is carried across so
// handlers can commit the underlying offset when processing completes.
func NewRecordFromConsumer(rec *consumer.Record) *Record {
	if rec == nil {
		return nil
	}
	return &Record{
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
		Key:       cloneBytes(rec.Key),
		Value:     cloneBytes(rec.Value),
		Timestamp: rec.Timestamp,
		Headers:   cloneHeaders(rec.Headers),
		commit:    rec.Commit,
	}
}

// KafkaHandler returns a consumer.Handler that transforms Kafka consumer
// records into worker records and delegates processing to the supplied
// handler.
func KafkaHandler(handler RecordHandler) consumer.Handler {
	return func(ctx context.Context, rec *consumer.Record) error {
		if handler == nil || rec == nil {
			return nil
		}
		handler.HandleRecord(ctx, NewRecordFromConsumer(rec))
		return nil
	}
}
