package tns

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

type KWriter struct {
	w *kafka.Writer
}

func NewKWriter(topic string, uri string) (*KWriter, error) {
	w := &kafka.Writer{
		Addr:         kafka.TCP(uri),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
	}

	return &KWriter{
		w: w,
	}, nil
}

func (kw *KWriter) Write(ctx context.Context, key string, body []byte) error {
	return kw.w.WriteMessages(
		ctx,
		kafka.Message{
			Key:   []byte(key),
			Value: body,
		},
	)
}

func (kw *KWriter) Close() {
	if err := kw.w.Close(); err != nil {
		log.Error("kw.w.Close()", "err", err)
	}
}
