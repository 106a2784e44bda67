package kafka_config

import "time"

const (
	// Local single-broker default
	DefaultKafkaBrokers = "localhost:9092"

	// Producer defaults. Penalty events drive balance-affecting records
	// downstream, so acks from all replicas and synchronous publishing
	// are the defaults; async is opt-in per deployment.
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // all replicas
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	// Consumer defaults. The penalties worker starts from the newest
	// offset: missed historical events are re-assessed by the
	// completion sweep, not by replaying the topic.
	DefaultConsumerStartOffset       = -1 // newest
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 10 * 1024 * 1024
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = 1 * time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerRebalanceTimeout  = 60 * time.Second
	DefaultConsumerMaxRetries        = 3

	DefaultEnableMiddleware = true
)
