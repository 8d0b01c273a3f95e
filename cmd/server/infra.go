package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/twmb/franz-go/pkg/kgo"

	"terralegit/internal/notify"
	"terralegit/internal/platform/blob"
	"terralegit/internal/platform/config"
	"terralegit/internal/platform/lock"
	"terralegit/internal/platform/postgres"
	platformredis "terralegit/internal/platform/redis"
	"terralegit/pkg/platform/audit/outbox"
)

const (
	auditTopicPartitions  = 3
	auditTopicReplication = 1
)

// infra holds the external connections. Every field except locker, blobs
// and notifier is optional; missing backends fall back to in-process ones.
type infra struct {
	db       *sql.DB
	redis    *platformredis.Client
	kafka    *kgo.Client
	locker   lock.Locker
	blobs    blob.Store
	notifier notify.Sink
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{}
	ok := false
	defer func() {
		if !ok {
			in.Close()
		}
	}()

	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		in.db = db
		if err := postgres.Migrate(ctx, db); err != nil {
			return nil, err
		}
	}

	rc, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	in.redis = rc
	if rc != nil {
		in.locker = lock.Bounded{Locker: lock.NewRedis(rc.Client, cfg.Redis.LockTTL), Wait: cfg.Redis.LockWait}
	} else {
		in.locker = lock.Bounded{Locker: lock.NewMemory(), Wait: cfg.Redis.LockWait}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		if in.db == nil {
			log.Warn("KAFKA_BROKERS set without DATABASE_URL; audit outbox relay disabled")
		} else {
			client, err := outbox.NewClient(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
			if err != nil {
				return nil, fmt.Errorf("kafka client: %w", err)
			}
			in.kafka = client
			if err := outbox.EnsureTopic(ctx, client, cfg.Kafka.AuditTopic, auditTopicPartitions, auditTopicReplication); err != nil {
				return nil, err
			}
		}
	}

	in.blobs = blob.NewMemory(cfg.Compliance.DocumentURLPrefix)
	sinks := notify.Multi{notify.NewLogSink(log)}
	if cfg.AWS.S3Bucket != "" || cfg.AWS.SNSTopicARN != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		if cfg.AWS.S3Bucket != "" {
			in.blobs = blob.NewS3FromConfig(awsCfg, blob.S3Config{
				Region:   cfg.AWS.Region,
				Bucket:   cfg.AWS.S3Bucket,
				Endpoint: cfg.AWS.S3EndpointURL,
			})
		}
		if cfg.AWS.SNSTopicARN != "" {
			sinks = append(sinks, notify.NewSNSSinkFromConfig(awsCfg, cfg.AWS.SNSTopicARN, log))
		}
		log.Info("aws integrations enabled",
			"region", awsCfg.Region,
			"s3_bucket", cfg.AWS.S3Bucket,
			"sns", cfg.AWS.SNSTopicARN != "",
		)
	}
	in.notifier = sinks

	ok = true
	return in, nil
}

func (in *infra) mode() string {
	if in.db != nil {
		return "postgres"
	}
	return "memory"
}

// Close releases connections in reverse order of opening.
func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}
