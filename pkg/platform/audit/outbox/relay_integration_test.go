//go:build integration

package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	platformpg "terralegit/internal/platform/postgres"
	id "terralegit/pkg/domain"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/audit/recorder"
	"terralegit/pkg/platform/audit/store/postgres"
	"terralegit/pkg/requestcontext"
	"terralegit/pkg/testutil/containers"
)

type RelayIntegrationSuite struct {
	suite.Suite
	pg      *containers.PostgresContainer
	brokers []string
	topic   string
}

func TestRelayIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RelayIntegrationSuite))
}

func (s *RelayIntegrationSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.pg = mgr.GetPostgres(s.T())
	s.brokers = mgr.GetRedpanda(s.T()).Brokers
}

func (s *RelayIntegrationSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "outbox", "audit_logs"))
	s.topic = "audit-" + uuid.NewString()[:8]
}

func (s *RelayIntegrationSuite) TestCommittedEntriesReachKafka() {
	ctx := requestcontext.WithRequestID(context.Background(), "req-relay-1")
	runner := platformpg.NewTxRunner(s.pg.DB)
	store := postgres.New(s.pg.DB)
	rec := recorder.New(store)

	s.Require().NoError(runner.RunInTx(ctx, func(ctx context.Context) error {
		_, err := rec.Record(ctx, id.SystemActor(), audit.ActionShipmentTransitioned, audit.EntityShipment, "shp-1",
			map[string]any{"from": "in_transit", "to": "customs_clearance"})
		return err
	}))

	client, err := NewClient(s.brokers, s.topic)
	s.Require().NoError(err)
	defer client.Close()
	s.Require().NoError(EnsureTopic(ctx, client, s.topic, 1, 1))

	relay := NewRelay(store, runner, client, s.topic)
	n, err := relay.RelayOnce(ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	n, err = relay.RelayOnce(ctx)
	s.Require().NoError(err)
	s.Zero(n, "published rows are not relayed twice")

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.brokers...),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	pollCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	fetches := consumer.PollRecords(pollCtx, 1)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().Len(records, 1)

	var payload postgres.OutboxPayload
	s.Require().NoError(json.Unmarshal(records[0].Value, &payload))
	s.Equal("shipment_transitioned", payload.Action)
	s.Equal("shp-1", payload.EntityID)
	s.Equal("system", payload.ActorID)
	s.Equal("req-relay-1", payload.RequestID)
}

func (s *RelayIntegrationSuite) TestRolledBackEntriesStayOut() {
	ctx := context.Background()
	runner := platformpg.NewTxRunner(s.pg.DB)
	store := postgres.New(s.pg.DB)
	rec := recorder.New(store)

	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := rec.Record(ctx, id.SystemActor(), audit.ActionCaseOpened, audit.EntityAcquisitionCase, "case-1", nil); err != nil {
			return err
		}
		return context.Canceled
	})
	s.Require().ErrorIs(err, context.Canceled)

	entries, err := store.ListByEntity(ctx, audit.EntityAcquisitionCase, "case-1")
	s.Require().NoError(err)
	s.Empty(entries)
}
