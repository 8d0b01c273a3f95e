package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	acqhandler "terralegit/internal/acquisition/handler"
	acqservice "terralegit/internal/acquisition/service"
	acqstore "terralegit/internal/acquisition/store"
	audithandler "terralegit/internal/audit/handler"
	auditservice "terralegit/internal/audit/service"
	cataloghandler "terralegit/internal/catalog/handler"
	catalogservice "terralegit/internal/catalog/service"
	catalogstore "terralegit/internal/catalog/store"
	dochandler "terralegit/internal/documents/handler"
	docs "terralegit/internal/documents/models"
	docservice "terralegit/internal/documents/service"
	docstore "terralegit/internal/documents/store"
	eligibilityhandler "terralegit/internal/eligibility/handler"
	"terralegit/internal/eligibility/seed"
	eligibilityservice "terralegit/internal/eligibility/service"
	eligibilitystore "terralegit/internal/eligibility/store"
	identityhandler "terralegit/internal/identity/handler"
	identityservice "terralegit/internal/identity/service"
	identitystore "terralegit/internal/identity/store"
	inquiryhandler "terralegit/internal/inquiry/handler"
	inquiryservice "terralegit/internal/inquiry/service"
	inquirystore "terralegit/internal/inquiry/store"
	"terralegit/internal/lifecycle"
	listinghandler "terralegit/internal/listing/handler"
	listingservice "terralegit/internal/listing/service"
	listingstore "terralegit/internal/listing/store"
	"terralegit/internal/platform/config"
	"terralegit/internal/platform/metrics"
	"terralegit/internal/platform/postgres"
	ratelimit "terralegit/internal/ratelimit/middleware"
	ratemodels "terralegit/internal/ratelimit/models"
	ratestore "terralegit/internal/ratelimit/store"
	shipmenthandler "terralegit/internal/shipment/handler"
	shipmentservice "terralegit/internal/shipment/service"
	shipmentstore "terralegit/internal/shipment/store"
	httptransport "terralegit/internal/transport/http"
	audit "terralegit/pkg/platform/audit"
	"terralegit/pkg/platform/audit/outbox"
	"terralegit/pkg/platform/audit/recorder"
	auditmemory "terralegit/pkg/platform/audit/store/memory"
	auditpostgres "terralegit/pkg/platform/audit/store/postgres"
	"terralegit/pkg/platform/circuit"
	"terralegit/pkg/platform/middleware/auth"
	"terralegit/pkg/platform/tx"
)

type app struct {
	router http.Handler
	relay  *outbox.Relay
}

// stores picks one persistence backend for every bounded context.
type stores struct {
	runner      tx.Runner
	audit       audit.Store
	identity    identityservice.Store
	catalog     catalogservice.Store
	eligibility eligibilityservice.Store
	listings    listingservice.Store
	documents   docservice.Store
	cases       acqservice.Store
	shipments   shipmentservice.Store
	inquiries   inquiryservice.Store
}

func openStores(in *infra) stores {
	if in.db == nil {
		return stores{
			runner:      tx.NewMemoryRunner(),
			audit:       auditmemory.NewInMemoryStore(),
			identity:    identitystore.NewInMemory(),
			catalog:     catalogstore.NewInMemory(),
			eligibility: eligibilitystore.NewInMemory(),
			listings:    listingstore.NewInMemory(),
			documents:   docstore.NewInMemory(),
			cases:       acqstore.NewInMemory(),
			shipments:   shipmentstore.NewInMemory(),
			inquiries:   inquirystore.NewInMemory(),
		}
	}
	return stores{
		runner:      postgres.NewTxRunner(in.db),
		audit:       auditpostgres.New(in.db),
		identity:    identitystore.NewPostgres(in.db),
		catalog:     catalogstore.NewPostgres(in.db),
		eligibility: eligibilitystore.NewPostgres(in.db),
		listings:    listingstore.NewPostgres(in.db),
		documents:   docstore.NewPostgres(in.db),
		cases:       acqstore.NewPostgres(in.db),
		shipments:   shipmentstore.NewPostgres(in.db),
		inquiries:   inquirystore.NewPostgres(in.db),
	}
}

func wire(ctx context.Context, cfg config.Server, in *infra, log *slog.Logger) (*app, error) {
	st := openStores(in)
	transitions := lifecycle.NewMetrics()
	auditor := recorder.New(st.audit, recorder.WithLogger(log), recorder.WithMetrics(recorder.NewMetrics()))

	identity := identityservice.New(st.identity, st.runner, auditor, identityservice.WithLogger(log))
	catalog := catalogservice.New(st.catalog, st.runner, auditor, catalogservice.WithLogger(log))
	eligibility := eligibilityservice.New(st.eligibility, st.runner, auditor,
		eligibilityservice.WithLogger(log),
		eligibilityservice.WithMetrics(eligibilityservice.NewMetrics()),
	)

	// Owner resolution is filled in once the owning services exist.
	owners := docservice.Resolvers{}
	documents := docservice.New(st.documents, st.runner, auditor, in.blobs, owners,
		docservice.WithLogger(log),
		docservice.WithMetrics(docservice.NewMetrics()),
		docservice.WithLocker(in.locker),
	)
	listings := listingservice.New(st.listings, st.runner, auditor, identity, catalog, documents, eligibility,
		listingservice.WithLogger(log),
		listingservice.WithMetrics(transitions),
		listingservice.WithLocker(in.locker),
		listingservice.WithNotifier(in.notifier),
		listingservice.WithHealthDocType(cfg.Compliance.ListingHealthDocType),
	)
	cases := acqservice.New(st.cases, st.runner, auditor, identity, listings, eligibility, documents,
		acqservice.WithLogger(log),
		acqservice.WithMetrics(transitions),
		acqservice.WithLocker(in.locker),
		acqservice.WithNotifier(in.notifier),
	)
	shipments := shipmentservice.New(st.shipments, st.runner, auditor, cases, documents,
		shipmentservice.WithLogger(log),
		shipmentservice.WithMetrics(transitions),
		shipmentservice.WithLocker(in.locker),
		shipmentservice.WithNotifier(in.notifier),
		shipmentservice.WithRequiredDocs(cfg.Compliance.ShipmentRequiredDocs),
	)
	cases.UseShipments(shipments)
	owners[docs.OwnerListing] = listings
	owners[docs.OwnerCase] = cases
	owners[docs.OwnerShipment] = shipments

	inquiries := inquiryservice.New(st.inquiries, inquiryservice.WithLogger(log))

	rules, err := seed.Load(cfg.Compliance.RuleSeedFile, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	inserted, err := eligibility.Seed(ctx, rules)
	if err != nil {
		return nil, fmt.Errorf("seed country rules: %w", err)
	}
	log.Info("country rules ready", "seeded", inserted, "available", len(rules))

	health := map[string]httptransport.HealthCheck{}
	if in.db != nil {
		health["postgres"] = in.db.PingContext
	}
	if in.redis != nil {
		health["redis"] = in.redis.Health
	}
	if in.kafka != nil {
		health["kafka"] = in.kafka.Ping
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:    log,
		Metrics:   metrics.New(),
		Validator: auth.NewHS256Validator(cfg.JWTSigningKey),
		Actors:    identity,
		Health:    health,
		RateLimit: rateLimiter(cfg.RateLimit, in, log).AnonymousWrites,
		Public: []httptransport.Registrar{
			identityhandler.New(identity, log),
			cataloghandler.New(catalog, log),
			eligibilityhandler.New(eligibility, log),
			listinghandler.New(listings, log),
			inquiryhandler.New(inquiries, log),
		},
		Private: []httptransport.Registrar{
			dochandler.New(documents, log),
			acqhandler.New(cases, log),
			shipmenthandler.New(shipments, log),
			audithandler.New(auditservice.New(st.audit), log),
		},
	})

	out := &app{router: router}
	if in.kafka != nil {
		source, ok := st.audit.(*auditpostgres.Store)
		if !ok {
			return nil, fmt.Errorf("audit outbox relay requires the postgres audit store")
		}
		out.relay = outbox.NewRelay(source, st.runner, in.kafka, cfg.Kafka.AuditTopic,
			outbox.WithLogger(log),
			outbox.WithMetrics(outbox.NewMetrics()),
			outbox.WithBatchSize(cfg.Kafka.RelayBatch),
			outbox.WithInterval(cfg.Kafka.RelayInterval),
		)
	}
	return out, nil
}

// rateLimiter shares counters through Redis when it is configured and falls
// back to process local counters while Redis is failing.
func rateLimiter(cfg config.RateLimitConfig, in *infra, log *slog.Logger) *ratelimit.Middleware {
	policy := ratemodels.Policy{Limit: cfg.AnonymousWrites, Window: cfg.Window}
	local := ratestore.NewInMemory()
	if in.redis == nil {
		return ratelimit.New(ratelimit.Direct(local), policy, log)
	}
	checker := ratelimit.NewFallback(ratestore.NewRedis(in.redis.Client), local, circuit.New("ratelimit-redis"), log)
	return ratelimit.New(checker, policy, log)
}
