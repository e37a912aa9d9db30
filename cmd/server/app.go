package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	authhandler "votegate/internal/auth/handler"
	authmetrics "votegate/internal/auth/metrics"
	authservice "votegate/internal/auth/service"
	"votegate/internal/auth/store/revocation"
	"votegate/internal/auth/token"
	ballothandler "votegate/internal/ballot/handler"
	ballotmetrics "votegate/internal/ballot/metrics"
	ballotservice "votegate/internal/ballot/service"
	ballotstore "votegate/internal/ballot/store"
	"votegate/internal/biometric/matcher"
	biostore "votegate/internal/biometric/store"
	httpapi "votegate/internal/http"
	"votegate/internal/notify"
	otpmetrics "votegate/internal/otp/metrics"
	otpservice "votegate/internal/otp/service"
	otpstore "votegate/internal/otp/store"
	"votegate/internal/otp/throttle"
	"votegate/internal/platform/config"
	"votegate/internal/platform/metrics"
	"votegate/internal/platform/mongo"
	"votegate/internal/platform/postgres"
	"votegate/internal/platform/redis"
	"votegate/internal/realtime"
	realtimemetrics "votegate/internal/realtime/metrics"
	verificationhandler "votegate/internal/verification/handler"
	verificationmetrics "votegate/internal/verification/metrics"
	verificationservice "votegate/internal/verification/service"
	"votegate/internal/voter/idgen"
	voterstore "votegate/internal/voter/store"
	auditpublisher "votegate/pkg/platform/audit/publisher"
	"votegate/pkg/platform/audit/sink/kafka"
	auditmemory "votegate/pkg/platform/audit/store/memory"
	"votegate/pkg/platform/circuit"
	"votegate/pkg/platform/password"
)

const (
	auditBuffer      = 1024
	auditPartitions  = 3
	auditReplication = 1
)

type voterStore interface {
	verificationservice.VoterStore
	idgen.Checker
}

type templateStore interface {
	verificationservice.TemplateStore
	authservice.TemplateStore
}

type expiringRevocations interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type app struct {
	router      http.Handler
	hub         *realtime.Hub
	otp         *otpservice.Service
	revocations expiringRevocations
	closers     []func()
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type backends struct {
	db    *sql.DB
	redis *redis.Client
	mongo *mongo.Client
	kafka *kafka.Sink
}

// build connects the configured backends and assembles every module. A backend
// without a URL falls back to its in-memory implementation.
func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	b, checks, err := connect(ctx, cfg, log, a)
	if err != nil {
		return nil, err
	}

	reg := metrics.New()
	authMetrics := authmetrics.New(reg)

	var (
		voters      voterStore
		ledger      ballotservice.Ledger
		codes       otpservice.CodeStore
		sends       otpservice.Throttle
		templates   templateStore
		revocations authservice.RevocationList
	)
	switch {
	case b.db != nil:
		voters = voterstore.NewPostgres(b.db)
		ledger = ballotstore.NewPostgres(b.db)
	default:
		voters = voterstore.NewInMemory()
		ledger = ballotstore.NewInMemory()
	}
	switch {
	case b.redis != nil:
		codes = otpstore.NewRedis(b.redis.Client)
		sends = throttle.NewRedis(b.redis.Client)
		revocations = revocation.NewRedisTRL(b.redis.Client, revocation.WithRedisMetrics(authMetrics))
	case b.db != nil:
		codes = otpstore.NewInMemory()
		sends = throttle.NewInMemory()
		trl := revocation.NewPostgresTRL(b.db)
		revocations, a.revocations = trl, trl
	default:
		codes = otpstore.NewInMemory()
		sends = throttle.NewInMemory()
		trl := revocation.NewInMemoryTRL()
		revocations, a.revocations = trl, trl
	}
	if b.mongo != nil {
		ms, err := biostore.NewMongo(ctx, b.mongo.DB)
		if err != nil {
			return nil, err
		}
		templates = ms
	} else {
		templates = biostore.NewInMemory()
	}

	publisherOpts := []auditpublisher.Option{
		auditpublisher.WithLogger(log),
		auditpublisher.WithAsyncBuffer(auditBuffer),
	}
	if b.kafka != nil {
		publisherOpts = append(publisherOpts, auditpublisher.WithSink(b.kafka))
	}
	auditor := auditpublisher.NewPublisher(auditmemory.NewInMemoryStore(), publisherOpts...)
	a.onClose(auditor.Close)

	a.hub = realtime.NewHub(realtime.WithLogger(log), realtime.WithMetrics(realtimemetrics.New(reg)))

	faceMatcher := newMatcher(cfg, log)
	hasher := password.New(password.WithScheme(password.Scheme(cfg.Auth.PasswordScheme)))

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return nil, err
	}
	a.otp = otpservice.New(codes, notifier,
		otpservice.Config{
			Length:      cfg.OTP.Length,
			TTL:         cfg.OTP.TTL,
			MaxAttempts: cfg.OTP.MaxAttempts,
			ProofTTL:    cfg.OTP.ProofTTL,
			SendLimit:   cfg.OTP.SendLimit,
			SendWindow:  cfg.OTP.SendWindow,
		},
		otpservice.WithLogger(log),
		otpservice.WithMetrics(otpmetrics.New(reg)),
		otpservice.WithThrottle(sends),
	)

	verification := verificationservice.New(voters, a.otp, templates, faceMatcher, hasher, idgen.New(voters),
		verificationservice.Config{
			MinimumAge:     cfg.Registration.MinimumAge,
			MatcherTimeout: cfg.Face.MatcherTimeout,
			CodeTTL:        cfg.OTP.TTL,
		},
		verificationservice.WithLogger(log),
		verificationservice.WithMetrics(verificationmetrics.New(reg)),
		verificationservice.WithAuditPublisher(auditor),
		verificationservice.WithBroadcaster(a.hub),
	)

	auth := authservice.New(voters, templates, faceMatcher, hasher,
		token.New(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer), revocations,
		authservice.Config{
			LimitedTokenTTL: cfg.Auth.LimitedTokenTTL,
			FullTokenTTL:    cfg.Auth.FullTokenTTL,
			FaceThreshold:   cfg.Face.MatchThreshold,
			MatcherTimeout:  cfg.Face.MatcherTimeout,
		},
		authservice.WithLogger(log),
		authservice.WithMetrics(authMetrics),
		authservice.WithAuditPublisher(auditor),
	)

	ballots := ballotservice.New(ledger, voters, cfg.Ballot.IPHashSalt,
		ballotservice.WithLogger(log),
		ballotservice.WithMetrics(ballotmetrics.New(reg)),
		ballotservice.WithAuditPublisher(auditor),
		ballotservice.WithBroadcaster(a.hub),
	)

	adminToken := cfg.Server.AdminToken
	a.router = httpapi.NewRouter(
		httpapi.Options{Logger: log, Metrics: reg.Handler(), Checks: checks},
		verificationhandler.New(verification, auth, adminToken, log),
		authhandler.New(auth, log),
		ballothandler.New(ballots, auth, adminToken, log),
		realtime.NewHandler(a.hub, auth, adminToken, log, realtime.WithOriginPatterns(cfg.Server.AllowedOrigins...)),
	)
	return a, nil
}

// connect opens every configured backend and registers its health check and closer.
func connect(ctx context.Context, cfg *config.Config, log *slog.Logger, a *app) (*backends, map[string]httpapi.Check, error) {
	b := &backends{}
	checks := map[string]httpapi.Check{}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if db != nil {
		a.onClose(func() { _ = db.Close() })
		if err := postgres.Migrate(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		b.db = db
		checks["postgres"] = db.PingContext
		log.Info("postgres connected", "driver", cfg.Postgres.Driver)
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if rc != nil {
		a.onClose(func() { _ = rc.Close() })
		b.redis = rc
		checks["redis"] = rc.Health
		log.Info("redis connected")
	}

	mc, err := mongo.New(ctx, cfg.Mongo)
	if err != nil {
		return nil, nil, err
	}
	if mc != nil {
		a.onClose(func() { _ = mc.Disconnect(context.Background()) })
		b.mongo = mc
		checks["mongo"] = mc.Health
		log.Info("mongo connected", "database", cfg.Mongo.Database)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := kafka.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return nil, nil, err
		}
		a.onClose(sink.Close)
		topicCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = sink.EnsureTopic(topicCtx, auditPartitions, auditReplication)
		cancel()
		if err != nil {
			return nil, nil, err
		}
		b.kafka = sink
		checks["kafka"] = sink.Ping
		log.Info("kafka audit sink ready", "topic", cfg.Kafka.AuditTopic)
	}
	return b, checks, nil
}

func newMatcher(cfg *config.Config, log *slog.Logger) matcher.FaceMatcher {
	if cfg.Face.MatcherURL == "" {
		return matcher.NewDeterministic()
	}
	return matcher.NewHTTP(cfg.Face.MatcherURL, cfg.Face.MatcherTimeout,
		matcher.WithBreaker(circuit.New("face-matcher")),
		matcher.WithLogger(log),
	)
}

// newNotifier sends over SMTP and the SMS webhook when configured. Unconfigured
// channels land in an outbox, echoed to stderr in dev.
func newNotifier(cfg *config.Config, log *slog.Logger) (*notify.Notifier, error) {
	outbox := notify.NewOutbox(nil)
	if cfg.IsDev() {
		outbox = notify.NewOutbox(os.Stderr)
	}

	var email, sms notify.Sender = outbox, outbox
	if cfg.SMTP.Host != "" {
		sender, err := notify.NewEmailSender(cfg.SMTP)
		if err != nil {
			return nil, err
		}
		email = sender
	} else if !cfg.IsDev() {
		log.Warn("SMTP_HOST is empty; email codes are not delivered")
	}
	if cfg.SMS.WebhookURL != "" {
		sms = notify.NewSMSSender(cfg.SMS.WebhookURL, cfg.SMS.Timeout)
	} else if !cfg.IsDev() {
		log.Warn("SMS_WEBHOOK_URL is empty; SMS codes are not delivered")
	}
	return notify.New(email, sms, notify.WithLogger(log)), nil
}
