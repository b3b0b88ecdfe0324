package authflow

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vahanlink/authflow/internal/gateway"
	"github.com/vahanlink/authflow/store"
)

// Builder defines a public type used by authflow APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	sessionStore SessionStore
	captcha      CaptchaProvider
	presenter    Presenter
	auditSink    AuditSink
	logger       zerolog.Logger

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis wires the shared key/value store as the session persistence
// backend, using the default "af" key prefix.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.sessionStore = store.NewRedis(client, "")
	return b
}

// WithStore describes the withstore operation and its observable behavior.
//
// WithStore may return an error when input validation, dependency calls, or security checks fail.
// WithStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithStore(s SessionStore) *Builder {
	b.sessionStore = s
	return b
}

// WithCaptchaProvider describes the withcaptchaprovider operation and its observable behavior.
//
// WithCaptchaProvider may return an error when input validation, dependency calls, or security checks fail.
// WithCaptchaProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCaptchaProvider(p CaptchaProvider) *Builder {
	b.captcha = p
	return b
}

// WithPresenter describes the withpresenter operation and its observable behavior.
//
// WithPresenter may return an error when input validation, dependency calls, or security checks fail.
// WithPresenter does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithPresenter(p Presenter) *Builder {
	b.presenter = p
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
//
// WithLogger may return an error when input validation, dependency calls, or security checks fail.
// WithLogger does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Session, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.sessionStore == nil {
		return nil, errors.New("session store required")
	}

	captcha := b.captcha
	if captcha == nil {
		captcha = NewWidgetCaptcha(cfg.Captcha.Origin)
	}

	presenter := b.presenter
	if presenter == nil {
		presenter = NoopPresenter{}
	}

	s := &Session{
		config:    cfg,
		gateway:   gateway.New(cfg.Gateway.BaseURL, cfg.Gateway.Timeout, b.logger),
		store:     b.sessionStore,
		captcha:   captcha,
		presenter: presenter,
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:   NewMetrics(cfg.Metrics),
		log:       b.logger,
		validate:  newValidator(),
		lockout:   newLockoutGuard(cfg.Lockout.Threshold),
	}

	for p := Purpose(0); p < purposeCount; p++ {
		purpose := p
		flow := &otpFlow{purpose: purpose}
		flow.timer = NewTimer(
			func(remaining int) {
				s.presenter.RenderCountdown(purpose, FormatCountdown(remaining))
			},
			func() {
				s.handleExpiry(purpose)
			},
		)
		s.flows[purpose] = flow
	}

	b.built = true

	return s, nil
}
