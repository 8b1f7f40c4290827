package flowstudio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/aretw0/flowstudio/pkg/adapters/memory"
	"github.com/aretw0/flowstudio/pkg/clone"
	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/layout"
	"github.com/aretw0/flowstudio/pkg/locale"
	"github.com/aretw0/flowstudio/pkg/observability"
	"github.com/aretw0/flowstudio/pkg/ports"
	"github.com/aretw0/flowstudio/pkg/template"
	"github.com/aretw0/flowstudio/pkg/validation"
)

// Version is the release of the editor, set at build time with -ldflags.
var Version = "dev"

// DefaultLockTTL bounds how long a save may hold the bot lock.
const DefaultLockTTL = 10 * time.Second

var (
	// ErrInvalidConfig is returned by Save when the config does not pass validation.
	// The error also matches *validation.AggregateError with errors.As.
	ErrInvalidConfig = errors.New("config is not valid")
	// ErrNotVersioned is returned by history operations on a store without history.
	ErrNotVersioned = errors.New("store does not keep versions")
)

// Studio is the high-level entry point of the library. It ties the editor
// core (validation, cloning, layout and templates) to a config store.
// Safe for concurrent use as long as the store and locker are.
type Studio struct {
	store      ports.ConfigStore
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	catalog    *locale.Catalog
	templates  *template.Registry
	metrics    *observability.Metrics
	logger     *slog.Logger
	uiLanguage string
	nodeWidth  float64
	nodeHeight float64
	margin     float64
	rnd        *rand.Rand
}

// Option defines a functional option for configuring the Studio.
type Option func(*Studio)

// WithStore sets where configs are saved (default: in memory).
func WithStore(store ports.ConfigStore) Option {
	return func(s *Studio) {
		s.store = store
	}
}

// WithLocker makes Save hold a distributed lock on the bot name.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(s *Studio) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

// WithCatalog sets the message catalog used for validation errors.
func WithCatalog(catalog *locale.Catalog) Option {
	return func(s *Studio) {
		s.catalog = catalog
	}
}

// WithTemplates sets the template registry.
func WithTemplates(r *template.Registry) Option {
	return func(s *Studio) {
		s.templates = r
	}
}

// WithMetrics records validations, clones and store calls in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Studio) {
		s.metrics = m
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Studio) {
		s.logger = logger
	}
}

// WithUILanguage sets the language of validation messages when a call does
// not ask for one.
func WithUILanguage(lang string) Option {
	return func(s *Studio) {
		s.uiLanguage = lang
	}
}

// WithNodeSize sets the canvas size of nodes and the margin kept between them.
func WithNodeSize(width, height, margin float64) Option {
	return func(s *Studio) {
		s.nodeWidth, s.nodeHeight, s.margin = width, height, margin
	}
}

// WithRand makes node placement deterministic.
func WithRand(r *rand.Rand) Option {
	return func(s *Studio) {
		s.rnd = r
	}
}

// New initializes a Studio. Without options it keeps configs in memory and
// reports in English.
func New(opts ...Option) *Studio {
	s := &Studio{
		lockTTL:    DefaultLockTTL,
		uiLanguage: "en",
		nodeWidth:  layout.DefaultNodeWidth,
		nodeHeight: layout.DefaultNodeHeight,
		margin:     layout.DefaultMargin,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}
	if s.locker == nil {
		s.locker = memory.NewLocker()
	}
	if s.catalog == nil {
		s.catalog = locale.Default()
	}
	if s.templates == nil {
		s.templates = template.NewRegistry()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.metrics != nil {
		s.store = observability.InstrumentStore(s.store, s.metrics)
	}
	return s
}

// Store returns the config store.
func (s *Studio) Store() ports.ConfigStore { return s.store }

// Templates returns the template registry.
func (s *Studio) Templates() *template.Registry { return s.templates }

// Metrics returns the metrics, or nil when they are not recorded.
func (s *Studio) Metrics() *observability.Metrics { return s.metrics }

// Logger returns the logger.
func (s *Studio) Logger() *slog.Logger { return s.logger }

// Localizer returns the localizer of lang, or of the default UI language
// when lang is empty.
func (s *Studio) Localizer(lang string) locale.Localizer {
	if lang == "" {
		lang = s.uiLanguage
	}
	return s.catalog.Localizer(lang, "en")
}

// ValidateFlow validates a whole flow. The bot languages are taken from its
// language select block, if any.
func (s *Studio) ValidateFlow(flow *domain.UserFlowConfig, uiLang string) validation.Report {
	report := validation.ValidateFlow(flow, domain.LanguageConfigFromFlow(flow), s.Localizer(uiLang))
	if s.metrics != nil {
		byType := make(map[string]int)
		for _, n := range report.Nodes {
			byType[string(n.Type)] += len(n.Result.Errors)
		}
		byType["flow"] += len(report.Errors) + len(report.Internal)
		s.metrics.ObserveValidation("flow", byType)
	}
	s.logger.Debug("flow validated", "nodes", len(report.Nodes), "ok", report.OK())
	return report
}

// ValidateEntrypoint validates a single entrypoint.
// It fails with domain.ErrUnknownVariant for an entrypoint of unknown type.
func (s *Studio) ValidateEntrypoint(ep domain.EntryPointConfig, lang *domain.LanguageConfig, uiLang string) (validation.Result, error) {
	if ep.Variant == nil {
		return validation.Result{}, fmt.Errorf("validate entrypoint: %w", domain.ErrUnknownVariant)
	}
	res := validation.ValidateEntrypoint(ep.Variant, lang, s.Localizer(uiLang))
	s.observeNode(ep.Variant, res)
	return res, nil
}

// ValidateBlock validates a single block.
// It fails with domain.ErrUnknownVariant for a block of unknown type.
func (s *Studio) ValidateBlock(b domain.BlockConfig, lang *domain.LanguageConfig, uiLang string) (validation.Result, error) {
	if b.Variant == nil {
		return validation.Result{}, fmt.Errorf("validate block: %w", domain.ErrUnknownVariant)
	}
	res := validation.ValidateBlock(b.Variant, lang, s.Localizer(uiLang))
	s.observeNode(b.Variant, res)
	return res, nil
}

func (s *Studio) observeNode(n domain.Node, res validation.Result) {
	if s.metrics != nil {
		s.metrics.ObserveValidation("node", map[string]int{string(n.TypeKey()): len(res.Errors)})
	}
}

// Clone duplicates the nodes of flow named by ids, keeping the links among
// them, and places the copies in free canvas space. The flow is not modified.
func (s *Studio) Clone(flow *domain.UserFlowConfig, ids []string) (clone.SubgraphClone, error) {
	out, err := clone.Subgraph(flow, ids, s.subgraphOptions())
	if err != nil {
		return clone.SubgraphClone{}, err
	}
	if s.metrics != nil {
		for _, n := range out.Nodes {
			s.metrics.ObserveClone(string(n.Kind), 1)
		}
	}
	s.logger.Debug("nodes cloned", "count", len(out.Nodes))
	return out, nil
}

// Duplicate returns a copy of flow with the nodes named by ids cloned into it,
// and the mapping from original to cloned IDs.
func (s *Studio) Duplicate(flow domain.UserFlowConfig, ids []string) (domain.UserFlowConfig, map[string]string, error) {
	out, err := flow.Copy()
	if err != nil {
		return domain.UserFlowConfig{}, nil, err
	}
	sub, err := s.Clone(&out, ids)
	if err != nil {
		return domain.UserFlowConfig{}, nil, err
	}
	sub.AddTo(&out)
	return out, sub.IDs, nil
}

func (s *Studio) subgraphOptions() clone.SubgraphOptions {
	opts := clone.SubgraphOptions{NodeWidth: s.nodeWidth, NodeHeight: s.nodeHeight, Margin: s.margin}
	if s.rnd != nil {
		opts.Layout = append(opts.Layout, layout.WithRand(s.rnd))
	}
	return opts
}

// Place returns a free canvas position for a new node of flow.
func (s *Studio) Place(flow *domain.UserFlowConfig) domain.Position {
	var opts []layout.Option
	if s.rnd != nil {
		opts = append(opts, layout.WithRand(s.rnd))
	}
	return layout.FindNewNodePosition(layout.Positions(flow.NodeDisplayCoords), s.nodeWidth, s.nodeHeight, s.margin, opts...)
}

// ApplyTemplate returns a copy of flow with the named template merged in.
func (s *Studio) ApplyTemplate(flow domain.UserFlowConfig, name string) (domain.UserFlowConfig, error) {
	tmpl, err := s.templates.Get(name)
	if err != nil {
		return domain.UserFlowConfig{}, err
	}
	out, err := template.Apply(flow, tmpl)
	if err != nil {
		return domain.UserFlowConfig{}, fmt.Errorf("apply template %q: %w", name, err)
	}
	s.logger.Debug("template applied", "template", name, "entry", tmpl.EntryBlockID)
	return out, nil
}

// SaveOptions tunes Save.
type SaveOptions struct {
	// Message describes the revision on stores keeping versions.
	Message string
	// SkipValidation saves configs that do not pass validation.
	SkipValidation bool
}

// Save prunes dangling links from cfg, validates it and stores it under
// name. The bot is locked for the duration of the call; without WithLocker
// the lock only spans this process.
func (s *Studio) Save(ctx context.Context, name string, cfg *domain.BotConfig, opts SaveOptions) error {
	flow, err := domain.Prune(cfg.UserFlowConfig)
	if err != nil {
		return fmt.Errorf("prune config: %w", err)
	}
	pruned := *cfg
	pruned.UserFlowConfig = flow

	if !opts.SkipValidation {
		if err := s.ValidateFlow(&pruned.UserFlowConfig, "").Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	unlock, err := s.locker.Lock(ctx, name, s.lockTTL)
	if err != nil {
		return fmt.Errorf("lock %s: %w", name, err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release lock", "name", name, "err", err)
		}
	}()

	if vs, ok := s.versioned(); ok && opts.Message != "" {
		n, err := vs.SaveVersion(ctx, name, &pruned, opts.Message)
		if err != nil {
			return err
		}
		s.logger.Info("config saved", "name", name, "version", n)
		return nil
	}
	if err := s.store.Save(ctx, name, &pruned); err != nil {
		return err
	}
	s.logger.Info("config saved", "name", name)
	return nil
}

// Load reads the config stored under name.
func (s *Studio) Load(ctx context.Context, name string) (*domain.BotConfig, error) {
	return s.store.Load(ctx, name)
}

// Delete removes the config stored under name.
func (s *Studio) Delete(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}
	s.logger.Info("config deleted", "name", name)
	return nil
}

// List returns the stored bot names.
func (s *Studio) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Versions lists the revisions of a config.
func (s *Studio) Versions(ctx context.Context, name string) ([]ports.Version, error) {
	vs, ok := s.versioned()
	if !ok {
		return nil, ErrNotVersioned
	}
	return vs.Versions(ctx, name)
}

// LoadVersion reads a given revision of a config.
func (s *Studio) LoadVersion(ctx context.Context, name string, number int) (*domain.BotConfig, error) {
	vs, ok := s.versioned()
	if !ok {
		return nil, ErrNotVersioned
	}
	return vs.LoadVersion(ctx, name, number)
}

func (s *Studio) versioned() (ports.VersionedStore, bool) {
	store := s.store
	if in, ok := store.(*observability.InstrumentedStore); ok {
		store = in.Unwrap()
	}
	vs, ok := store.(ports.VersionedStore)
	return vs, ok
}
