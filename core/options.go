package core

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
	"github.com/joho/godotenv"
)

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	logger         Logger
	loggerProvider LoggerProvider
	errorMapper    ErrorMapper
	tracker        TrackerClient
	reportStore    ReportStore
	clock          func() time.Time
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithTrackerClient(tracker TrackerClient) Option {
	return func(b *serviceBuilder) {
		b.tracker = tracker
	}
}

func WithReportStore(store ReportStore) Option {
	return func(b *serviceBuilder) {
		b.reportStore = store
	}
}

func WithClock(clock func() time.Time) Option {
	return func(b *serviceBuilder) {
		b.clock = clock
	}
}

func defaultServiceBuilder() serviceBuilder {
	loggerProvider, logger := glog.Resolve("messenger", nil, nil)
	return serviceBuilder{
		loggerProvider: loggerProvider,
		logger:         logger,
		errorMapper:    MapError,
		clock:          func() time.Time { return time.Now().UTC() },
	}
}

// LoadConfig resolves configuration with precedence
// defaults < loaded (environment, .env files) < runtime overrides.
func LoadConfig(
	ctx context.Context,
	provider ConfigProvider,
	resolver OptionsResolver,
	runtime Config,
) (Config, error) {
	if provider == nil {
		provider = NewCfgxConfigProvider(nil)
	}
	if resolver == nil {
		resolver = GoOptionsResolver{}
	}
	defaults := DefaultConfig()
	loaded, err := provider.Load(ctx, defaults)
	if err != nil {
		return Config{}, MapError(err)
	}
	resolved, err := resolver.Resolve(defaults, loaded, runtime)
	if err != nil {
		return Config{}, MapError(err)
	}
	return resolved, nil
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type envBinding struct {
	key  string
	path []string
	kind string
}

var envBindings = []envBinding{
	{key: "MESSENGER_SERVICE_NAME", path: []string{"service_name"}},
	{key: "MESSENGER_REQUEST_TIMEOUT_SECONDS", path: []string{"request_timeout_seconds"}, kind: "int"},
	{key: "SHORTCUT_TOKEN", path: []string{"shortcut", "token"}},
	{key: "SHORTCUT_SECRET", path: []string{"shortcut", "secret"}},
	{key: "SHORTCUT_BASE_URL", path: []string{"shortcut", "base_url"}},
	{key: "SHORTCUT_SIGNATURE_HEADER", path: []string{"shortcut", "signature_header"}},
	{key: "SLACK_BOT_TOKEN", path: []string{"slack", "token"}},
	{key: "SLACK_BASE_URL", path: []string{"slack", "base_url"}},
	{key: "SLACK_NEEDS_TESTING_CHANNEL", path: []string{"slack", "needs_testing_channel"}},
	{key: "SLACK_UAT_NOT_APPROVED_CHANNEL", path: []string{"slack", "uat_not_approved_channel"}},
	{key: "MESSENGER_DATABASE_DRIVER", path: []string{"database", "driver"}},
	{key: "MESSENGER_DATABASE_DSN", path: []string{"database", "dsn"}},
	{key: "MESSENGER_DATABASE_DEBUG", path: []string{"database", "debug"}, kind: "bool"},
	{key: "MESSENGER_REPORT_CACHE_TTL_SECONDS", path: []string{"database", "cache_ttl_seconds"}, kind: "int"},
	{key: "MESSENGER_HTTP_ADDR", path: []string{"http", "addr"}},
	{key: "MESSENGER_LOG_LEVEL", path: []string{"log", "level"}},
	{key: "MESSENGER_LOG_DEVELOPMENT", path: []string{"log", "development"}, kind: "bool"},
}

// EnvConfigLoader reads configuration from process environment variables and
// optional dotenv files. Process variables win over file values.
type EnvConfigLoader struct {
	Files  []string
	Lookup func(key string) (string, bool)
}

func NewEnvConfigLoader(files ...string) *EnvConfigLoader {
	return &EnvConfigLoader{Files: files, Lookup: os.LookupEnv}
}

func (l *EnvConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if l == nil {
		return map[string]any{}, nil
	}
	fileValues := map[string]string{}
	existing := make([]string, 0, len(l.Files))
	for _, file := range l.Files {
		file = strings.TrimSpace(file)
		if file == "" {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			continue
		}
		existing = append(existing, file)
	}
	if len(existing) > 0 {
		values, err := godotenv.Read(existing...)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "core: read dotenv files").
				WithTextCode(TextCodeConfigInvalid)
		}
		fileValues = values
	}

	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	raw := map[string]any{}
	for _, binding := range envBindings {
		value, ok := lookup(binding.key)
		if !ok {
			value, ok = fileValues[binding.key]
		}
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		typed, err := convertEnvValue(binding, value)
		if err != nil {
			return nil, err
		}
		setPath(raw, binding.path, typed)
	}
	return raw, nil
}

func convertEnvValue(binding envBinding, value string) (any, error) {
	switch binding.kind {
	case "int":
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return nil, NewConfigError(strings.Join(binding.path, "."), binding.key+" must be an integer")
		}
		return parsed, nil
	case "bool":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, NewConfigError(strings.Join(binding.path, "."), binding.key+" must be a boolean")
		}
		return parsed, nil
	default:
		return value, nil
	}
}

func setPath(target map[string]any, path []string, value any) {
	if len(path) == 0 {
		return
	}
	current := target
	for _, segment := range path[:len(path)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			configToLayerMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			configToLayerMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

// configToLayerMap flattens a Config into an options layer. Non-default
// layers only carry fields that were set, so zero values never mask a lower
// layer.
func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	setString := func(path []string, value string) {
		if includeZero || strings.TrimSpace(value) != "" {
			setPath(layer, path, value)
		}
	}
	setInt := func(path []string, value int) {
		if includeZero || value != 0 {
			setPath(layer, path, value)
		}
	}
	setBool := func(path []string, value bool) {
		if includeZero || value {
			setPath(layer, path, value)
		}
	}

	setString([]string{"service_name"}, cfg.ServiceName)
	setInt([]string{"request_timeout_seconds"}, cfg.RequestTimeoutSeconds)
	setString([]string{"shortcut", "token"}, cfg.Shortcut.Token)
	setString([]string{"shortcut", "secret"}, cfg.Shortcut.Secret)
	setString([]string{"shortcut", "base_url"}, cfg.Shortcut.BaseURL)
	setString([]string{"shortcut", "signature_header"}, cfg.Shortcut.SignatureHeader)
	setString([]string{"slack", "token"}, cfg.Slack.Token)
	setString([]string{"slack", "base_url"}, cfg.Slack.BaseURL)
	setString([]string{"slack", "needs_testing_channel"}, cfg.Slack.NeedsTestingChannel)
	setString([]string{"slack", "uat_not_approved_channel"}, cfg.Slack.UATNotApprovedChannel)
	setString([]string{"database", "driver"}, cfg.Database.Driver)
	setString([]string{"database", "dsn"}, cfg.Database.DSN)
	setBool([]string{"database", "debug"}, cfg.Database.Debug)
	setInt([]string{"database", "cache_ttl_seconds"}, cfg.Database.CacheTTLSeconds)
	setString([]string{"http", "addr"}, cfg.HTTP.Addr)
	setString([]string{"log", "level"}, cfg.Log.Level)
	setBool([]string{"log", "development"}, cfg.Log.Development)
	return layer
}
