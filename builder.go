package neurochat

import (
	"fmt"
	"sort"

	"github.com/EdwinKingori/I-NeuroChat/password"
	"github.com/EdwinKingori/I-NeuroChat/permission"
	"github.com/EdwinKingori/I-NeuroChat/session"
	"github.com/redis/go-redis/v9"
)

// RoleDefinition declares one role and the permission names it grants.
// Permissions referenced here must also appear in the builder's permission
// set.
type RoleDefinition struct {
	Name        string
	Permissions []string
}

// Builder assembles an [Engine]. The zero value is not usable; start with
// [New] and chain the With methods before calling [Builder.Build].
//
//	engine, err := neurochat.New().
//		WithRedis(rdb).
//		WithUserProvider(store).
//		WithSessionProvider(store).
//		WithRoleProvider(store).
//		WithPermissions("users.read", "users.activate", "users.promote").
//		WithRoles(
//			neurochat.RoleDefinition{Name: "admin", Permissions: []string{"users.read", "users.activate", "users.promote"}},
//			neurochat.RoleDefinition{Name: "support", Permissions: []string{"users.read"}},
//			neurochat.RoleDefinition{Name: "user"},
//		).
//		Build()
type Builder struct {
	config      Config
	redisClient redis.UniversalClient
	sessions    SessionProvider
	users       UserProvider
	roles       RoleProvider
	permissions []string
	roleDefs    []RoleDefinition
	auditSink   AuditSink
	err         error
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the whole configuration. Call it before the other
// With methods that read config fields.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client backing the session cache tier.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redisClient = client
	return b
}

// WithSessionProvider sets the durable session store.
func (b *Builder) WithSessionProvider(p SessionProvider) *Builder {
	b.sessions = p
	return b
}

// WithUserProvider sets the durable account store.
func (b *Builder) WithUserProvider(p UserProvider) *Builder {
	b.users = p
	return b
}

// WithRoleProvider sets the durable role-assignment store.
func (b *Builder) WithRoleProvider(p RoleProvider) *Builder {
	b.roles = p
	return b
}

// WithPermissions registers the full permission vocabulary. At most 64
// distinct permissions are supported.
func (b *Builder) WithPermissions(names ...string) *Builder {
	b.permissions = append(b.permissions, names...)
	return b
}

// WithRoles declares the role set and each role's granted permissions. The
// set is frozen at Build; roles cannot be added at runtime.
func (b *Builder) WithRoles(defs ...RoleDefinition) *Builder {
	b.roleDefs = append(b.roleDefs, defs...)
	return b
}

// WithAuditSink sets the destination for audit events. Without one, events
// are dispatched to a no-op sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, freezes the permission and role sets,
// and returns a ready Engine. The builder must not be reused after Build.
func (b *Builder) Build() (*Engine, error) {
	if b.err != nil {
		return nil, b.err
	}

	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineNotReady, err)
	}
	if b.redisClient == nil {
		return nil, fmt.Errorf("%w: redis client required", ErrEngineNotReady)
	}
	if b.sessions == nil || b.users == nil || b.roles == nil {
		return nil, fmt.Errorf("%w: session, user, and role providers required", ErrEngineNotReady)
	}
	if len(b.roleDefs) == 0 {
		return nil, fmt.Errorf("%w: at least one role definition required", ErrEngineNotReady)
	}

	registry, roleManager, err := buildPermissionSet(b.permissions, b.roleDefs)
	if err != nil {
		return nil, err
	}
	if !roleManager.HasRole(b.config.Account.DefaultRole) {
		return nil, fmt.Errorf("%w: default role %q is not a declared role", ErrEngineNotReady, b.config.Account.DefaultRole)
	}

	hasher, err := password.New(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineNotReady, err)
	}

	return &Engine{
		config:       b.config,
		registry:     registry,
		roleManager:  roleManager,
		cache:        session.NewStore(b.redisClient, b.config.Session.RedisPrefix),
		passwordHash: hasher,
		audit:        newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:      NewMetrics(b.config.Metrics),
		sessions:     b.sessions,
		users:        b.users,
		roles:        b.roles,
	}, nil
}

func buildPermissionSet(permNames []string, roleDefs []RoleDefinition) (*permission.Registry, *permission.RoleManager, error) {
	// Register declared permissions first so bit positions follow
	// declaration order, then sweep role grants for names that were only
	// referenced there.
	registry := permission.NewRegistry()
	seen := make(map[string]bool, len(permNames))
	for _, name := range permNames {
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, err := registry.Register(name); err != nil {
			return nil, nil, fmt.Errorf("%w: permission %q: %v", ErrEngineNotReady, name, err)
		}
	}

	var implicit []string
	for _, def := range roleDefs {
		for _, name := range def.Permissions {
			if !seen[name] {
				seen[name] = true
				implicit = append(implicit, name)
			}
		}
	}
	sort.Strings(implicit)
	for _, name := range implicit {
		if _, err := registry.Register(name); err != nil {
			return nil, nil, fmt.Errorf("%w: permission %q: %v", ErrEngineNotReady, name, err)
		}
	}
	registry.Freeze()

	roleManager := permission.NewRoleManager(registry)
	for _, def := range roleDefs {
		if def.Name == "" {
			return nil, nil, fmt.Errorf("%w: role with empty name", ErrEngineNotReady)
		}
		if roleManager.HasRole(def.Name) {
			return nil, nil, fmt.Errorf("%w: duplicate role %q", ErrEngineNotReady, def.Name)
		}
		if err := roleManager.RegisterRole(def.Name, def.Permissions); err != nil {
			return nil, nil, fmt.Errorf("%w: role %q: %v", ErrEngineNotReady, def.Name, err)
		}
	}
	roleManager.Freeze()

	return registry, roleManager, nil
}
