// Command neurochat-authd runs the authentication service: registration,
// login, session resolution, and the admin account operations, backed by
// Redis for session caching and SQLite or MySQL for durable state.
//
// Configuration comes from the environment (a .env file is honored):
//
//	LISTEN_ADDR      address to serve on (default :8080)
//	REDIS_ADDR       redis host:port (default 127.0.0.1:6379)
//	REDIS_PASSWORD   optional redis auth
//	DATABASE_DRIVER  sqlite or mysql (default sqlite)
//	DATABASE_DSN     sqlite path or mysql DSN (default neurochat.db)
//	SESSION_TTL      session lifetime (default 24h)
//	REMEMBER_TTL     remembered-login lifetime (default 720h)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	neurochat "github.com/EdwinKingori/I-NeuroChat"
	"github.com/EdwinKingori/I-NeuroChat/middleware"
	"github.com/EdwinKingori/I-NeuroChat/sqlstore"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	db, dialect, err := sqlstore.OpenDB(
		envOr("DATABASE_DRIVER", "sqlite"),
		envOr("DATABASE_DSN", "neurochat.db"),
	)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := sqlstore.New(db, dialect)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := store.SeedRBAC(ctx); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", "127.0.0.1:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	defer rdb.Close()

	engine, err := buildEngine(store, rdb)
	if err != nil {
		return err
	}
	defer engine.Close()

	addr := envOr("LISTEN_ADDR", ":8080")
	log.Printf("neurochat-authd listening on %s (db=%s)", addr, dialect)
	return http.ListenAndServe(addr, routes(engine))
}

func buildEngine(store *sqlstore.Store, rdb *redis.Client) (*neurochat.Engine, error) {
	return neurochat.New().
		WithConfig(configFromEnv()).
		WithRedis(rdb).
		WithSessionProvider(store).
		WithUserProvider(store).
		WithRoleProvider(store).
		WithPermissions(sqlstore.PermissionNames()...).
		WithRoles(sqlstore.RoleDefinitions()...).
		WithAuditSink(neurochat.NewJSONWriterSink(os.Stdout)).
		Build()
}

func configFromEnv() neurochat.Config {
	cfg := neurochat.DefaultConfig()
	if ttl := durationEnv("SESSION_TTL"); ttl > 0 {
		cfg.Session.SessionTTL = ttl
		if cfg.Session.CacheTTL > ttl {
			cfg.Session.CacheTTL = ttl
		}
	}
	if ttl := durationEnv("REMEMBER_TTL"); ttl > 0 {
		cfg.Session.RememberTTL = ttl
	}
	return cfg
}

func routes(engine *neurochat.Engine) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /auth/register", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		userID, err := engine.Register(r.Context(), neurochat.RegisterInput{
			Email:    in.Email,
			Username: in.Username,
			Password: in.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"user_id": userID})
	}))

	mux.Handle("POST /auth/login", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Identifier string `json:"identifier"`
			Password   string `json:"password"`
			Remember   bool   `json:"remember"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		res, err := engine.Login(r.Context(), in.Identifier, in.Password, in.Remember)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"session_key": res.SessionKey,
			"user_id":     res.UserID,
			"expires_at":  res.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}))

	mux.Handle("POST /auth/logout", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(middleware.SessionKeyHeader)
		if err := engine.Logout(r.Context(), token); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	guard := middleware.Guard(engine)

	mux.Handle("GET /me", guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, _ := middleware.IdentityFromContext(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"user_id": ident.UserID,
			"email":   ident.Email,
			"role":    ident.Role,
		})
	})))

	mux.Handle("POST /admin/users/{id}/activate",
		guard(middleware.RequirePermission(engine, "users.activate")(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := engine.ActivateUser(r.Context(), r.PathValue("id")); err != nil {
					writeError(w, err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			}))))

	mux.Handle("POST /admin/users/{id}/deactivate",
		guard(middleware.RequirePermission(engine, "users.activate")(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := engine.DeactivateUser(r.Context(), r.PathValue("id")); err != nil {
					writeError(w, err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			}))))

	mux.Handle("POST /admin/users/{id}/roles",
		guard(middleware.RequirePermission(engine, "users.promote")(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var in struct {
					Role string `json:"role"`
				}
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					http.Error(w, "bad request", http.StatusBadRequest)
					return
				}
				if err := engine.AssignRole(r.Context(), r.PathValue("id"), in.Role); err != nil {
					writeError(w, err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			}))))

	mux.Handle("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := engine.CachePing(r.Context()); err != nil {
			http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	requestLog := middleware.RequestLog(neurochat.NewJSONWriterSink(os.Stdout))
	return middleware.Trace()(requestLog(mux))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, neurochat.ErrInvalidCredentials),
		errors.Is(err, neurochat.ErrInvalidToken),
		errors.Is(err, neurochat.ErrSessionNotFound):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, neurochat.ErrInactiveUser),
		errors.Is(err, neurochat.ErrInsufficientPermissions):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, neurochat.ErrDuplicateIdentifier):
		http.Error(w, "conflict", http.StatusConflict)
	case errors.Is(err, neurochat.ErrUnknownRole),
		errors.Is(err, neurochat.ErrWeakPassword):
		http.Error(w, "bad request", http.StatusBadRequest)
	case errors.Is(err, neurochat.ErrUserNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, neurochat.ErrStorageUnavailable):
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("ignoring invalid %s=%q: %v", key, v, err)
		return 0
	}
	return d
}
