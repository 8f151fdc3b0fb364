package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tribune/internal/accounts"
	"tribune/internal/auth"
	"tribune/internal/config"
	"tribune/internal/database/boltstore"
	"tribune/internal/database/sqlitestore"
	"tribune/internal/events"
	"tribune/internal/feed"
	"tribune/internal/handlers"
	"tribune/internal/identity"
	"tribune/internal/join"
	"tribune/internal/metrics"
	"tribune/internal/moderation"
	"tribune/internal/notify"
	"tribune/internal/routing"
	"tribune/internal/storage"
	"tribune/internal/tracing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Configure zerolog
	switch cfg.LogLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info", "":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Pretty console logging in development, JSON in production
	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	log.Info().Msg("Starting Tribune")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TracingEnabled {
		tp, err := tracing.Init(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracing")
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shut down tracer provider")
			}
		}()
	}

	// Open the database
	store, err := boltstore.Open(boltstore.Options{Path: cfg.DBPath})
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open database")
	}
	defer store.Close()
	log.Info().Str("path", cfg.DBPath).Msg("Database opened")

	userStore := store.UserStore()
	sessionStore := store.SessionStore()

	// The moderation store can run on SQLite instead of Bolt; identity data
	// always lives in Bolt so purges stay a single transaction.
	var moderationStore moderation.Store = store.ModerationStore()
	if cfg.DBBackend == "sqlite" {
		sqlitePath := strings.TrimSuffix(cfg.DBPath, filepath.Ext(cfg.DBPath)) + "-moderation.sqlite"
		db, err := sqlitestore.Open(sqlitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", sqlitePath).Msg("Failed to open moderation database")
		}
		defer db.Close()
		moderationStore = sqlitestore.NewModerationStore(db)
		log.Info().Str("path", sqlitePath).Msg("Moderation store on SQLite")
	}

	// Media storage
	mediaStore, err := storage.NewMediaStore(cfg.MediaDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.MediaDir).Msg("Failed to initialize media storage")
	}

	// Policy and services
	policy := identity.NewPolicy(cfg.ProtectedEmail)

	accountsSvc := accounts.NewService(userStore, policy)
	accountsSvc.SetAudit(moderationStore)

	authSvc, err := auth.NewService(userStore, sessionStore, auth.Config{
		JWTSecret:     cfg.JWTSecret,
		SecureCookies: cfg.SecureCookies,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize auth service")
	}

	moderationSvc := moderation.NewService(moderationStore, policy)
	moderationSvc.SetMedia(mediaStore)

	feedSvc := feed.NewService(moderationStore, userStore)
	eventsSvc := events.NewService(store.EventStore(), policy)
	joinSvc := join.NewService(store.JoinStore(), policy)

	// Email notifications
	sender := notify.NewSender(notify.SMTPConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		User:       cfg.SMTPUser,
		Pass:       cfg.SMTPPass,
		From:       cfg.SMTPFrom,
		AdminEmail: cfg.AdminEmail,
	})
	if sender.Enabled() {
		log.Info().Str("host", cfg.SMTPHost).Msg("Email notifications enabled")
	} else {
		log.Info().Msg("Email notifications disabled (no SMTP host)")
	}

	dispatcher := notify.NewDispatcher(sender, func(ctx context.Context) ([]string, error) {
		users, err := userStore.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		addrs := make([]string, 0, len(users))
		for i := range users {
			if !identity.IsBlocked(&users[i], now) {
				addrs = append(addrs, users[i].Email)
			}
		}
		return addrs, nil
	})

	// Cross-service hooks
	moderationSvc.SetHooks(moderation.Hooks{
		OnAutoFlag: func(v moderation.Voice, reportCount int) {
			metrics.AutoFlagsTotal.Inc()
			dispatcher.VoiceFlagged(v.ID, reportCount)
		},
	})
	accountsSvc.SetHooks(accounts.Hooks{
		OnDelete: func(p identity.Principal) {
			moderationSvc.ReleaseMediaForAuthor(context.Background(), p.ID)
		},
	})
	eventsSvc.SetHooks(events.Hooks{
		OnCreate: func(ev events.Event) {
			dispatcher.EventCreated(ev.Title, ev.Location, ev.StartsAt)
		},
	})
	joinSvc.SetHooks(join.Hooks{
		OnSubmit: func(req join.Request) {
			dispatcher.JoinRequestReceived(req.Name, req.Email)
		},
	})

	// Gauge metrics
	metrics.StartCollector(ctx, metrics.StatsSource{
		RegisteredCount: func() int {
			users, err := userStore.ListUsers(context.Background())
			if err != nil {
				return 0
			}
			return len(users)
		},
		BlockedCount: func() int {
			users, err := userStore.ListUsers(context.Background())
			if err != nil {
				return 0
			}
			now := time.Now()
			n := 0
			for i := range users {
				if identity.IsBlocked(&users[i], now) {
					n++
				}
			}
			return n
		},
		BannedEmailCount: func() int {
			bans, err := userStore.ListBans(context.Background())
			if err != nil {
				return 0
			}
			return len(bans)
		},
		VoiceCount: func() int {
			voices, err := moderationStore.ListVoices(context.Background())
			if err != nil {
				return 0
			}
			return len(voices)
		},
		UnderReviewCount: func() int {
			voices, err := moderationStore.ListVoices(context.Background())
			if err != nil {
				return 0
			}
			n := 0
			for _, v := range voices {
				if v.State == moderation.VoiceStateUnderReview {
					n++
				}
			}
			return n
		},
		PendingJoinCount: func() int {
			reqs, err := store.JoinStore().ListJoinRequests(context.Background())
			if err != nil {
				return 0
			}
			return len(reqs)
		},
	}, time.Minute)

	// Handlers and routing
	h := handlers.NewHandler(authSvc, accountsSvc, userStore, policy)
	h.SetModeration(moderationSvc, moderationStore)
	h.SetFeed(feedSvc)
	h.SetEvents(eventsSvc)
	h.SetJoin(joinSvc)

	handler := routing.SetupRouter(routing.Config{
		Handlers: h,
		Auth:     authSvc,
		Logger:   log.Logger,
		Tracing:  cfg.TracingEnabled,
	})

	log.Info().
		Str("address", "0.0.0.0:"+cfg.Port).
		Str("url", "http://localhost:"+cfg.Port).
		Bool("secure_cookies", cfg.SecureCookies).
		Msg("Starting HTTP server")

	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
