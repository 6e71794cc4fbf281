package commands

import (
	"bookbridge/internal/components/telemetry"
	"bookbridge/internal/kindle"
	"bookbridge/internal/retrieval"
	"bookbridge/internal/scrapers/catalog"
	"bookbridge/internal/searchcache"
	"bookbridge/internal/sessions"
	"bookbridge/internal/users"
	"context"
	"fmt"
)

// App holds the components a command may need, each one is built the first
// time it is asked for.
type App struct {
	Config Config
	Tel    telemetry.API

	service  *retrieval.Service
	sessions *sessions.Registry
}

func NewApp(config Config, tel telemetry.API) *App {
	return &App{Config: config, Tel: tel}
}

func (a *App) Retrieval() (retrieval.Service, error) {
	if a.service != nil {
		return *a.service, nil
	}
	if a.Config.Catalog.BaseUrl == "" {
		return retrieval.Service{}, fmt.Errorf("no catalog url configured, set catalog.base_url or CATALOG_URL")
	}

	scraper, err := catalog.NewScraper(catalog.ScraperOptions{
		Client: catalog.ClientOptions{
			BaseUrl:          a.Config.Catalog.BaseUrl,
			Timeout:          a.Config.CatalogTimeout(),
			UserAgent:        a.Config.Catalog.UserAgent,
			CloudflareBypass: a.Config.Catalog.CloudflareBypass,
		},
		MaxPages: a.Config.Catalog.MaxPages,
	}, a.Tel)
	if err != nil {
		return retrieval.Service{}, err
	}

	cache, err := searchcache.New(searchcache.Options{
		TTL:      a.Config.CacheTtl(),
		Capacity: a.Config.Cache.Capacity,
	}, a.Tel)
	if err != nil {
		return retrieval.Service{}, err
	}
	registry, err := sessions.NewRegistry(sessions.Options{
		Timeout:  a.Config.SessionTimeout(),
		Capacity: a.Config.Sessions.Capacity,
	}, a.Tel)
	if err != nil {
		return retrieval.Service{}, err
	}

	service := retrieval.NewService(retrieval.Options{
		Catalog:     scraper,
		Cache:       cache,
		Sessions:    registry,
		PageSize:    a.Config.PageSize,
		DownloadDir: a.Config.DownloadDir,
	}, a.Tel)
	a.service = &service
	a.sessions = registry
	return service, nil
}

// Sessions returns the registry backing the retrieval service, Retrieval must
// have been called before.
func (a *App) Sessions() *sessions.Registry {
	return a.sessions
}

func (a *App) Sender() (kindle.Sender, error) {
	email := a.Config.Email
	if email.Server == "" || email.EmailAddress == "" {
		return kindle.Sender{}, fmt.Errorf("smtp is not configured, set email.server and email.email_address or SMTP_HOST and SENDER_EMAIL")
	}
	return kindle.NewSender(kindle.SmtpConfig{
		Server:       email.Server,
		Port:         email.Port,
		EmailAddress: email.EmailAddress,
		Password:     email.Password,
		StartTLS:     email.StartTLS,
		TLS:          email.TLS,
	}, a.Tel), nil
}

// Users opens the user database, the returned function closes it.
func (a *App) Users(ctx context.Context) (users.Store, func(), error) {
	database, err := a.Config.Database.OpenDB()
	if err != nil {
		return users.Store{}, nil, fmt.Errorf("open user database: %w", err)
	}
	store := users.NewStore(database, nil, a.Tel)
	err = store.Migrate(ctx)
	if err != nil {
		database.Close()
		return users.Store{}, nil, err
	}
	return store, func() { database.Close() }, nil
}
