//go:build wireinject
// +build wireinject

package wire

import (
	"fmt"
	"log"

	"github.com/google/wire"
	"github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"artfolio/internal/block"
	"artfolio/internal/cache"
	"artfolio/internal/config"
	"artfolio/internal/dbmongo"
	"artfolio/internal/dbmysql"
	"artfolio/internal/notif"
	"artfolio/internal/portfolio"
	"artfolio/internal/social"
	"artfolio/internal/upload"
)

type Application struct {
	Config           *config.Config
	DB               *gorm.DB
	Mongo            *dbmongo.MongoClient
	PortfolioHandler *portfolio.Handler
	BlockHandler     *block.Handler
	SocialHandler    *social.Handler
	NotifHandler     *notif.Handler
	UploadHandler    *upload.Handler
}

func InitializeApplication() (*Application, error) {
	wire.Build(
		config.Load,
		dbmysql.NewMySQL, // receives config as parameter
		dbmongo.NewMongoConnection,
		dbmongo.NewObjectStorage,
		cache.NewCache,
		ProvideNATSConnection,
		dbmysql.NewUserRepository,
		block.NewBlockRepository,
		portfolio.NewPortfolioRepository,
		social.NewSocialRepository,
		notif.NewNotificationRepository,
		upload.NewUploadRepository,
		notif.NewNotificationService,
		portfolio.NewPortfolioService,
		block.NewBlockService,
		social.NewSocialService,
		upload.NewUploadService,
		portfolio.NewHandler,
		block.NewHandler,
		social.NewHandler,
		notif.NewHandler,
		upload.NewHandler,
		wire.Bind(new(portfolio.BlockSource), new(block.BlockRepository)),
		wire.Bind(new(portfolio.Notifier), new(*notif.NotificationService)),
		wire.Bind(new(block.EditGate), new(portfolio.PortfolioService)),
		wire.Bind(new(social.PortfolioSource), new(portfolio.PortfolioRepository)),
		wire.Bind(new(social.Notifier), new(*notif.NotificationService)),
		wire.Bind(new(upload.ObjectStore), new(*dbmongo.ObjectStorage)),
		wire.Bind(new(upload.BlockBinder), new(block.BlockService)),
		wire.Bind(new(upload.ThumbnailBinder), new(portfolio.PortfolioService)),
		wire.Bind(new(upload.ProfileBinder), new(dbmysql.UserRepository)),
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}

func ProvideNATSConnection(cfg *config.Config) (*nats.Conn, error) {
	if !cfg.NATS.Enabled {
		log.Println("NATS disabled, notifications stay database-only")
		return nil, nil
	}
	conn, err := nats.Connect(fmt.Sprintf("nats://%s:%s", cfg.NATS.Host, cfg.NATS.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}
