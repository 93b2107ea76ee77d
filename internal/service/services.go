package service

import (
	"fmt"

	"github.com/MKhiriev/go-blog/internal/adapter"
	"github.com/MKhiriev/go-blog/internal/config"
	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/media"
	"github.com/MKhiriev/go-blog/internal/store"
	"github.com/MKhiriev/go-blog/internal/validators"
	"github.com/MKhiriev/go-blog/models"
)

type Services struct {
	AuthService     AuthService
	AccountService  AccountService
	PostService     PostService
	CategoryService CategoryService
	AppInfoService  AppInfoService
}

func NewServices(
	storages *store.Storages,
	mailer adapter.MailAdapter,
	images media.Processor,
	buildInfo models.AppBuildInfo,
	cfg config.StructuredConfig,
	logger *logger.Logger,
) (*Services, error) {
	validator := validators.NewInputValidator()
	credentials := NewCredentialService(storages.UserRepository, validator, cfg.App, logger)

	appInfo, err := NewAppInfoService(cfg.App, buildInfo, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating app info service: %w", err)
	}

	return &Services{
		AuthService: NewAuthService(storages.UserRepository, storages.SessionRepository, credentials, cfg.App, logger),
		AccountService: NewAccountService(AccountDeps{
			Users:       storages.UserRepository,
			Posts:       storages.PostRepository,
			Sessions:    storages.SessionRepository,
			Avatars:     storages.AvatarFileStorage,
			Credentials: credentials,
			Mailer:      mailer,
			Images:      images,
			Validator:   validator,
		}, cfg, logger),
		PostService:     NewPostService(storages.PostRepository, storages.CategoryRepository, validator, cfg.App, logger),
		CategoryService: NewCategoryService(storages.CategoryRepository, logger),
		AppInfoService:  appInfo,
	}, nil
}
