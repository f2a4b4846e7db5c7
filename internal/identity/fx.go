package identity

import (
	"time"

	"github.com/smallbiznis/branchops/internal/config"
	"github.com/smallbiznis/branchops/internal/identity/repository"
	"github.com/smallbiznis/branchops/internal/identity/service"
	"github.com/smallbiznis/branchops/internal/identity/token"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(repository.New),
	fx.Provide(NewTokenIssuer),
	fx.Provide(service.New),
)

func NewTokenIssuer(cfg config.Config) *token.Issuer {
	return token.NewIssuer(cfg.AuthJWTSecret, cfg.AppName, time.Duration(cfg.AuthTokenTTLMin)*time.Minute)
}
