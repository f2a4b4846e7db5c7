package worksite

import (
	"github.com/smallbiznis/branchops/internal/worksite/repository"
	"github.com/smallbiznis/branchops/internal/worksite/service"
	"go.uber.org/fx"
)

var Module = fx.Module("worksite.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
