package branch

import (
	"github.com/smallbiznis/branchops/internal/branch/repository"
	"github.com/smallbiznis/branchops/internal/branch/service"
	"go.uber.org/fx"
)

var Module = fx.Module("branch.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
