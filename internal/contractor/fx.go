package contractor

import (
	"github.com/smallbiznis/branchops/internal/contractor/repository"
	"github.com/smallbiznis/branchops/internal/contractor/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contractor.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
