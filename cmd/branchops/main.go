package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/branchops/internal/clock"
	"github.com/smallbiznis/branchops/internal/config"
	"github.com/smallbiznis/branchops/internal/docstore"
	identityservice "github.com/smallbiznis/branchops/internal/identity/service"
	"github.com/smallbiznis/branchops/internal/migration"
	"github.com/smallbiznis/branchops/internal/observability"
	"github.com/smallbiznis/branchops/internal/ratelimit"
	"github.com/smallbiznis/branchops/internal/seed"
	"github.com/smallbiznis/branchops/internal/server"
	"github.com/smallbiznis/branchops/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		docstore.Module,

		// HTTP API with every domain module
		server.Module,
		fx.Provide(signInThrottle),

		seed.Module,
	)
	app.Run()
}

func signInThrottle(l *ratelimit.SignInLimiter) identityservice.Throttle {
	return l
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
