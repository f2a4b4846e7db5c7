package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/branchops/internal/authorization"
	"github.com/smallbiznis/branchops/internal/branch"
	branchdomain "github.com/smallbiznis/branchops/internal/branch/domain"
	"github.com/smallbiznis/branchops/internal/config"
	"github.com/smallbiznis/branchops/internal/contractor"
	contractordomain "github.com/smallbiznis/branchops/internal/contractor/domain"
	"github.com/smallbiznis/branchops/internal/events"
	"github.com/smallbiznis/branchops/internal/identity"
	identitydomain "github.com/smallbiznis/branchops/internal/identity/domain"
	"github.com/smallbiznis/branchops/internal/migration"
	"github.com/smallbiznis/branchops/internal/observability"
	obsmiddleware "github.com/smallbiznis/branchops/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/branchops/internal/observability/metrics"
	obstracing "github.com/smallbiznis/branchops/internal/observability/tracing"
	"github.com/smallbiznis/branchops/internal/profile"
	profiledomain "github.com/smallbiznis/branchops/internal/profile/domain"
	"github.com/smallbiznis/branchops/internal/ratelimit"
	"github.com/smallbiznis/branchops/internal/report"
	"github.com/smallbiznis/branchops/internal/worksite"
	worksitedomain "github.com/smallbiznis/branchops/internal/worksite/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	authorization.Module,
	events.Module,
	ratelimit.Module,
	identity.Module,
	profile.Module,
	branch.Module,
	contractor.Module,
	worksite.Module,
	report.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.CORSAllowedOrigins))
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, _ migration.Migrated) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	identity    identitydomain.Provider
	profiles    profiledomain.Repository
	authzSvc    authorization.Service
	branches    branchdomain.Service
	contractors contractordomain.Service
	worksites   worksitedomain.Service
	reports     *report.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	Identity    identitydomain.Provider
	Profiles    profiledomain.Repository
	AuthzSvc    authorization.Service
	Branches    branchdomain.Service
	Contractors contractordomain.Service
	Worksites   worksitedomain.Service
	Reports     *report.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		identity:    p.Identity,
		profiles:    p.Profiles,
		authzSvc:    p.AuthzSvc,
		branches:    p.Branches,
		contractors: p.Contractors,
		worksites:   p.Worksites,
		reports:     p.Reports,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signin", s.SignIn)
	auth.POST("/signup", s.SignUp)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Me --------
	me := api.Group("/me")
	{
		me.GET("/profile", s.authorize(authorization.ObjectProfile, authorization.ActionView), s.GetMyProfile)
		me.PATCH("/profile", s.authorize(authorization.ObjectProfile, authorization.ActionUpdate), s.UpdateMyProfile)
		me.GET("/branches", s.ListMyBranches)
	}

	// -------- Branches --------
	api.GET("/branches", s.authorize(authorization.ObjectBranch, authorization.ActionView), s.requireUnscoped(), s.ListBranches)
	api.POST("/branches", s.authorize(authorization.ObjectBranch, authorization.ActionCreate), s.CreateBranch)
	api.GET("/branches/kpis", s.authorize(authorization.ObjectBranch, authorization.ActionView), s.requireUnscoped(), s.GetBranchKPIs)

	branch := api.Group("/branches/:branchId", s.branchScope())
	{
		branch.GET("", s.authorize(authorization.ObjectBranch, authorization.ActionView), s.GetBranch)
		branch.PATCH("", s.authorize(authorization.ObjectBranch, authorization.ActionUpdate), s.UpdateBranch)
		branch.POST("/toggle", s.authorize(authorization.ObjectBranch, authorization.ActionUpdate), s.ToggleBranch)
		branch.GET("/report.pdf", s.authorize(authorization.ObjectReport, authorization.ActionView), s.RenderBranchReport)
		branch.GET("/vehiculos", s.authorize(authorization.ObjectWorksite, authorization.ActionView), s.ListBranchVehiculos)

		// -------- Contractors in a branch --------
		branch.GET("/contractors", s.authorize(authorization.ObjectContractor, authorization.ActionView), s.ListBranchContractors)
		branch.POST("/contractors", s.authorize(authorization.ObjectContractor, authorization.ActionCreate), s.CreateBranchContractor)
		branch.GET("/contractors/kpis", s.authorize(authorization.ObjectContractor, authorization.ActionView), s.GetContractorKPIs)

		contractor := branch.Group("/contractors/:contractorId", s.contractorScope())
		{
			contractor.GET("", s.authorize(authorization.ObjectContractor, authorization.ActionView), s.GetBranchContractor)
			contractor.PATCH("", s.authorize(authorization.ObjectContractor, authorization.ActionUpdate), s.UpdateBranchContractor)
			contractor.DELETE("", s.authorize(authorization.ObjectContractor, authorization.ActionDelete), s.DeleteBranchContractor)
			contractor.POST("/toggle", s.authorize(authorization.ObjectContractor, authorization.ActionUpdate), s.ToggleBranchContractor)
			contractor.PUT("/memberships", s.authorize(authorization.ObjectContractor, authorization.ActionMembershipEdit), s.EditMembership)

			// -------- Centros --------
			contractor.GET("/centros", s.authorize(authorization.ObjectWorksite, authorization.ActionView), s.ListCentros)
			contractor.POST("/centros", s.authorize(authorization.ObjectWorksite, authorization.ActionCreate), s.CreateCentro)
			contractor.GET("/centros/:centroId", s.authorize(authorization.ObjectWorksite, authorization.ActionView), s.GetCentro)
			contractor.PATCH("/centros/:centroId", s.authorize(authorization.ObjectWorksite, authorization.ActionUpdate), s.UpdateCentro)
			contractor.DELETE("/centros/:centroId", s.authorize(authorization.ObjectWorksite, authorization.ActionDelete), s.DeleteCentro)
			contractor.POST("/centros/:centroId/toggle", s.authorize(authorization.ObjectWorksite, authorization.ActionUpdate), s.ToggleCentro)

			// -------- Subcentros --------
			centro := contractor.Group("/centros/:centroId")
			centro.GET("/subcentros", s.authorize(authorization.ObjectWorksite, authorization.ActionView), s.ListSubcentros)
			centro.POST("/subcentros", s.authorize(authorization.ObjectWorksite, authorization.ActionCreate), s.CreateSubcentro)
			centro.GET("/subcentros/:subId", s.authorize(authorization.ObjectWorksite, authorization.ActionView), s.GetSubcentro)
			centro.PATCH("/subcentros/:subId", s.authorize(authorization.ObjectWorksite, authorization.ActionUpdate), s.UpdateSubcentro)
			centro.DELETE("/subcentros/:subId", s.authorize(authorization.ObjectWorksite, authorization.ActionDelete), s.DeleteSubcentro)
			centro.POST("/subcentros/:subId/toggle", s.authorize(authorization.ObjectWorksite, authorization.ActionUpdate), s.ToggleSubcentro)

			// -------- Vehiculos --------
			sub := centro.Group("/subcentros/:subId")
			sub.GET("/vehiculos", s.authorize(authorization.ObjectWorksite, authorization.ActionView), s.ListVehiculos)
			sub.POST("/vehiculos", s.authorize(authorization.ObjectWorksite, authorization.ActionCreate), s.CreateVehiculo)
			sub.GET("/vehiculos/:vehId", s.authorize(authorization.ObjectWorksite, authorization.ActionView), s.GetVehiculo)
			sub.PATCH("/vehiculos/:vehId", s.authorize(authorization.ObjectWorksite, authorization.ActionUpdate), s.UpdateVehiculo)
			sub.DELETE("/vehiculos/:vehId", s.authorize(authorization.ObjectWorksite, authorization.ActionDelete), s.DeleteVehiculo)
			sub.POST("/vehiculos/:vehId/toggle", s.authorize(authorization.ObjectWorksite, authorization.ActionUpdate), s.ToggleVehiculo)
		}
	}

	// -------- Contractors across branches --------
	api.GET("/contractors", s.authorize(authorization.ObjectContractor, authorization.ActionView), s.requireUnscoped(), s.ListAllContractors)
	api.POST("/contractors", s.authorize(authorization.ObjectContractor, authorization.ActionCreate), s.requireUnscoped(), s.CreateContractor)

	// -------- Pending contractors --------
	pending := api.Group("/contractors/pending")
	{
		pending.GET("", s.authorize(authorization.ObjectContractorPending, authorization.ActionView), s.ListPendingContractors)
		pending.GET("/:contractorId", s.authorize(authorization.ObjectContractorPending, authorization.ActionView), s.GetPendingContractor)
		pending.DELETE("/:contractorId", s.authorize(authorization.ObjectContractorPending, authorization.ActionDelete), s.requireUnscoped(), s.DeletePendingContractor)
		pending.POST("/:contractorId/assign", s.authorize(authorization.ObjectContractorPending, authorization.ActionPendingAssign), s.AssignPendingContractor)
	}

	api.PATCH("/contractors/:contractorId", s.ownContractorOrUnscoped(), s.authorize(authorization.ObjectContractor, authorization.ActionUpdate), s.UpdateContractorEverywhere)
	api.GET("/contractors/:contractorId/branches", s.ownContractorOrUnscoped(), s.authorize(authorization.ObjectContractor, authorization.ActionView), s.ListContractorBranches)
}
