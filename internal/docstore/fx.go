package docstore

import "go.uber.org/fx"

var Module = fx.Module("docstore",
	fx.Provide(
		fx.Annotate(NewSQLStore, fx.As(new(Store))),
	),
)
