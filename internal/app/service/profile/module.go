package profile

import "go.uber.org/fx"

// Module exposes the profile service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
