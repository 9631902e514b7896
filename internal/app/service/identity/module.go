package identity

import "go.uber.org/fx"

// Module exposes the identity service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
