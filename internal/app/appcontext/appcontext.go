package appcontext

const (
	// EnvPlugin is the normal mode: embedded in the game client runtime.
	EnvPlugin Env = iota
	// EnvReplay feeds recorded signals through the pipeline for development.
	EnvReplay
)

type Env int

type Ctx struct {
	Env Env
}

func Declare(env Env) Ctx {
	return Ctx{
		Env: env,
	}
}
