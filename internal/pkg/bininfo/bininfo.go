package bininfo

// Populated at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)
