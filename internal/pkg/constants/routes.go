package constants

// Static route constants
const (
	PublicRoute      = "/"
	LoginRoute       = "/login"
	RegisterRoute    = "/register"
	ProfilePrefix    = "/u/"
	CollectivePrefix = "/c/"
)
