package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// auth
	RouteAuth     = RouteApiV1 + "/auth"
	RouteRegister = RouteAuth + "/register"
	RouteLogin    = RouteAuth + "/login"
	RouteLogout   = RouteAuth + "/logout"
	RouteMe       = RouteAuth + "/me"

	// files
	RouteFiles          = RouteApiV1 + "/files"
	RouteFile           = RouteFiles + "/:file_id"
	RouteFileContent    = RouteFile + "/content"
	RouteFileVisibility = RouteFile + "/visibility"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)
