package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the root path within a route group.
	RouterRootPath = ""

	// APIPrefix is the path prefix of the JSON endpoints.
	APIPrefix = "/api"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// ErrMsgSearchCriteriaRequired is shown when a mapping search arrives
	// without any criterion.
	ErrMsgSearchCriteriaRequired = "Please input one search criteria at least"

	// ErrMsgPermissionDenied is shown when the session role does not
	// allow the requested action.
	ErrMsgPermissionDenied = "You are not allowed to perform this action"

	// ErrMsgInternal is the generic failure message.
	ErrMsgInternal = "Internal server error"
)

// LocalsUserKey is the fiber.Locals key the auth middleware stores the
// session user under.
const LocalsUserKey = "user"
