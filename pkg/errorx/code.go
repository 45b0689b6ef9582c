package errorx

type Code int

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	BadGateway       Code = 100009
	TooManyRequests  Code = 100010

	// Reputation codes
	SelfGrant       Code = 200001
	GiverWeeklyCap  Code = 200002
	DuplicateInWeek Code = 200003
)
