package permission

// Group defines a public type used by goAuthKit APIs.
//
// Group instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Group struct {
	ID       int64
	Name     string
	Codename string
	IsSystem bool
	IsActive bool
}

// Permission defines a public type used by goAuthKit APIs.
//
// Permission instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Permission struct {
	ID       int64
	Codename string
	Name     string
	Category string
}
