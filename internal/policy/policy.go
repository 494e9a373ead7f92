// Package policy maps API actions to the minimum authorization level
// required to perform them. Decisions are pure lookups with no side effects.
package policy

// Level is the minimum authorization a requester must hold for an action.
type Level int

const (
	// AnonymousOK allows any requester.
	AnonymousOK Level = iota
	// AuthenticatedOrReadOnly allows anonymous requesters for read-only
	// methods and requires authentication for everything else.
	AuthenticatedOrReadOnly
	// AuthenticatedRequired requires an authenticated account.
	AuthenticatedRequired
	// AdminRequired requires an authenticated account with the admin role.
	AdminRequired
)

// String returns the level name for logging.
func (l Level) String() string {
	switch l {
	case AnonymousOK:
		return "anonymous_ok"
	case AuthenticatedOrReadOnly:
		return "authenticated_or_readonly"
	case AuthenticatedRequired:
		return "authenticated_required"
	case AdminRequired:
		return "admin_required"
	}
	return "unknown"
}

// Resource identifies the resource type an action targets.
type Resource string

const (
	ResourceAd      Resource = "ad"
	ResourceComment Resource = "comment"
)

// Action identifies a CRUD operation or custom endpoint on a resource.
type Action string

const (
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDelete        Action = "delete"
	ActionMe            Action = "me"
)

// adLevels enumerates per-action overrides for ad endpoints. Actions not
// listed here fall through to AdminRequired, so anything new is admin-only
// until explicitly opened up.
var adLevels = map[Action]Level{
	ActionRetrieve: AuthenticatedRequired,
	ActionCreate:   AuthenticatedRequired,
	ActionMe:       AuthenticatedRequired,
	ActionList:     AuthenticatedOrReadOnly,
}

// Required resolves the minimum level for an action on a resource.
//
// Comments declare no per-action overrides: every comment action resolves to
// the AuthenticatedOrReadOnly baseline, including update and delete. There is
// deliberately no ownership check here.
func Required(resource Resource, action Action) Level {
	if resource == ResourceAd {
		if level, ok := adLevels[action]; ok {
			return level
		}
		return AdminRequired
	}
	return AuthenticatedOrReadOnly
}
