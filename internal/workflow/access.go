package workflow

import (
	"fmt"

	"github.com/Atul2512anand/buildforage5/internal/models"
	"github.com/Atul2512anand/buildforage5/internal/store"
)

// View is a screen of the authenticated application shell.
type View string

const (
	ViewSprintHub      View = "SPRINT_HUB"
	ViewDevMarket      View = "DEV_MARKET"
	ViewLaunchpad      View = "LAUNCHPAD"
	ViewNetworking     View = "NETWORKING"
	ViewMessages       View = "MESSAGES"
	ViewUserDashboard  View = "USER_DASHBOARD"
	ViewAdminDashboard View = "ADMIN_DASHBOARD"
)

// roleAccess is one row of the access table. Views are listed in sidebar order;
// the first entry is where a fresh session lands.
type roleAccess struct {
	views []View
	// sidebar is false for the dedicated super admin shell.
	sidebar bool
}

var accessTable = map[models.Role]roleAccess{
	models.RoleFounder: {
		views:   []View{ViewSprintHub, ViewDevMarket, ViewLaunchpad, ViewNetworking, ViewMessages, ViewUserDashboard},
		sidebar: true,
	},
	models.RoleDeveloper: {
		views:   []View{ViewDevMarket, ViewLaunchpad, ViewNetworking, ViewMessages, ViewUserDashboard},
		sidebar: true,
	},
	models.RoleLead: {
		views:   []View{ViewAdminDashboard, ViewSprintHub, ViewDevMarket, ViewLaunchpad, ViewMessages},
		sidebar: true,
	},
	models.RoleSuperAdmin: {
		views: []View{ViewAdminDashboard},
	},
}

// Allowed reports whether role may open view.
func Allowed(role models.Role, view View) bool {
	for _, v := range accessTable[role].views {
		if v == view {
			return true
		}
	}
	return false
}

// Landing is the view a new session of role starts on.
func Landing(role models.Role) View {
	views := accessTable[role].views
	if len(views) == 0 {
		return ""
	}
	return views[0]
}

// Navigation lists the sidebar entries for role. The super admin shell has none.
func Navigation(role models.Role) []View {
	a := accessTable[role]
	if !a.sidebar {
		return nil
	}
	return append([]View(nil), a.views...)
}

// ViewLabel is the display name of view for role.
func ViewLabel(role models.Role, view View) string {
	switch view {
	case ViewSprintHub:
		return "Sprint Hub"
	case ViewDevMarket:
		if role == models.RoleDeveloper {
			return "My Assignments"
		}
		return "Dev Market"
	case ViewLaunchpad:
		return "Launchpad"
	case ViewNetworking:
		return "Team"
	case ViewMessages:
		return "Messages"
	case ViewUserDashboard, ViewAdminDashboard:
		return "Dashboard"
	}
	return string(view)
}

// FeedKind maps a feed view to the post kind it lists.
func FeedKind(view View) (models.PostKind, bool) {
	switch view {
	case ViewSprintHub:
		return models.KindSprintUpdate, true
	case ViewDevMarket:
		return models.KindOpenRole, true
	case ViewLaunchpad:
		return models.KindDelivery, true
	}
	return "", false
}

// ComposeKind picks the kind of a post created from view. Ideas can only be
// submitted from the Sprint Hub.
func ComposeKind(view View, isIdea bool) (models.PostKind, error) {
	kind, ok := FeedKind(view)
	if !ok {
		return "", fmt.Errorf("%w: posts cannot be created from %s", store.ErrInvalidInput, view)
	}
	if isIdea {
		if view != ViewSprintHub {
			return "", fmt.Errorf("%w: ideas are submitted from the sprint hub", store.ErrInvalidInput)
		}
		return models.KindIdea, nil
	}
	return kind, nil
}
