package worker

import (
	"github.com/spec-kit/kanban-board/internal/service"
)

// StartActivityWorker registers the activity feed handlers.
func StartActivityWorker(activity *service.ActivityService) {
	if activity == nil {
		return
	}
	activity.RegisterHandlers()
}
