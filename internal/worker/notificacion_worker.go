package worker

import (
	"github.com/feermza/sistema-justificaciones/internal/service"
)

// StartNotificacionWorker registers the notification event handlers.
func StartNotificacionWorker(notificaciones *service.NotificacionService) {
	if notificaciones == nil {
		return
	}
	notificaciones.RegisterHandlers()
}
