package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feermza/sistema-justificaciones/internal/domain"
	"github.com/feermza/sistema-justificaciones/internal/events"
	"github.com/feermza/sistema-justificaciones/internal/mail"
	"github.com/feermza/sistema-justificaciones/internal/media"
)

// NotificacionService turns lifecycle events into emails and, for applied
// requests, the backing PDF. Everything here is best-effort: failures are
// logged and never reach the caller that triggered the state change.
type NotificacionService struct {
	dispatcher events.Dispatcher
	mailer     mail.Mailer
	documentos *media.GeneradorPDF
	logger     *zap.Logger
}

// NewNotificacionService creates the service.
func NewNotificacionService(dispatcher events.Dispatcher, mailer mail.Mailer, documentos *media.GeneradorPDF, logger *zap.Logger) *NotificacionService {
	return &NotificacionService{
		dispatcher: dispatcher,
		mailer:     mailer,
		documentos: documentos,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificacionService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSolicitudCreada, n.handleSolicitudCreada)
	n.dispatcher.Subscribe(events.EventEstadoCambiado, n.handleEstadoCambiado)
	n.dispatcher.Subscribe(events.EventSolicitudEliminada, n.handleSolicitudEliminada)
}

func (n *NotificacionService) handleSolicitudCreada(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SolicitudCreadaPayload)
	if !ok {
		return nil
	}
	jefe := payload.Jefe
	if jefe == nil || jefe.Email == nil {
		return nil
	}

	agente := payload.Agente
	asunto := fmt.Sprintf("NUEVO AVISO: %s cargó una solicitud", agente.Apellido)
	cuerpo := fmt.Sprintf(`Hola %s,

El agente %s %s (Legajo %d) ha cargado un aviso de ausencia.

Tipo: %s
Fecha: %s
Motivo: %s

Por favor, ingrese al sistema para validar si fue avisado en tiempo y forma.`,
		jefe.Nombre,
		agente.Nombre, agente.Apellido, agente.Legajo,
		payload.Tipo.Descripcion,
		payload.Solicitud.FechaInicio.Format("02/01/2006"),
		textoOpcional(payload.Solicitud.Motivo))

	n.enviar(ctx, asunto, cuerpo, *jefe.Email)
	return nil
}

func (n *NotificacionService) handleEstadoCambiado(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EstadoCambiadoPayload)
	if !ok {
		return nil
	}
	solicitud, agente, tipo := payload.Solicitud, payload.Agente, payload.Tipo

	switch payload.EstadoNuevo {
	case domain.EstadoImpactado:
		if n.documentos != nil {
			if _, err := n.documentos.GenerarRespaldo(solicitud, agente, tipo); err != nil {
				n.logger.Error("fallo la generación del pdf de respaldo",
					zap.Int64("solicitud_id", solicitud.ID), zap.Error(err))
			}
		}
		if agente.Email == nil {
			n.logger.Info("agente sin email; no se notifica la aprobación",
				zap.Int("legajo", agente.Legajo))
			return nil
		}
		asunto := fmt.Sprintf("Solicitud Aprobada: %s", tipo.Descripcion)
		cuerpo := fmt.Sprintf(`Hola %s,

Tu solicitud de justificación para el día %s ha sido APROBADA e IMPACTADA en el sistema.

Detalles:
- Tipo: %s
- Días: %d
- Fecha: %s

Saludos,
Departamento de Personal`,
			agente.Nombre,
			solicitud.FechaInicio.Format("02/01/2006"),
			tipo.Descripcion, solicitud.Dias,
			solicitud.FechaInicio.Format("02/01/2006"))
		n.enviar(ctx, asunto, cuerpo, *agente.Email)

	case domain.EstadoRechazadoRRHH, domain.EstadoAvisoNegado:
		if agente.Email == nil {
			return nil
		}
		rechazadoPor := "Recursos Humanos"
		if payload.EstadoNuevo == domain.EstadoAvisoNegado {
			nombreJefe := "N/A"
			if payload.Jefe != nil {
				nombreJefe = payload.Jefe.Apellido
			}
			rechazadoPor = fmt.Sprintf("su supervisor (%s)", nombreJefe)
		}
		asunto := fmt.Sprintf("Solicitud Rechazada: %s", tipo.Descripcion)
		cuerpo := fmt.Sprintf(`Hola %s,

Te informamos que tu solicitud de justificación para el día %s ha sido RECHAZADA.

Motivo del rechazo: %s

Detalles:
- Tipo: %s
- Fecha solicitada: %s
- Días: %d
- Rechazado por: %s

Por favor, comunícate con el Departamento de Personal para más información.`,
			agente.Nombre,
			solicitud.FechaInicio.Format("02/01/2006"),
			motivoRechazo(solicitud.MotivoRechazo),
			tipo.Descripcion,
			solicitud.FechaInicio.Format("02/01/2006"),
			solicitud.Dias,
			rechazadoPor)
		n.enviar(ctx, asunto, cuerpo, *agente.Email)

	case domain.EstadoAvisoConfirmado:
		// Intermediate state; the requester hears nothing until HR decides.
	}
	return nil
}

func (n *NotificacionService) handleSolicitudEliminada(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SolicitudEliminadaPayload)
	if !ok {
		return nil
	}
	jefe := payload.Jefe
	if jefe == nil || jefe.Email == nil {
		return nil
	}

	agente := payload.Agente
	asunto := fmt.Sprintf("AVISO CANCELADO: %s anuló su solicitud", agente.Apellido)
	cuerpo := fmt.Sprintf(`Hola %s,

El agente %s %s ha decidido CANCELAR y ELIMINAR la solicitud que había cargado previamente.

Detalle de lo eliminado:
- Fecha original: %s
- Tipo: %s

NO ES NECESARIO que ingrese al sistema para validarla. El trámite ha sido cerrado por el propio agente.

Saludos.`,
		jefe.Nombre,
		agente.Nombre, agente.Apellido,
		payload.Solicitud.FechaInicio.Format("02/01/2006"),
		payload.Tipo.Descripcion)

	n.enviar(ctx, asunto, cuerpo, *jefe.Email)
	return nil
}

func (n *NotificacionService) enviar(ctx context.Context, asunto, cuerpo, destinatario string) {
	if n.mailer == nil {
		return
	}
	msg := mail.Mensaje{Asunto: asunto, Cuerpo: cuerpo, Para: []string{destinatario}}
	if err := n.mailer.Enviar(ctx, msg); err != nil {
		n.logger.Error("fallo el envío de email",
			zap.String("asunto", asunto),
			zap.String("para", destinatario),
			zap.Error(err))
	}
}

func textoOpcional(valor *string) string {
	if valor == nil || *valor == "" {
		return "-"
	}
	return *valor
}

func motivoRechazo(valor *string) string {
	if valor == nil || *valor == "" {
		return "Sin especificar"
	}
	return *valor
}
