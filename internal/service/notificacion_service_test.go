package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/feermza/sistema-justificaciones/internal/domain"
	"github.com/feermza/sistema-justificaciones/internal/events"
	"github.com/feermza/sistema-justificaciones/internal/mail"
)

type capturaMails struct {
	mu       sync.Mutex
	enviados []mail.Mensaje
}

func (c *capturaMails) Enviar(_ context.Context, msg mail.Mensaje) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enviados = append(c.enviados, msg)
	return nil
}

func (c *capturaMails) ultimo(t *testing.T) mail.Mensaje {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.enviados)
	return c.enviados[len(c.enviados)-1]
}

func participantes() (*domain.Solicitud, *domain.Agente, *domain.TipoLicencia, *domain.Agente) {
	emailAgente := "ana@frn.utn.edu.ar"
	emailJefe := "luis@frn.utn.edu.ar"
	agente := &domain.Agente{ID: 1, Legajo: 1001, Nombre: "Ana", Apellido: "Gómez", Email: &emailAgente}
	jefe := &domain.Agente{ID: 2, Legajo: 2001, Nombre: "Luis", Apellido: "Paz", Email: &emailJefe,
		Categoria: domain.CategoriaJefeDepto}
	tipo := &domain.TipoLicencia{ID: 1, Codigo: "ART_85", Descripcion: "Razones particulares"}
	jefeID := jefe.ID
	solicitud := &domain.Solicitud{ID: 7, AgenteID: 1, TipoID: 1, TipoCodigo: "ART_85",
		FechaInicio:        time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		Dias:               1,
		JefeSeleccionadoID: &jefeID,
		Estado:             domain.EstadoPendienteValidacion}
	return solicitud, agente, tipo, jefe
}

func newNotificacionFixture() (*capturaMails, events.Dispatcher) {
	mails := &capturaMails{}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificacionService(dispatcher, mails, nil, zap.NewNop())
	svc.RegisterHandlers()
	return mails, dispatcher
}

func TestNotificaNuevoAvisoAlJefe(t *testing.T) {
	mails, dispatcher := newNotificacionFixture()
	solicitud, agente, tipo, jefe := participantes()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventSolicitudCreada,
		Payload: events.SolicitudCreadaPayload{
			Solicitud: solicitud, Agente: agente, Tipo: tipo, Jefe: jefe,
		},
	})
	require.NoError(t, err)

	msg := mails.ultimo(t)
	assert.Equal(t, []string{"luis@frn.utn.edu.ar"}, msg.Para)
	assert.Contains(t, msg.Asunto, "NUEVO AVISO")
	assert.Contains(t, msg.Cuerpo, "Gómez")
	assert.Contains(t, msg.Cuerpo, "04/03/2024")
}

func TestNotificaAprobacionAlAgente(t *testing.T) {
	mails, dispatcher := newNotificacionFixture()
	solicitud, agente, tipo, jefe := participantes()
	solicitud.Estado = domain.EstadoImpactado

	err := dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventEstadoCambiado,
		Payload: events.EstadoCambiadoPayload{
			Solicitud: solicitud, Agente: agente, Tipo: tipo, Jefe: jefe,
			EstadoAnterior: domain.EstadoAprobado,
			EstadoNuevo:    domain.EstadoImpactado,
		},
	})
	require.NoError(t, err)

	msg := mails.ultimo(t)
	assert.Equal(t, []string{"ana@frn.utn.edu.ar"}, msg.Para)
	assert.Contains(t, msg.Asunto, "Solicitud Aprobada")
	assert.Contains(t, msg.Cuerpo, "APROBADA e IMPACTADA")
}

func TestNotificaRechazoConAtribucion(t *testing.T) {
	mails, dispatcher := newNotificacionFixture()
	solicitud, agente, tipo, jefe := participantes()
	motivo := "certificado ilegible"
	solicitud.MotivoRechazo = &motivo

	err := dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventEstadoCambiado,
		Payload: events.EstadoCambiadoPayload{
			Solicitud: solicitud, Agente: agente, Tipo: tipo, Jefe: jefe,
			EstadoAnterior: domain.EstadoAvisoConfirmado,
			EstadoNuevo:    domain.EstadoRechazadoRRHH,
		},
	})
	require.NoError(t, err)

	msg := mails.ultimo(t)
	assert.Equal(t, []string{"ana@frn.utn.edu.ar"}, msg.Para)
	assert.Contains(t, msg.Cuerpo, "certificado ilegible")
	assert.Contains(t, msg.Cuerpo, "Recursos Humanos")
}

func TestNotificaAvisoNegadoAtribuyeAlJefe(t *testing.T) {
	mails, dispatcher := newNotificacionFixture()
	solicitud, agente, tipo, jefe := participantes()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventEstadoCambiado,
		Payload: events.EstadoCambiadoPayload{
			Solicitud: solicitud, Agente: agente, Tipo: tipo, Jefe: jefe,
			EstadoAnterior: domain.EstadoPendienteValidacion,
			EstadoNuevo:    domain.EstadoAvisoNegado,
		},
	})
	require.NoError(t, err)

	msg := mails.ultimo(t)
	assert.Contains(t, msg.Cuerpo, "su supervisor (Paz)")
	assert.Contains(t, msg.Cuerpo, "Sin especificar")
}

func TestAvisoConfirmadoNoNotifica(t *testing.T) {
	mails, dispatcher := newNotificacionFixture()
	solicitud, agente, tipo, jefe := participantes()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventEstadoCambiado,
		Payload: events.EstadoCambiadoPayload{
			Solicitud: solicitud, Agente: agente, Tipo: tipo, Jefe: jefe,
			EstadoAnterior: domain.EstadoPendienteValidacion,
			EstadoNuevo:    domain.EstadoAvisoConfirmado,
		},
	})
	require.NoError(t, err)
	assert.Empty(t, mails.enviados)
}

func TestNotificaCancelacionAlJefe(t *testing.T) {
	mails, dispatcher := newNotificacionFixture()
	solicitud, agente, tipo, jefe := participantes()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventSolicitudEliminada,
		Payload: events.SolicitudEliminadaPayload{
			Solicitud: solicitud, Agente: agente, Tipo: tipo, Jefe: jefe,
		},
	})
	require.NoError(t, err)

	msg := mails.ultimo(t)
	assert.Equal(t, []string{"luis@frn.utn.edu.ar"}, msg.Para)
	assert.Contains(t, msg.Asunto, "AVISO CANCELADO")
}

func TestAgenteSinEmailNoRompe(t *testing.T) {
	mails, dispatcher := newNotificacionFixture()
	solicitud, agente, tipo, jefe := participantes()
	agente.Email = nil

	err := dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventEstadoCambiado,
		Payload: events.EstadoCambiadoPayload{
			Solicitud: solicitud, Agente: agente, Tipo: tipo, Jefe: jefe,
			EstadoAnterior: domain.EstadoAvisoConfirmado,
			EstadoNuevo:    domain.EstadoRechazadoRRHH,
		},
	})
	require.NoError(t, err)
	assert.Empty(t, mails.enviados)
}
