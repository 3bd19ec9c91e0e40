package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/tatamedev/tatame-crm/internal/entity"
)

// ConfirmationSender envia a confirmação de aula experimental ao lead
// (implementado pelo cliente de WhatsApp).
type ConfirmationSender interface {
	SendClassConfirmation(ctx context.Context, payload LeadEventPayload) error
}

// EnrollmentMailer avisa a academia por email quando um lead se matricula.
type EnrollmentMailer interface {
	SendEnrollmentNotice(to, academyName, leadName string) error
}

// AcademyFinder resolve a academia do evento (para saber o email destino).
type AcademyFinder interface {
	FindByID(ctx context.Context, id string) (*entity.Academy, error)
}

type Worker struct {
	Channel   *amqp.Channel
	WhatsApp  ConfirmationSender
	Mailer    EnrollmentMailer
	Academies AcademyFinder
}

func NewWorker(ch *amqp.Channel, whatsApp ConfirmationSender, mailer EnrollmentMailer, academies AcademyFinder) *Worker {
	return &Worker{
		Channel:   ch,
		WhatsApp:  whatsApp,
		Mailer:    mailer,
		Academies: academies,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual é mais seguro)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao registrar consumidor RabbitMQ")
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload LeadEventPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Error().Err(err).Msg("worker: JSON inválido, descartando")
				// Mensagem malformada nunca vai processar; rejeita sem requeue.
				d.Nack(false, false)
				continue
			}

			log.Info().Str("kind", payload.Kind).Str("lead", payload.Name).Msg("worker: processando evento")

			if err := w.processMessage(context.Background(), payload); err != nil {
				log.Error().Err(err).Str("kind", payload.Kind).Msg("worker: falha no processamento")
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Info().Str("queue", queueName).Msg("worker de notificações aguardando mensagens")
	<-forever
}

func (w *Worker) processMessage(ctx context.Context, payload LeadEventPayload) error {
	switch payload.Kind {
	case KindClassConfirmation:
		if w.WhatsApp == nil {
			log.Warn().Msg("worker: WhatsApp não configurado, evento ignorado")
			return nil
		}
		return w.WhatsApp.SendClassConfirmation(ctx, payload)

	case KindEnrollment:
		if w.Mailer == nil {
			log.Warn().Msg("worker: email não configurado, evento ignorado")
			return nil
		}
		academy, err := w.Academies.FindByID(ctx, payload.AcademyID)
		if err != nil {
			return fmt.Errorf("academia %s não resolvida: %w", payload.AcademyID, err)
		}
		if academy.Email == "" {
			log.Warn().Str("academy", academy.ID).Msg("worker: academia sem email cadastrado")
			return nil
		}
		return w.Mailer.SendEnrollmentNotice(academy.Email, academy.Name, payload.Name)

	default:
		return fmt.Errorf("evento desconhecido: %q", payload.Kind)
	}
}
