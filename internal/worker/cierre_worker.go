package worker

// cierre_worker.go
// Processes QueueCierre: rebuilds the closing aggregate of a closed session
// from its rows, renders the PDF report and, when a report address is
// configured, queues it for email.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/domain"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/infra"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/repository"

	"github.com/rs/zerolog/log"
)

type CierreWorker struct {
	repo        repository.CajaRepository
	dispatcher  *Dispatcher
	storagePath string
	reportEmail string
}

func NewCierreWorker(repo repository.CajaRepository, dispatcher *Dispatcher, storagePath, reportEmail string) *CierreWorker {
	return &CierreWorker{repo: repo, dispatcher: dispatcher, storagePath: storagePath, reportEmail: reportEmail}
}

// RegisterReportes registers the closing report queues on p. QueueEmail only
// gets a consumer when a mailer is available; without one the cierre worker
// is built with no recipient so nothing is queued that no one would consume.
func RegisterReportes(p *Pool, repo repository.CajaRepository, dispatcher *Dispatcher, mailer ReportSender, storagePath, reportEmail string) {
	if mailer != nil {
		p.Register(QueueEmail, NewEmailWorker(mailer))
	} else if reportEmail != "" {
		log.Warn().Msg("REPORT_EMAIL set but no mailer configured, closing reports will not be mailed")
		reportEmail = ""
	}
	p.Register(QueueCierre, NewCierreWorker(repo, dispatcher, storagePath, reportEmail))
}

func (w *CierreWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload CierreJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("cierre_worker: invalid payload")
		return nil
	}

	sesion, err := w.repo.FindSesionByID(ctx, payload.SesionID)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Error().Str("sesion_id", payload.SesionID.String()).Msg("cierre_worker: session not found")
			return nil
		}
		return fmt.Errorf("cierre_worker: load session: %w", err)
	}
	if sesion.Estado != domain.SesionCerrada {
		log.Warn().Str("sesion_id", sesion.ID.String()).Msg("cierre_worker: session still open, skipping")
		return nil
	}

	trans, err := w.repo.ListTransacciones(ctx, sesion.ID)
	if err != nil {
		return fmt.Errorf("cierre_worker: list transacciones: %w", err)
	}
	gastos, err := w.repo.ListGastos(ctx, sesion.ID)
	if err != nil {
		return fmt.Errorf("cierre_worker: list gastos: %w", err)
	}

	cierre, err := domain.CalcularCierre(sesion.MontoInicial, trans, gastos)
	if err != nil {
		return fmt.Errorf("cierre_worker: %w", err)
	}

	path, err := infra.GenerateCierrePDF(infra.ReporteCierre{
		Sesion:        sesion,
		Cierre:        cierre,
		Transacciones: trans,
		Gastos:        gastos,
	}, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Str("sesion_id", sesion.ID.String()).Str("path", path).Msg("cierre_worker: report generated")

	if w.reportEmail == "" || w.dispatcher == nil {
		return nil
	}
	fecha := sesion.OpenedAt
	if sesion.ClosedAt != nil {
		fecha = *sesion.ClosedAt
	}
	if err := w.dispatcher.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: w.reportEmail,
		Subject: "Cierre de caja " + fecha.Format("02/01/2006"),
		Body:    "Adjuntamos el reporte de cierre de la sesion " + sesion.ID.String() + ".",
		PDFPath: path,
	}); err != nil {
		// the PDF exists; retrying would only render it again
		log.Error().Err(err).Msg("cierre_worker: failed to enqueue email")
	}
	return nil
}
