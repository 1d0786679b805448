package report

import (
	"context"
	"errors"
	"os"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"

	"go.uber.org/zap"
)

// ErrMailDisabled is returned by Send when no SMTP server is configured.
var ErrMailDisabled = errors.New("email delivery is not configured")

// Service exports and delivers finished interviews.
type Service struct {
	exporter *Exporter
	mailer   *Mailer
	logger   *zap.Logger
}

var _ interview.Reporter = (*Service)(nil)

// NewService builds a Service. mailer may be nil, which disables Send.
func NewService(exporter *Exporter, mailer *Mailer, log *zap.Logger) *Service {
	if exporter == nil {
		exporter = NewExporter("")
	}
	return &Service{exporter: exporter, mailer: mailer, logger: logger.WithFields(log)}
}

// Export writes the PDF report and returns its path.
func (s *Service) Export(ctx context.Context, rec *interview.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.exporter.Export(rec)
	if err != nil {
		return "", err
	}

	s.logger.Info("report exported", zap.String("path", path), zap.String(logger.FieldSession, rec.SessionID.String()))
	return path, nil
}

// Send exports the report and mails it to the recipient. If the PDF cannot
// be produced the summary is still sent without it.
func (s *Service) Send(ctx context.Context, rec *interview.Record, to string) error {
	if s.mailer == nil {
		return ErrMailDisabled
	}

	var attachment *Attachment
	path, err := s.Export(ctx, rec)
	if err != nil {
		s.logger.Warn("sending results without pdf", zap.Error(err))
	} else {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			s.logger.Warn("sending results without pdf", zap.Error(readErr))
		} else {
			attachment = &Attachment{Name: path, Data: data}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, rec, to, attachment); err != nil {
		return err
	}

	s.logger.Info("results emailed", zap.String("to", to), zap.Bool("attachment", attachment != nil))
	return nil
}

