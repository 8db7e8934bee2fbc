package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// ClassifiedEmail is one classification pipeline outcome.
type ClassifiedEmail struct {
	EmailID        int64
	Classification model.Classification
}

// ClassifyService runs the email classification pipeline: oracle call,
// verdict normalization, classification persistence, and for registrations,
// service resolution and linking.
type ClassifyService struct {
	oracle   driven.ClassifierOracle
	emails   driven.EmailStore
	resolver *Resolver
	linker   *Linker
	logger   *slog.Logger
}

// NewClassifyService creates a ClassifyService with the required dependencies.
func NewClassifyService(
	oracle driven.ClassifierOracle,
	emails driven.EmailStore,
	resolver *Resolver,
	linker *Linker,
	logger *slog.Logger,
) *ClassifyService {
	return &ClassifyService{
		oracle:   oracle,
		emails:   emails,
		resolver: resolver,
		linker:   linker,
		logger:   logger,
	}
}

// Classify classifies a batch of email summaries. An unreachable oracle or an
// unparseable payload yields an empty result set, logged but not surfaced:
// the caller sees a batch with nothing classified, not a failure. A verdict
// is reported even when its email is not stored; persistence and linking
// then simply do not apply. Failures on one email never affect the others.
func (s *ClassifyService) Classify(ctx context.Context, summaries []driven.EmailSummary) ([]ClassifiedEmail, error) {
	results := []ClassifiedEmail{}
	if len(summaries) == 0 {
		return results, nil
	}

	raw, err := s.oracle.ClassifyEmails(ctx, summaries)
	if err != nil {
		s.logger.Error("classifier oracle call failed", "batch_size", len(summaries), "error", err)
		return results, nil
	}

	verdicts, err := NormalizeClassification(raw)
	if err != nil {
		s.logger.Error("classifier payload unparseable", "error", err)
		return results, nil
	}

	for _, verdict := range verdicts {
		classification := model.ClassificationOther
		if verdict.Registration {
			classification = model.ClassificationRegister
		}
		results = append(results, ClassifiedEmail{
			EmailID:        verdict.EmailID,
			Classification: classification,
		})

		email, err := s.emails.GetByID(ctx, verdict.EmailID)
		if err != nil {
			s.logger.Error("load classified email", "email_id", verdict.EmailID, "error", err)
			continue
		}
		if email == nil {
			s.logger.Warn("verdict for unknown email", "email_id", verdict.EmailID)
			continue
		}

		if err := s.emails.UpdateClassification(ctx, email.ID, classification); err != nil {
			s.logger.Error("persist classification", "email_id", email.ID, "error", err)
			continue
		}

		if classification == model.ClassificationRegister {
			if err := s.linkRegistration(ctx, *email); err != nil {
				s.logger.Error("link registration", "email_id", email.ID, "sender", email.Sender, "error", err)
			}
		}
	}

	return results, nil
}

// linkRegistration resolves the sender's service and links the email's user
// to it. A sender without an extractable domain is skipped silently; the
// classification itself already stuck.
func (s *ClassifyService) linkRegistration(ctx context.Context, email model.Email) error {
	svc, err := s.resolver.Resolve(ctx, email.Sender)
	if errors.Is(err, ErrInvalidSender) {
		s.logger.Debug("registration sender has no domain", "email_id", email.ID, "sender", email.Sender)
		return nil
	}
	if err != nil {
		return err
	}

	return s.linker.EnsureLink(ctx, email.UserID, svc.ID, email)
}
