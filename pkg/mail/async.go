package mail

import (
	"context"
	"log/slog"
	"time"
)

// Async sends each message on its own goroutine with a bounded context, so
// mail-server latency never holds up an HTTP response. Failures are logged;
// the triggering operation has already committed.
type Async struct {
	Mailer  Mailer
	Logger  *slog.Logger
	Timeout time.Duration
}

func (a *Async) timeout() time.Duration {
	if a.Timeout > 0 {
		return a.Timeout
	}
	return 15 * time.Second
}

func (a *Async) dispatch(kind, to string, send func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout())
		defer cancel()
		if err := send(ctx); err != nil {
			a.Logger.Error("mail_dispatch_failed", "kind", kind, "to", to, "error", err)
			return
		}
		a.Logger.Info("mail_dispatched", "kind", kind, "to", to)
	}()
}

func (a *Async) DispatchResetLink(to, name, link string) {
	a.dispatch("password_reset", to, func(ctx context.Context) error {
		return a.Mailer.SendPasswordResetEmail(ctx, to, name, link)
	})
}

func (a *Async) DispatchResetConfirmation(to, name string) {
	a.dispatch("password_reset_confirmation", to, func(ctx context.Context) error {
		return a.Mailer.SendPasswordResetConfirmation(ctx, to, name)
	})
}

func (a *Async) DispatchCredentials(to, name, email, password string) {
	a.dispatch("credentials", to, func(ctx context.Context) error {
		return a.Mailer.SendCredentialsEmail(ctx, to, name, email, password)
	})
}
