// Package mailertest provides a mailer.Sender that records instead of sending.
package mailertest

import (
	"context"
	"sync"

	"github.com/dalemusser/reelfolio/internal/app/system/mailer"
)

// Recorder captures every email passed to Send.
// Set Err to make Send fail.
type Recorder struct {
	mu   sync.Mutex
	sent []mailer.Email
	Err  error
}

// Send records email and returns r.Err.
func (r *Recorder) Send(_ context.Context, email mailer.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, email)
	return nil
}

// SetErr changes the error returned by later sends.
func (r *Recorder) SetErr(err error) {
	r.mu.Lock()
	r.Err = err
	r.mu.Unlock()
}

// Sent returns a copy of the recorded emails.
func (r *Recorder) Sent() []mailer.Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]mailer.Email, len(r.sent))
	copy(out, r.sent)
	return out
}

// Subjects returns the subjects of the recorded emails in send order.
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, e := range r.sent {
		out = append(out, e.Subject)
	}
	return out
}
