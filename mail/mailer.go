// Package mail delivers the transactional emails triggered by
// registration and connection events. Delivery is a best-effort side
// channel: callers log failures and never roll back the state change the
// email accompanies.
package mail

import "log"

type Mailer interface {
	SendVerificationCode(to, firstName, code string) error
	SendRequestSent(to, senderName, receiverName string) error
	SendRequestReceived(to, receiverName, senderName string) error
	SendRequestAccepted(to, senderName, receiverName, phoneNumber string) error
	SendRequestDeclined(to, senderName, receiverName string) error
}

// LogMailer writes every message to the process log instead of sending
// it. Used in development when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) SendVerificationCode(to, firstName, code string) error {
	log.Printf("[MAIL] (log only) verification code for %s: %s", to, code)
	return nil
}

func (LogMailer) SendRequestSent(to, senderName, receiverName string) error {
	log.Printf("[MAIL] (log only) request-sent confirmation to %s (recipient %s)", to, receiverName)
	return nil
}

func (LogMailer) SendRequestReceived(to, receiverName, senderName string) error {
	log.Printf("[MAIL] (log only) request-received notice to %s (from %s)", to, senderName)
	return nil
}

func (LogMailer) SendRequestAccepted(to, senderName, receiverName, phoneNumber string) error {
	log.Printf("[MAIL] (log only) request-accepted notice to %s (by %s)", to, receiverName)
	return nil
}

func (LogMailer) SendRequestDeclined(to, senderName, receiverName string) error {
	log.Printf("[MAIL] (log only) request-declined notice to %s (by %s)", to, receiverName)
	return nil
}
