package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPMailer sends mail over SMTP with STARTTLS. Connection and
// transfer both run under deadlines so a slow provider cannot stall a
// request handler.
type SMTPMailer struct {
	host     string
	port     string
	user     string
	password string
	from     string
	fromName string
	appName  string
}

func NewSMTPMailer(host, port, user, password, from, fromName string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		fromName: fromName,
		appName:  fromName,
	}
}

func (s *SMTPMailer) SendVerificationCode(to, firstName, code string) error {
	return s.send(to, "Your Verification Code - "+s.appName, verificationTmpl, map[string]string{
		"FirstName": firstName,
		"Code":      code,
		"AppName":   s.appName,
	})
}

func (s *SMTPMailer) SendRequestSent(to, senderName, receiverName string) error {
	return s.send(to, "Connection Request Sent - "+s.appName, requestSentTmpl, map[string]string{
		"SenderName":   senderName,
		"ReceiverName": receiverName,
	})
}

func (s *SMTPMailer) SendRequestReceived(to, receiverName, senderName string) error {
	return s.send(to, "New Connection Request - "+s.appName, requestReceivedTmpl, map[string]string{
		"ReceiverName": receiverName,
		"SenderName":   senderName,
	})
}

func (s *SMTPMailer) SendRequestAccepted(to, senderName, receiverName, phoneNumber string) error {
	return s.send(to, "Your Request Was Accepted - "+s.appName, requestAcceptedTmpl, map[string]string{
		"SenderName":   senderName,
		"ReceiverName": receiverName,
		"PhoneNumber":  phoneNumber,
	})
}

func (s *SMTPMailer) SendRequestDeclined(to, senderName, receiverName string) error {
	return s.send(to, "Connection Request Update - "+s.appName, requestDeclinedTmpl, map[string]string{
		"SenderName":   senderName,
		"ReceiverName": receiverName,
	})
}

func (s *SMTPMailer) send(to, subject string, tmpl *template.Template, data any) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	fromHeader := fmt.Sprintf("%s <%s>", s.fromName, s.from)
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		body.String(),
	}, "\r\n")

	log.Printf("[MAIL] smtp sending to=%s via=%s:%s", to, s.host, s.port)
	if err := s.sendWithTimeout(to, []byte(msg)); err != nil {
		return err
	}
	log.Printf("[MAIL] sent to=%s", to)
	return nil
}

func (s *SMTPMailer) sendWithTimeout(to string, msg []byte) error {
	addr := net.JoinHostPort(s.host, s.port)

	conn, err := net.DialTimeout("tcp", addr, 8*time.Second)
	if err != nil {
		return err
	}
	// Deadline covers the whole SMTP conversation.
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if s.user != "" {
		auth := smtp.PlainAuth("", s.user, s.password, s.host)
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(s.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
