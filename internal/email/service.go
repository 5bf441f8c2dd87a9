package email

import (
	"fmt"
	"net/smtp"
)

// SendFunc delivers a raw message; it matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
	send SendFunc
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
		send: smtp.SendMail,
	}
}

// WithSender replaces the SMTP transport
func (s *Service) WithSender(send SendFunc) *Service {
	s.send = send
	return s
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to string, summary OrderSummary) error {
	body, err := BuildOrderConfirmationBody(summary)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}
	subject := fmt.Sprintf("Order confirmation (order %s)", shortID(summary.OrderID))
	return s.deliver(to, subject, body)
}

// SendStatusChanged tells the purchaser that an order moved to a new status
func (s *Service) SendStatusChanged(to, orderID, previous, status string) error {
	body, err := BuildStatusChangedBody(orderID, previous, status)
	if err != nil {
		return fmt.Errorf("render status update: %w", err)
	}
	subject := fmt.Sprintf("Your order %s is %s", shortID(orderID), status)
	return s.deliver(to, subject, body)
}

// SendOrderDeleted tells the purchaser that an order was withdrawn
func (s *Service) SendOrderDeleted(to, orderID string) error {
	body, err := BuildOrderDeletedBody(orderID)
	if err != nil {
		return fmt.Errorf("render deletion notice: %w", err)
	}
	subject := fmt.Sprintf("Your order %s was cancelled", shortID(orderID))
	return s.deliver(to, subject, body)
}

func shortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}

func (s *Service) deliver(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.send(addr, nil, s.from, []string{to}, []byte(msg))
}
