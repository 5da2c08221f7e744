package sms

import (
	"context"
	"fmt"

	"github.com/Domenick1991/clinicbooking/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.AppointmentEvent) error {
	fmt.Printf("send sms to %s about %s for %s on %s\n", event.Phone, event.Type, event.Department, event.Date)
	return nil
}
