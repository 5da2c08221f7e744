package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/clinicbooking/config"
	"github.com/Domenick1991/clinicbooking/internal/domain"
	"github.com/Domenick1991/clinicbooking/internal/kafka"
	"github.com/Domenick1991/clinicbooking/internal/registry"
	"github.com/Domenick1991/clinicbooking/internal/repository"
	"github.com/Domenick1991/clinicbooking/internal/schedule"
	"github.com/Domenick1991/clinicbooking/internal/service/booking"
	"github.com/Domenick1991/clinicbooking/internal/sms"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
)

// The worker runs the expiry sweep on an interval and turns notification
// events into (log-only) SMS confirmations. It requires the postgres
// backend: with the in-memory store it would sweep its own empty copy.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Storage.Backend != "postgres" {
		log.Fatalf("worker requires the postgres backend, got %q", cfg.Storage.Backend)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc := time.Local
	if cfg.Clinic.Timezone != "" {
		if loc, err = time.LoadLocation(cfg.Clinic.Timezone); err != nil {
			log.Fatalf("load timezone %q: %v", cfg.Clinic.Timezone, err)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	departments := make([]domain.Department, 0, len(cfg.Clinic.Departments))
	for _, d := range cfg.Clinic.Departments {
		departments = append(departments, domain.Department{Name: d.Name, DailyCapacity: d.DailyCapacity})
	}
	reg, err := registry.New(departments)
	if err != nil {
		log.Fatalf("build department registry: %v", err)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	store := repository.NewPGAppointmentRepository(pool)
	bookingService := booking.NewBookingService(
		store,
		reg,
		schedule.RealClock{Location: loc},
		nil,
		producer,
		cfg.Kafka.AppointmentsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	smsSender := sms.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.AppointmentEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return smsSender.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			removed, err := bookingService.ExpireOutdated(ctx)
			if err != nil {
				log.Printf("expiry sweep error: %v", err)
				continue
			}
			if len(removed) > 0 {
				log.Printf("expired %d appointments", len(removed))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
