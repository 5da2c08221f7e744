package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/clinicbooking/config"
	"github.com/Domenick1991/clinicbooking/internal/bootstrap"
	"github.com/Domenick1991/clinicbooking/internal/cache"
	"github.com/Domenick1991/clinicbooking/internal/domain"
	"github.com/Domenick1991/clinicbooking/internal/kafka"
	"github.com/Domenick1991/clinicbooking/internal/registry"
	"github.com/Domenick1991/clinicbooking/internal/repository"
	"github.com/Domenick1991/clinicbooking/internal/schedule"
	"github.com/Domenick1991/clinicbooking/internal/service/availability"
	"github.com/Domenick1991/clinicbooking/internal/service/booking"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := time.Local
	if cfg.Clinic.Timezone != "" {
		if loc, err = time.LoadLocation(cfg.Clinic.Timezone); err != nil {
			log.Fatalf("load timezone %q: %v", cfg.Clinic.Timezone, err)
		}
	}
	clock := schedule.RealClock{Location: loc}

	departments := make([]domain.Department, 0, len(cfg.Clinic.Departments))
	for _, d := range cfg.Clinic.Departments {
		departments = append(departments, domain.Department{Name: d.Name, DailyCapacity: d.DailyCapacity})
	}
	reg, err := registry.New(departments)
	if err != nil {
		log.Fatalf("build department registry: %v", err)
	}

	var store repository.AppointmentRepository
	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		if err := repository.SeedDepartments(ctx, pool, departments); err != nil {
			log.Fatalf("seed departments: %v", err)
		}
		store = repository.NewPGAppointmentRepository(pool)
	case "", "memory":
		store = repository.NewMemoryAppointmentRepository()
	default:
		log.Fatalf("unknown storage backend %q", cfg.Storage.Backend)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Clinic.AvailabilityCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingService := booking.NewBookingService(
		store,
		reg,
		clock,
		redisCache,
		producer,
		cfg.Kafka.AppointmentsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	availabilityService := availability.NewAvailabilityService(store, reg, clock, redisCache)

	if err := bootstrap.Run(ctx, cfg, bookingService, availabilityService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
