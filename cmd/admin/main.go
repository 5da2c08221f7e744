package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Domenick1991/clinicbooking/config"
	"github.com/Domenick1991/clinicbooking/internal/domain"
	"github.com/Domenick1991/clinicbooking/internal/repository"
	"github.com/Domenick1991/clinicbooking/internal/schedule"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Administrative tool for the postgres backend: inspect bookings, add
// departments, force an expiry sweep.
func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	loc := time.Local
	if cfg.Clinic.Timezone != "" {
		if loc, err = time.LoadLocation(cfg.Clinic.Timezone); err != nil {
			log.Fatalf("load timezone %q: %v", cfg.Clinic.Timezone, err)
		}
	}
	window := schedule.CurrentWindow(time.Now().In(loc))

	appointments := repository.NewPGAppointmentRepository(pool)
	departments := repository.NewPGDepartmentRepository(pool)

	switch os.Args[1] {
	case "stats":
		stats(ctx, departments, appointments, window)
	case "list-departments":
		listDepartments(ctx, departments)
	case "add-dept":
		if len(os.Args) != 4 {
			usage()
			os.Exit(2)
		}
		addDepartment(ctx, departments, os.Args[2], os.Args[3])
	case "clean-expired":
		cleanExpired(ctx, appointments, window)
	case "lookup":
		if len(os.Args) != 3 {
			usage()
			os.Exit(2)
		}
		lookup(ctx, appointments, os.Args[2])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage: admin <command>")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  stats                      booking counts per department and date")
	fmt.Println("  list-departments           departments and their daily capacity")
	fmt.Println("  add-dept <name> <capacity> add a department")
	fmt.Println("  clean-expired              purge appointments outside the window")
	fmt.Println("  lookup <phone>             show the active appointment for a phone")
}

func stats(ctx context.Context, departments *repository.PGDepartmentRepository, appointments *repository.PGAppointmentRepository, window schedule.Window) {
	all, err := departments.List(ctx)
	if err != nil {
		log.Fatalf("list departments: %v", err)
	}

	fmt.Printf("booking window: %s - %s\n", window.Start, window.End)
	for _, dept := range all {
		total := 0
		for _, date := range window.Dates() {
			booked, err := appointments.CountBooked(ctx, dept.Name, date)
			if err != nil {
				log.Fatalf("count booked: %v", err)
			}
			total += booked
		}
		fmt.Printf("  %s: %d/%d booked\n", dept.Name, total, dept.DailyCapacity*2)
	}
}

func listDepartments(ctx context.Context, departments *repository.PGDepartmentRepository) {
	all, err := departments.List(ctx)
	if err != nil {
		log.Fatalf("list departments: %v", err)
	}
	for _, dept := range all {
		fmt.Printf("%s: %d slots per day\n", dept.Name, dept.DailyCapacity)
	}
}

func addDepartment(ctx context.Context, departments *repository.PGDepartmentRepository, name, capacityArg string) {
	capacity, err := strconv.Atoi(capacityArg)
	if err != nil {
		log.Fatalf("capacity must be an integer: %v", err)
	}
	if err := departments.Add(ctx, domain.Department{Name: name, DailyCapacity: capacity}); err != nil {
		log.Fatalf("add department: %v", err)
	}
	fmt.Printf("added %s with %d slots per day\n", name, capacity)
}

func cleanExpired(ctx context.Context, appointments *repository.PGAppointmentRepository, window schedule.Window) {
	removed, err := appointments.PurgeOutsideWindow(ctx, window.Dates())
	if err != nil {
		log.Fatalf("purge: %v", err)
	}
	fmt.Printf("removed %d expired appointments\n", len(removed))
}

func lookup(ctx context.Context, appointments *repository.PGAppointmentRepository, phone string) {
	appt, err := appointments.GetByPhone(ctx, phone)
	if err != nil {
		log.Fatalf("lookup: %v", err)
	}
	fmt.Printf("%s: %s on %s (booked %s)\n", appt.Phone, appt.Department, appt.Date, appt.CreatedAt.Format(time.RFC3339))
}
