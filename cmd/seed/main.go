package main

import (
	"context"
	"docbook/cmd/internal/access"
	"docbook/cmd/internal/config"
	"docbook/cmd/internal/domain/database"
	"docbook/cmd/internal/domain/database/repository"
	"docbook/cmd/internal/domain/entity"
	"docbook/cmd/internal/service"
	"docbook/cmd/internal/utils"
	"docbook/cmd/internal/utils/validators"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type seedClinic struct {
	name    string
	address string
	city    string
}

type seedDoctor struct {
	name      string
	specialty string
	slug      string
	bio       string
	clinic    string
	secretary string
	from, to  string
}

var (
	cities  = []string{"Tehran", "Shiraz", "Shoush"}
	clinics = []seedClinic{
		{name: "Mehr Clinic", address: "Valiasr St, Tehran", city: "Tehran"},
		{name: "Dr.Eyni", address: "Da'bel St, Shoush", city: "Shoush"},
		{name: "Shafa Clinic", address: "Zand St, Shiraz", city: "Shiraz"},
	}
	doctors = []seedDoctor{
		{
			name: "Dr. Ali Hosseini", specialty: "Pediatrics", slug: "dr-ali-hosseini-pediatrics",
			bio:    "Specialized in pediatric care with over 15 years of experience",
			clinic: "Mehr Clinic", secretary: "mina.sec", from: "09:00", to: "14:00",
		},
		{
			name: "Dr. Eyni", specialty: "Ophthalmologist", slug: "dr-eyni-ophthalmologist",
			bio:    "Ophthalmologist in Shoush",
			clinic: "Dr.Eyni", secretary: "sara.sec", from: "10:00", to: "16:00",
		},
		{
			name: "Dr. Sara Mohammadi", specialty: "Dermatology", slug: "dr-sara-mohammadi-dermatology",
			bio:    "Expert in clinical and cosmetic dermatology",
			clinic: "Shafa Clinic", secretary: "zahra.sec", from: "14:00", to: "20:00",
		},
	}
)

func main() {
	days := flag.Int("days", 7, "number of days of hourly slots to create, starting today")
	tokens := flag.Bool("tokens", false, "print staff tokens signed with JWT_SECRET")
	flag.Parse()

	cfg, err := config.LoadStore()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	db, err := database.Init(cfg)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}

	ctx := context.Background()
	directoryRepo := repository.NewDirectoryRepository(db)

	validate := validator.New()
	validators.Register(validate)
	schedule := service.NewScheduleService(repository.NewSlotRepository(db), directoryRepo, nil, validate, cfg.BookingLocation)

	ids, err := seedDirectory(ctx, directoryRepo)
	if err != nil {
		log.Fatal("failed to seed directory: ", err)
	}

	today := time.Now().In(cfg.BookingLocation)
	for _, doc := range doctors {
		for d := 0; d <= *days; d++ {
			resp, apierr := schedule.CreateDaySlots(ctx, ids[doc.slug], &service.DaySlotsRequest{
				Date:            today.AddDate(0, 0, d).Format(time.DateOnly),
				From:            doc.from,
				To:              doc.to,
				IntervalMinutes: 60,
			})
			if apierr != nil {
				log.Fatalf("failed to create slots for %s: %v", doc.slug, apierr)
			}
			log.Debugf("%s day %d: %d created, %d skipped", doc.slug, d, resp.Created, resp.Skipped)
		}
	}
	log.Infof("seeded %d cities, %d clinics and %d doctors", len(cities), len(clinics), len(doctors))

	if *tokens {
		printTokens()
	}
}

func seedDirectory(ctx context.Context, repo *repository.DefaultDirectoryRepository) (map[string]int, error) {
	cityIDs := make(map[string]int, len(cities))
	for _, name := range cities {
		city := &entity.City{Name: name, IsActive: true}
		if err := repo.UpsertCity(ctx, city); err != nil {
			return nil, fmt.Errorf("city %s: %w", name, err)
		}
		cityIDs[name] = city.ID
	}

	clinicIDs := make(map[string]int, len(clinics))
	for _, c := range clinics {
		clinic := &entity.Clinic{Name: c.name, Address: c.address, CityID: cityIDs[c.city]}
		if err := repo.UpsertClinic(ctx, clinic); err != nil {
			return nil, fmt.Errorf("clinic %s: %w", c.name, err)
		}
		clinicIDs[c.name] = clinic.ID
	}

	doctorIDs := make(map[string]int, len(doctors))
	for _, d := range doctors {
		bio, secretary := d.bio, d.secretary
		doctor := &entity.Doctor{
			Name:         d.name,
			Specialty:    d.specialty,
			Slug:         d.slug,
			Bio:          &bio,
			ClinicID:     clinicIDs[d.clinic],
			SecretarySub: &secretary,
		}
		if err := repo.UpsertDoctor(ctx, doctor); err != nil {
			return nil, fmt.Errorf("doctor %s: %w", d.slug, err)
		}
		doctorIDs[d.slug] = doctor.ID
	}
	return doctorIDs, nil
}

func printTokens() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Warn("JWT_SECRET is not set, skipping tokens")
		return
	}

	auth := utils.NewJWTAuthenticator(secret)
	staff := map[string]string{"admin": access.RoleAdmin}
	for _, d := range doctors {
		staff[d.secretary] = access.RoleSecretary
	}
	for sub, role := range staff {
		token, err := auth.Issue(sub, role, 24*time.Hour)
		if err != nil {
			log.Fatalf("failed to sign token for %s: %v", sub, err)
		}
		fmt.Printf("%s (%s): %s\n", sub, role, token)
	}
}
