package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/batch"
	"github.com/DominicTanzillo/blessedmind/internal/events"
	"github.com/DominicTanzillo/blessedmind/internal/grind"
	"github.com/DominicTanzillo/blessedmind/internal/model"
	"github.com/DominicTanzillo/blessedmind/internal/server"
	"github.com/DominicTanzillo/blessedmind/internal/task"
	"github.com/DominicTanzillo/blessedmind/internal/telemetry"
)

const PORT = "8347"

// Dev entrypoint: in-memory repos and a seeded day so the API has
// something to show. The persistent server lives in cmd/server.
func main() {
	mux := http.NewServeMux()
	rr := &server.RouteRegistry{}

	app := SeedApp()
	server.RegisterAPIRoutes(mux, rr, app)

	addr := ":" + PORT
	fmt.Printf("blessedmind listening on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func SeedApp() *server.App {
	bus := events.NewBus()

	taskRepo := task.NewMemoryRepo()
	taskRepo.SetBus(bus)
	grindRepo := grind.NewMemoryRepo()
	grindRepo.SetBus(bus)
	batchRepo := batch.NewMemoryRepo()
	batchRepo.SetBus(bus)

	snapshot := events.NewSnapshot()
	snapCh, _ := bus.Subscribe(256)
	go snapshot.Follow(snapCh)

	tel := telemetry.NewMemoryRepository()

	grindService := grind.NewService(grindRepo, grind.Limits{}, log.Default())
	grindService.SetTelemetry(tel)

	batchManager := batch.NewManager(batchRepo, taskRepo, grindRepo, batch.DefaultBatchSize, log.Default())
	batchManager.SetTelemetry(tel)

	now := time.Now()
	today := model.DateOf(now)
	tomorrow := model.DateOf(now.AddDate(0, 0, 1))

	urgent := task.New("File quarterly taxes", "Forms are in the drawer")
	urgent.Priority = model.PriorityUrgent
	urgent.DueDate = &today
	_, _ = taskRepo.Create(urgent)

	soon := task.New("Call the plumber", "Kitchen sink drips")
	soon.DueDate = &tomorrow
	_, _ = taskRepo.Create(soon)

	someday := task.New("Reorganize the garage", "")
	someday.Priority = model.PriorityLow
	_, _ = taskRepo.Create(someday)

	stepped := task.New("Plan the trip", "")
	stepped.Steps = []model.Step{
		task.NewStep("Pick dates"),
		task.NewStep("Book flights"),
		task.NewStep("Reserve hotel"),
	}
	_, _ = taskRepo.Create(stepped)

	run := grind.New("Morning run", "Around the park", []int{0, 6}, 1)
	if _, err := grindService.Create(run, now); err != nil {
		log.Printf("seed grind: %v", err)
	}

	if err := batchManager.Ensure(now); err != nil {
		log.Printf("seed batch: %v", err)
	}

	return &server.App{
		TaskRepo:     taskRepo,
		GrindService: grindService,
		BatchManager: batchManager,
		Bus:          bus,
		Snapshot:     snapshot,
		Telemetry:    tel,
		BootNow:      now,
	}
}
