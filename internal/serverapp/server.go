package serverapp

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/batch"
	"github.com/DominicTanzillo/blessedmind/internal/config"
	"github.com/DominicTanzillo/blessedmind/internal/events"
	"github.com/DominicTanzillo/blessedmind/internal/grind"
	"github.com/DominicTanzillo/blessedmind/internal/httpmw"
	"github.com/DominicTanzillo/blessedmind/internal/refresh"
	"github.com/DominicTanzillo/blessedmind/internal/server"
	"github.com/DominicTanzillo/blessedmind/internal/task"
	"github.com/DominicTanzillo/blessedmind/internal/telemetry"
)

type Options struct {
	Config  *config.Config
	DataDir string
	Logger  *log.Logger
}

// Handler is the assembled server plus the pieces the caller manages
// itself (the refresh scheduler in particular).
type Handler struct {
	HTTP    http.Handler
	Refresh *refresh.Service
}

func New(opts Options) (*Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if strings.TrimSpace(opts.DataDir) == "" {
		opts.DataDir = opts.Config.Server.DataDir
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	bus := events.NewBus()

	taskRepo, err := task.NewFileRepo(opts.DataDir)
	if err != nil {
		return nil, err
	}
	taskRepo.SetBus(bus)

	grindRepo, err := grind.NewFileRepo(opts.DataDir)
	if err != nil {
		return nil, err
	}
	grindRepo.SetBus(bus)

	batchRepo, err := batch.NewFileRepo(opts.DataDir)
	if err != nil {
		return nil, err
	}
	batchRepo.SetBus(bus)

	// The snapshot mirrors every store write for the lifetime of the
	// server; its subscription is never cancelled.
	snapshot := events.NewSnapshot()
	snapCh, _ := bus.Subscribe(256)
	go snapshot.Follow(snapCh)

	tel := telemetry.NewMemoryRepository()

	grindService := grind.NewService(grindRepo, grind.Limits{
		MaxTotal:  opts.Config.Grinds.MaxTotal,
		MaxActive: opts.Config.Grinds.MaxActive,
	}, opts.Logger)
	grindService.SetTelemetry(tel)

	batchManager := batch.NewManager(batchRepo, taskRepo, grindRepo, opts.Config.Focus.BatchSize, opts.Logger)
	batchManager.SetTelemetry(tel)

	app := &server.App{
		TaskRepo:     taskRepo,
		GrindService: grindService,
		BatchManager: batchManager,
		Bus:          bus,
		Snapshot:     snapshot,
		Telemetry:    tel,
		BootNow:      time.Now(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true,"service":"blessedmind","time":"` +
			time.Now().UTC().Format(time.RFC3339) + `"}`))
	})

	rr := &server.RouteRegistry{}
	server.RegisterAPIRoutes(mux, rr, app)

	var refreshSvc *refresh.Service
	if opts.Config.Refresh.Enabled {
		refreshSvc = refresh.NewService(opts.Config.Refresh.Schedule, func() {
			now := time.Now()
			grindService.Load(now)
			if err := batchManager.Ensure(now); err != nil {
				opts.Logger.Printf("refresh ensure batch: %v", err)
			}
		}, opts.Logger)
	}

	handler := httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRecover(opts.Logger),
	)

	return &Handler{HTTP: handler, Refresh: refreshSvc}, nil
}
