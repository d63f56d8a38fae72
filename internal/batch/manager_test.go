package batch

import (
	"sync"
	"testing"
	"time"

	"github.com/DominicTanzillo/blessedmind/internal/grind"
	"github.com/DominicTanzillo/blessedmind/internal/model"
	"github.com/DominicTanzillo/blessedmind/internal/task"
)

func newFixture() (*Manager, *MemoryRepo, task.Repo, grind.Repo) {
	batches := NewMemoryRepo()
	tasks := task.NewMemoryRepo()
	grinds := grind.NewMemoryRepo()
	m := NewManager(batches, tasks, grinds, 3, nil)
	return m, batches, tasks, grinds
}

func TestEffectiveSize_GrindsConsumeSlotsFirst(t *testing.T) {
	m, _, _, grinds := newFixture()
	now := time.Now()

	if got := m.EffectiveSize(now); got != 3 {
		t.Fatalf("expected full size with no grinds, got %d", got)
	}

	if _, err := grinds.Create(grind.New("run", "", nil, 0)); err != nil {
		t.Fatalf("create grind: %v", err)
	}
	if _, err := grinds.Create(grind.New("read", "", nil, 0)); err != nil {
		t.Fatalf("create grind: %v", err)
	}
	if got := m.EffectiveSize(now); got != 1 {
		t.Fatalf("expected 1 task slot, got %d", got)
	}

	// A grind disabled today frees its slot back up.
	offToday := []int{int(now.Weekday())}
	if _, err := grinds.Create(grind.New("swim", "", offToday, 0)); err != nil {
		t.Fatalf("create grind: %v", err)
	}
	if got := m.EffectiveSize(now); got != 1 {
		t.Fatalf("disabled-today grind must not take a slot, got %d", got)
	}
}

func TestEffectiveSize_ClampsAtZero(t *testing.T) {
	m, _, _, grinds := newFixture()
	now := time.Now()

	for _, title := range []string{"a", "b", "c", "d"} {
		if _, err := grinds.Create(grind.New(title, "", nil, 0)); err != nil {
			t.Fatalf("create grind %s: %v", title, err)
		}
	}
	if got := m.EffectiveSize(now); got != 0 {
		t.Fatalf("expected 0 slots, got %d", got)
	}
}

func TestRegenerate_PicksTopRankedTasks(t *testing.T) {
	m, batches, tasks, _ := newFixture()
	now := time.Now()

	overdue := model.DateOf(now.AddDate(0, 0, -3))
	urgent := task.New("pay rent", "")
	urgent.DueDate = &overdue
	urgent.Priority = model.PriorityUrgent
	top, err := tasks.Create(urgent)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := tasks.Create(task.New("someday", "no rush")); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := m.Regenerate(now); err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	cur, ok, err := batches.Latest()
	if err != nil || !ok {
		t.Fatalf("expected a batch, ok=%v err=%v", ok, err)
	}
	if len(cur.TaskIDs) != 2 {
		t.Fatalf("expected both tasks batched, got %d", len(cur.TaskIDs))
	}
	if cur.TaskIDs[0] != string(top.ID) {
		t.Fatalf("expected overdue urgent task first, got %s", cur.TaskIDs[0])
	}
}

func TestRegenerate_ReplacesExistingBatch(t *testing.T) {
	m, batches, tasks, _ := newFixture()
	now := time.Now()

	if _, err := tasks.Create(task.New("first", "")); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := m.Regenerate(now); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	first, _, err := batches.Latest()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}

	if _, err := tasks.Create(task.New("second", "")); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := m.Regenerate(now); err != nil {
		t.Fatalf("second regenerate: %v", err)
	}

	cur, ok, err := batches.Latest()
	if err != nil || !ok {
		t.Fatalf("expected a batch, ok=%v err=%v", ok, err)
	}
	if cur.ID == first.ID {
		t.Fatalf("expected the old batch replaced")
	}
	if len(cur.TaskIDs) != 2 {
		t.Fatalf("expected 2 tasks in new batch, got %d", len(cur.TaskIDs))
	}
}

func TestRegenerate_NoEligibleTasksDeletesBatch(t *testing.T) {
	m, batches, tasks, _ := newFixture()
	now := time.Now()

	created, err := tasks.Create(task.New("only", ""))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := m.Regenerate(now); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if _, ok, _ := batches.Latest(); !ok {
		t.Fatalf("expected an initial batch")
	}

	done := true
	if _, err := tasks.Update(created.ID, task.Patch{Completed: &done}); err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if err := m.Regenerate(now); err != nil {
		t.Fatalf("regenerate after completion: %v", err)
	}

	if _, ok, _ := batches.Latest(); ok {
		t.Fatalf("expected the batch deleted when nothing is eligible")
	}
}

func TestEnsure_AutoInitializesOnce(t *testing.T) {
	m, batches, tasks, _ := newFixture()
	now := time.Now()

	// nothing eligible: no batch appears
	if err := m.Ensure(now); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, ok, _ := batches.Latest(); ok {
		t.Fatalf("expected no batch without eligible tasks")
	}

	if _, err := tasks.Create(task.New("start here", "")); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := m.Ensure(now); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	first, ok, _ := batches.Latest()
	if !ok {
		t.Fatalf("expected a batch after ensure")
	}

	// a batch exists: ensure must not churn it
	if _, err := tasks.Create(task.New("later", "")); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := m.Ensure(now); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	cur, _, _ := batches.Latest()
	if cur.ID != first.ID {
		t.Fatalf("ensure must leave an existing batch alone")
	}
}

// gatedRepo counts Replace calls and holds each one until released so a
// regeneration can be kept in flight from the test.
type gatedRepo struct {
	*MemoryRepo
	mu       sync.Mutex
	replaces int
	entered  chan struct{}
	release  chan struct{}
}

func (r *gatedRepo) Replace(old model.BatchID, next model.ActiveBatch) (model.ActiveBatch, error) {
	r.mu.Lock()
	r.replaces++
	r.mu.Unlock()

	r.entered <- struct{}{}
	<-r.release
	return r.MemoryRepo.Replace(old, next)
}

func (r *gatedRepo) replaceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replaces
}

func TestRegenerate_ConcurrentCallsCollapseToOneRun(t *testing.T) {
	repo := &gatedRepo{
		MemoryRepo: NewMemoryRepo(),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	tasks := task.NewMemoryRepo()
	grinds := grind.NewMemoryRepo()
	m := NewManager(repo, tasks, grinds, 3, nil)
	now := time.Now()

	if _, err := tasks.Create(task.New("only", "")); err != nil {
		t.Fatalf("create task: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- m.Regenerate(now) }()
	<-repo.entered // first run is now parked inside Replace

	// Every call while one is in flight must return without running.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Regenerate(now); err != nil {
				t.Errorf("concurrent regenerate: %v", err)
			}
		}()
	}
	wg.Wait()

	close(repo.release)
	if err := <-done; err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	if got := repo.replaceCount(); got != 1 {
		t.Fatalf("expected exactly one effective run, got %d", got)
	}
	if _, ok, _ := repo.Latest(); !ok {
		t.Fatalf("expected the surviving run to have produced a batch")
	}
}

func TestView_ExcludesWaitingAndDeletedTasks(t *testing.T) {
	m, _, tasks, _ := newFixture()
	now := time.Now()

	a, err := tasks.Create(task.New("keep", ""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := tasks.Create(task.New("goes waiting", ""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	c, err := tasks.Create(task.New("gets deleted", ""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := m.Regenerate(now); err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	waiting := true
	if _, err := tasks.Update(b.ID, task.Patch{Waiting: &waiting}); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if err := tasks.Delete(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	done := true
	if _, err := tasks.Update(a.ID, task.Patch{Completed: &done}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	v, err := m.View()
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if !v.HasBatch {
		t.Fatalf("expected a batch")
	}
	if len(v.Tasks) != 1 || v.Tasks[0].ID != a.ID {
		t.Fatalf("expected only the kept task, got %d", len(v.Tasks))
	}
	if v.CompletedInBatch != 1 || !v.AllCompleted {
		t.Fatalf("expected batch counted complete, got %+v", v)
	}
}
