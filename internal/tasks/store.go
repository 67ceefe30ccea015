package tasks

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
)

// StorageKey is the key the task list is persisted under.
const StorageKey = "fokus-tasks"

// KV is the key-value persistence the task list is written to.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Store owns the task list. Mutations are refused until Load has completed;
// after that they are applied in memory and the whole list is written back
// to the KV. Persistence is best
// effort: failures are logged and never returned.
type Store struct {
	mu     sync.Mutex
	kv     KV
	tasks  []Task
	nextID int64
	loaded bool
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv, nextID: 1}
}

// Load reads the persisted list. A read failure or malformed data leaves the
// store empty; either way the store is marked loaded.
func (s *Store) Load(ctx context.Context) {
	var loaded []Task
	raw, found, err := s.kv.Get(ctx, StorageKey)
	switch {
	case err != nil:
		log.Printf("fokus: read tasks: %v", err)
	case found && raw != "":
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			log.Printf("fokus: decode tasks: %v", err)
			loaded = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = s.normalize(loaded)
	s.loaded = true
}

// normalize drops untitled records, repairs durations and reassigns ids that
// collide. It also positions nextID past every id in use.
func (s *Store) normalize(in []Task) []Task {
	out := make([]Task, 0, len(in))
	var maxID int64
	for _, t := range in {
		if t.ID > maxID {
			maxID = t.ID
		}
	}

	seen := make(map[int64]bool, len(in))
	for _, t := range in {
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" {
			continue
		}
		if t.FocusDurationSeconds <= 0 {
			t.FocusDurationSeconds = DefaultFocusSeconds
		}
		if t.ID <= 0 || seen[t.ID] {
			maxID++
			t.ID = maxID
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	s.nextID = maxID + 1
	return out
}

func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// List returns a copy of the tasks in insertion order.
func (s *Store) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Get(id int64) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// Add appends a task. A blank title makes it a no-op. Like every mutation it
// is rejected until Load has run, since Load replaces the list.
func (s *Store) Add(ctx context.Context, title, days, focus string) (Task, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return Task{}, false
	}
	t := Task{
		ID:                   s.nextID,
		Title:                title,
		Days:                 strings.TrimSpace(days),
		FocusDurationSeconds: ParseDuration(focus).FocusSeconds(),
	}
	s.nextID++
	s.tasks = append(s.tasks, t)
	s.persist(ctx)
	return t, true
}

func (s *Store) Remove(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if !s.loaded || i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.persist(ctx)
	return true
}

func (s *Store) ToggleCompletion(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if !s.loaded || i < 0 {
		return false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.persist(ctx)
	return true
}

// Update replaces the editable fields of a task. A blank focus keeps the
// current duration; a blank title makes it a no-op.
func (s *Store) Update(ctx context.Context, id int64, title, days, focus string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if !s.loaded || i < 0 {
		return false
	}
	s.tasks[i].Title = title
	s.tasks[i].Days = strings.TrimSpace(days)
	if strings.TrimSpace(focus) != "" {
		s.tasks[i].FocusDurationSeconds = ParseDuration(focus).FocusSeconds()
	}
	s.persist(ctx)
	return true
}

func (s *Store) indexOf(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the full list. Callers hold s.mu, which keeps writes in
// mutation order.
func (s *Store) persist(ctx context.Context) {
	if !s.loaded {
		return
	}
	list := s.tasks
	if list == nil {
		list = []Task{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		log.Printf("fokus: encode tasks: %v", err)
		return
	}
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		log.Printf("fokus: save tasks: %v", err)
	}
}
