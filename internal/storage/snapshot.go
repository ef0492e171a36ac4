package storage

import (
	"fmt"

	"github.com/opsdesk/opsdesk/pkg/models"
	"gopkg.in/yaml.v3"
)

// Keys under which the collection snapshots are stored.
const (
	KeyActiveIncidents  = "activeIncidents"
	KeyHistoryIncidents = "historyIncidents"
	KeyReminders        = "reminders"
)

// SnapshotStore serializes the incident and reminder collections as YAML
// blobs in a KeyValueStore. Loads never fail hard: an absent key yields
// the seed/empty fallback with no error, and a corrupt blob yields the
// same fallback alongside the parse error so the caller can log it.
type SnapshotStore struct {
	kv KeyValueStore
}

// NewSnapshotStore creates a SnapshotStore over the given KeyValueStore.
func NewSnapshotStore(kv KeyValueStore) *SnapshotStore {
	return &SnapshotStore{kv: kv}
}

// SeedIncidents returns the example incident installed on first run, when
// no active-incident snapshot exists yet.
func SeedIncidents() []models.Incident {
	return []models.Incident{
		{
			ID:          "1",
			Name:        "Maintenance 01",
			Date:        "2023-10-24",
			Type:        models.TypePRL,
			Subject:     "Ground-floor extinguisher inspection",
			Actions:     []string{"5.3", "OD"},
			Responsible: models.PersonB,
			Priority:    models.PriorityHigh,
			Status:      models.StatusPending,
			Comments:    "Exact date still to be confirmed with the vendor.",
		},
	}
}

// LoadActive loads the active incident collection, seeding the example
// incident when the key is absent or unreadable.
func (s *SnapshotStore) LoadActive() ([]models.Incident, error) {
	incidents, err := s.loadIncidents(KeyActiveIncidents)
	if incidents == nil {
		incidents = SeedIncidents()
	}
	return incidents, err
}

// LoadArchive loads the archived incident collection, defaulting to empty.
func (s *SnapshotStore) LoadArchive() ([]models.Incident, error) {
	incidents, err := s.loadIncidents(KeyHistoryIncidents)
	if incidents == nil {
		incidents = []models.Incident{}
	}
	return incidents, err
}

func (s *SnapshotStore) loadIncidents(key string) ([]models.Incident, error) {
	blob, found, err := s.kv.Get(key)
	if err != nil || !found {
		return nil, err
	}
	var incidents []models.Incident
	if err := yaml.Unmarshal([]byte(blob), &incidents); err != nil {
		return nil, fmt.Errorf("parsing %s snapshot: %w", key, err)
	}
	if incidents == nil {
		incidents = []models.Incident{}
	}
	return incidents, nil
}

// LoadReminders loads the reminder collection, defaulting to empty.
func (s *SnapshotStore) LoadReminders() ([]models.Reminder, error) {
	blob, found, err := s.kv.Get(KeyReminders)
	if err != nil || !found {
		return []models.Reminder{}, err
	}
	var reminders []models.Reminder
	if err := yaml.Unmarshal([]byte(blob), &reminders); err != nil {
		return []models.Reminder{}, fmt.Errorf("parsing %s snapshot: %w", KeyReminders, err)
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	return reminders, nil
}

// SaveActive writes the active incident snapshot.
func (s *SnapshotStore) SaveActive(incidents []models.Incident) error {
	return s.saveYAML(KeyActiveIncidents, incidents)
}

// SaveArchive writes the archived incident snapshot.
func (s *SnapshotStore) SaveArchive(incidents []models.Incident) error {
	return s.saveYAML(KeyHistoryIncidents, incidents)
}

// SaveReminders writes the reminder snapshot.
func (s *SnapshotStore) SaveReminders(reminders []models.Reminder) error {
	return s.saveYAML(KeyReminders, reminders)
}

func (s *SnapshotStore) saveYAML(key string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s snapshot: %w", key, err)
	}
	if err := s.kv.Set(key, string(data)); err != nil {
		return fmt.Errorf("saving %s snapshot: %w", key, err)
	}
	return nil
}
