package repositories

import "sync"

// MemorySettingRepository is the in-memory implementation of
// SettingRepository for the local-simulation backend.
type MemorySettingRepository struct {
	settings map[string]string
	mu       sync.RWMutex
}

// NewMemorySettingRepository creates a new instance of MemorySettingRepository.
func NewMemorySettingRepository() *MemorySettingRepository {
	return &MemorySettingRepository{
		settings: make(map[string]string),
	}
}

// Get retrieves a setting value by name.
func (r *MemorySettingRepository) Get(name string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.settings[name]
	return value, ok, nil
}

// Set stores a setting value, creating or overwriting as needed.
func (r *MemorySettingRepository) Set(name, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings[name] = value
	return nil
}
