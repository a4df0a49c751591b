package repository

// Snapshot persists the catalog's name to id map between runs
type Snapshot interface {
	Load() (map[string]string, error)
	Save(byName map[string]string) error
}
