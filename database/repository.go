package database

// Repository provides data access for cloud connections and their synced
// file records
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}
