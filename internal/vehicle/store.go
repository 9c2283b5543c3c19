// Package vehicle persists a registry of known dump trucks so that a
// recognized license plate resolves straight to its registered capacity
// instead of relying on the model's visual class guess.
package vehicle

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/YuujiKamura/tonsuu-checker/internal/truckspec"
)

// ErrNotFound is returned when no vehicle matches a lookup.
var ErrNotFound = errors.New("vehicle not found")

// RegisteredVehicle is one known truck.
type RegisteredVehicle struct {
	ID           string
	LicensePlate string
	TruckType    string
	MaxCapacity  float64
	RegisteredAt time.Time
}

// Class derives the capacity class from the registered max capacity.
func (v RegisteredVehicle) Class() truckspec.Class {
	return truckspec.ClassFromCapacity(v.MaxCapacity)
}

// Store is a SQLite-backed vehicle registry.
type Store struct {
	db *sql.DB
}

// Open creates or opens the registry database at dbPath.
func Open(dbPath string) (*Store, error) {
	// WAL mode and a busy timeout keep concurrent CLI invocations from
	// tripping over each other
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open vehicle database: %w", err)
	}

	store := &Store{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS vehicles (
		id TEXT PRIMARY KEY,
		license_plate TEXT NOT NULL UNIQUE,
		truck_type TEXT NOT NULL,
		max_capacity REAL NOT NULL,
		registered_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create vehicles table: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add registers a vehicle, replacing any existing registration for the same
// plate, and returns the stored record.
func (s *Store) Add(licensePlate, truckType string, maxCapacity float64) (*RegisteredVehicle, error) {
	if licensePlate == "" {
		return nil, errors.New("license plate is required")
	}
	if maxCapacity <= 0 {
		return nil, fmt.Errorf("max capacity must be positive, got %.2f", maxCapacity)
	}

	v := &RegisteredVehicle{
		ID:           uuid.NewString(),
		LicensePlate: licensePlate,
		TruckType:    truckType,
		MaxCapacity:  maxCapacity,
		RegisteredAt: time.Now(),
	}

	query := `
	INSERT INTO vehicles (id, license_plate, truck_type, max_capacity, registered_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(license_plate) DO UPDATE SET
		truck_type = excluded.truck_type,
		max_capacity = excluded.max_capacity,
		registered_at = excluded.registered_at
	`
	if _, err := s.db.Exec(query, v.ID, v.LicensePlate, v.TruckType, v.MaxCapacity, v.RegisteredAt); err != nil {
		return nil, fmt.Errorf("failed to register vehicle: %w", err)
	}
	return v, nil
}

// GetByPlate returns the vehicle registered under the given plate.
func (s *Store) GetByPlate(licensePlate string) (*RegisteredVehicle, error) {
	query := `
	SELECT id, license_plate, truck_type, max_capacity, registered_at
	FROM vehicles WHERE license_plate = ?
	`
	var v RegisteredVehicle
	err := s.db.QueryRow(query, licensePlate).Scan(
		&v.ID, &v.LicensePlate, &v.TruckType, &v.MaxCapacity, &v.RegisteredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plate %q: %w", licensePlate, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicle: %w", err)
	}
	return &v, nil
}

// All returns every registered vehicle ordered by plate.
func (s *Store) All() ([]RegisteredVehicle, error) {
	query := `
	SELECT id, license_plate, truck_type, max_capacity, registered_at
	FROM vehicles ORDER BY license_plate
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []RegisteredVehicle
	for rows.Next() {
		var v RegisteredVehicle
		if err := rows.Scan(&v.ID, &v.LicensePlate, &v.TruckType, &v.MaxCapacity, &v.RegisteredAt); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Count returns the number of registered vehicles.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM vehicles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count vehicles: %w", err)
	}
	return n, nil
}

// Remove deletes the registration for a plate.
func (s *Store) Remove(licensePlate string) error {
	result, err := s.db.Exec(`DELETE FROM vehicles WHERE license_plate = ?`, licensePlate)
	if err != nil {
		return fmt.Errorf("failed to remove vehicle: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("plate %q: %w", licensePlate, ErrNotFound)
	}
	return nil
}

// Capacity is the registry answer for a recognized plate.
type Capacity struct {
	MaxCapacity float64
	Class       truckspec.Class
}

// Lookup resolves a plate to its registered capacity and class.
func (s *Store) Lookup(licensePlate string) (*Capacity, error) {
	v, err := s.GetByPlate(licensePlate)
	if err != nil {
		return nil, err
	}
	return &Capacity{MaxCapacity: v.MaxCapacity, Class: v.Class()}, nil
}
