package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type slotRow struct {
	bun.BaseModel `bun:"table:doctor_availability,alias:da"`

	ID             int64  `bun:"id,pk,autoincrement"`
	DoctorName     string `bun:"doctor_name,notnull"`
	Specialization string `bun:"specialization,notnull"`
	SlotDate       string `bun:"slot_date,notnull"`
	SlotTime       string `bun:"slot_time,notnull"`
	IsAvailable    bool   `bun:"is_available,notnull"`
	PatientID      int    `bun:"patient_id,nullzero"`
}

func (r slotRow) toSlot() Slot {
	return Slot{
		Doctor:         r.DoctorName,
		Specialization: r.Specialization,
		Date:           r.SlotDate,
		Time:           r.SlotTime,
		Available:      r.IsAvailable,
		PatientID:      r.PatientID,
	}
}

// PostgresStore backs the ledger with Postgres. Reservations are conditional
// UPDATEs (is_available = TRUE in the predicate), so slot transitions are
// compare-and-set at the database rather than read-modify-write in the app.
// Reschedule runs both transitions in one transaction.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &PostgresStore{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

var _ Store = (*PostgresStore)(nil)
var _ Seeder = (*PostgresStore)(nil)

// Init creates the ledger table when it does not exist yet.
func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*slotRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create ledger table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Seed(ctx context.Context, slots []Slot) error {
	if len(slots) == 0 {
		return nil
	}
	rows := make([]slotRow, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, slotRow{
			DoctorName:     slot.Doctor,
			Specialization: slot.Specialization,
			SlotDate:       slot.Date,
			SlotTime:       slot.Time,
			IsAvailable:    slot.Available,
			PatientID:      slot.PatientID,
		})
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("seed ledger: %w", err)
	}
	return nil
}

func (s *PostgresStore) QueryByDoctor(ctx context.Context, doctor, date string) ([]Slot, error) {
	var rows []slotRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("doctor_name = ?", doctor).
		Where("slot_date = ?", date).
		Where("is_available = TRUE").
		Order("slot_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("query by doctor: %w", err)
	}
	return rowsToSlots(rows), nil
}

func (s *PostgresStore) QueryBySpecialization(ctx context.Context, specialization, date string) ([]Slot, error) {
	var rows []slotRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("specialization = ?", specialization).
		Where("slot_date = ?", date).
		Where("is_available = TRUE").
		Order("doctor_name ASC", "slot_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("query by specialization: %w", err)
	}
	return rowsToSlots(rows), nil
}

func (s *PostgresStore) Reserve(ctx context.Context, doctor, date, slotTime string, patientID int) error {
	return s.reserveIn(ctx, s.db, doctor, date, slotTime, patientID)
}

func (s *PostgresStore) Release(ctx context.Context, doctor, date, slotTime string, patientID int) error {
	return s.releaseIn(ctx, s.db, doctor, date, slotTime, patientID)
}

// Reschedule takes the new slot first, then releases the old one; an error
// on either path rolls the transaction back, so a refused move leaves the
// old reservation intact.
func (s *PostgresStore) Reschedule(ctx context.Context, doctor, oldDate, oldTime, newDate, newTime string, patientID int) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := s.reserveIn(ctx, tx, doctor, newDate, newTime, patientID); err != nil {
			if errors.Is(err, ErrNoSuchSlot) || errors.Is(err, ErrSlotTaken) {
				return ErrNewSlotUnavailable
			}
			return err
		}
		return s.releaseIn(ctx, tx, doctor, oldDate, oldTime, patientID)
	})
}

func (s *PostgresStore) reserveIn(ctx context.Context, db bun.IDB, doctor, date, slotTime string, patientID int) error {
	res, err := db.NewUpdate().
		Model((*slotRow)(nil)).
		Set("is_available = FALSE").
		Set("patient_id = ?", patientID).
		Where("doctor_name = ?", doctor).
		Where("slot_date = ?", date).
		Where("slot_time = ?", slotTime).
		Where("is_available = TRUE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("reserve slot: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected > 0 {
		return nil
	}

	exists, err := db.NewSelect().
		Model((*slotRow)(nil)).
		Where("doctor_name = ?", doctor).
		Where("slot_date = ?", date).
		Where("slot_time = ?", slotTime).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("check slot existence: %w", err)
	}
	if !exists {
		return ErrNoSuchSlot
	}
	return ErrSlotTaken
}

func (s *PostgresStore) releaseIn(ctx context.Context, db bun.IDB, doctor, date, slotTime string, patientID int) error {
	res, err := db.NewUpdate().
		Model((*slotRow)(nil)).
		Set("is_available = TRUE").
		Set("patient_id = NULL").
		Where("doctor_name = ?", doctor).
		Where("slot_date = ?", date).
		Where("slot_time = ?", slotTime).
		Where("is_available = FALSE").
		Where("patient_id = ?", patientID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNoReservation
	}
	return nil
}

func rowsToSlots(rows []slotRow) []Slot {
	out := make([]Slot, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toSlot())
	}
	return out
}
