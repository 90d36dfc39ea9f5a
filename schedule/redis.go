package schedule

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKeyPrefix = "medisched:"

// RedisStore keeps each slot in a hash and per-doctor / per-specialization
// day indexes in sets. Mutations run under WATCH so a concurrent writer
// forces a retry instead of a lost update; both racing reservations cannot
// observe "available" and both win.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

type RedisStoreOption func(*RedisStore)

func WithRedisKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	s := &RedisStore{
		client:    client,
		keyPrefix: defaultRedisKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

var _ Store = (*RedisStore)(nil)
var _ Seeder = (*RedisStore)(nil)

func (s *RedisStore) slotKey(doctor, date, slotTime string) string {
	return fmt.Sprintf("%sslot:%s:%s:%s", s.keyPrefix, doctor, date, slotTime)
}

func (s *RedisStore) doctorIndexKey(doctor, date string) string {
	return fmt.Sprintf("%sdoctor:%s:%s", s.keyPrefix, doctor, date)
}

func (s *RedisStore) specIndexKey(specialization, date string) string {
	return fmt.Sprintf("%sspec:%s:%s", s.keyPrefix, specialization, date)
}

func (s *RedisStore) Seed(ctx context.Context, slots []Slot) error {
	pipe := s.client.Pipeline()
	for _, slot := range slots {
		pipe.HSet(ctx, s.slotKey(slot.Doctor, slot.Date, slot.Time), map[string]any{
			"specialization": slot.Specialization,
			"available":      boolField(slot.Available),
			"patient":        slot.PatientID,
		})
		pipe.SAdd(ctx, s.doctorIndexKey(slot.Doctor, slot.Date), slot.Time)
		pipe.SAdd(ctx, s.specIndexKey(slot.Specialization, slot.Date), slot.Doctor+"|"+slot.Time)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("seed ledger: %w", err)
	}
	return nil
}

func (s *RedisStore) QueryByDoctor(ctx context.Context, doctor, date string) ([]Slot, error) {
	times, err := s.client.SMembers(ctx, s.doctorIndexKey(doctor, date)).Result()
	if err != nil {
		return nil, fmt.Errorf("query doctor index: %w", err)
	}

	var out []Slot
	for _, slotTime := range times {
		slot, err := s.readSlot(ctx, doctor, date, slotTime)
		if err != nil {
			if errors.Is(err, ErrNoSuchSlot) {
				continue
			}
			return nil, err
		}
		if slot.Available {
			out = append(out, slot)
		}
	}
	sortSlots(out)
	return out, nil
}

func (s *RedisStore) QueryBySpecialization(ctx context.Context, specialization, date string) ([]Slot, error) {
	members, err := s.client.SMembers(ctx, s.specIndexKey(specialization, date)).Result()
	if err != nil {
		return nil, fmt.Errorf("query specialization index: %w", err)
	}

	var out []Slot
	for _, member := range members {
		doctor, slotTime, ok := strings.Cut(member, "|")
		if !ok {
			continue
		}
		slot, err := s.readSlot(ctx, doctor, date, slotTime)
		if err != nil {
			if errors.Is(err, ErrNoSuchSlot) {
				continue
			}
			return nil, err
		}
		if slot.Available {
			out = append(out, slot)
		}
	}
	sortSlots(out)
	return out, nil
}

// txMaxRetries bounds retries when EXEC aborts because a concurrent writer
// touched a watched key. Each retry re-reads the slot, so a slot that got
// taken during the race resolves to its sentinel; a slot still contended
// after the last attempt gets the conflict outcome.
const txMaxRetries = 3

func withTxRetries(conflict error, watch func() error) error {
	for i := 0; i < txMaxRetries; i++ {
		if err := watch(); !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return conflict
}

func (s *RedisStore) Reserve(ctx context.Context, doctor, date, slotTime string, patientID int) error {
	key := s.slotKey(doctor, date, slotTime)
	return withTxRetries(ErrSlotTaken, func() error {
		return s.reserveWatch(ctx, key, doctor, date, slotTime, patientID)
	})
}

func (s *RedisStore) reserveWatch(ctx context.Context, key, doctor, date, slotTime string, patientID int) error {
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		slot, err := parseSlotHash(tx.HGetAll(ctx, key), doctor, date, slotTime)
		if err != nil {
			return err
		}
		if !slot.Available {
			return ErrSlotTaken
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "available", "0", "patient", patientID)
			return nil
		})
		return err
	}, key)
}

func (s *RedisStore) Release(ctx context.Context, doctor, date, slotTime string, patientID int) error {
	key := s.slotKey(doctor, date, slotTime)
	return withTxRetries(ErrNoReservation, func() error {
		return s.releaseWatch(ctx, key, doctor, date, slotTime, patientID)
	})
}

func (s *RedisStore) releaseWatch(ctx context.Context, key, doctor, date, slotTime string, patientID int) error {
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		slot, err := parseSlotHash(tx.HGetAll(ctx, key), doctor, date, slotTime)
		if err != nil {
			if errors.Is(err, ErrNoSuchSlot) {
				return ErrNoReservation
			}
			return err
		}
		if slot.Available || slot.PatientID != patientID {
			return ErrNoReservation
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "available", "1", "patient", 0)
			return nil
		})
		return err
	}, key)
}

func (s *RedisStore) Reschedule(ctx context.Context, doctor, oldDate, oldTime, newDate, newTime string, patientID int) error {
	oldKey := s.slotKey(doctor, oldDate, oldTime)
	newKey := s.slotKey(doctor, newDate, newTime)

	return withTxRetries(ErrNewSlotUnavailable, func() error {
		return s.rescheduleWatch(ctx, oldKey, newKey, doctor, oldDate, oldTime, newDate, newTime, patientID)
	})
}

func (s *RedisStore) rescheduleWatch(ctx context.Context, oldKey, newKey, doctor, oldDate, oldTime, newDate, newTime string, patientID int) error {
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		oldSlot, err := parseSlotHash(tx.HGetAll(ctx, oldKey), doctor, oldDate, oldTime)
		if err != nil {
			if errors.Is(err, ErrNoSuchSlot) {
				return ErrNoReservation
			}
			return err
		}
		if oldSlot.Available || oldSlot.PatientID != patientID {
			return ErrNoReservation
		}

		newSlot, err := parseSlotHash(tx.HGetAll(ctx, newKey), doctor, newDate, newTime)
		if err != nil {
			if errors.Is(err, ErrNoSuchSlot) {
				return ErrNewSlotUnavailable
			}
			return err
		}
		if !newSlot.Available {
			return ErrNewSlotUnavailable
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, oldKey, "available", "1", "patient", 0)
			pipe.HSet(ctx, newKey, "available", "0", "patient", patientID)
			return nil
		})
		return err
	}, oldKey, newKey)
}

func (s *RedisStore) readSlot(ctx context.Context, doctor, date, slotTime string) (Slot, error) {
	return parseSlotHash(s.client.HGetAll(ctx, s.slotKey(doctor, date, slotTime)), doctor, date, slotTime)
}

func parseSlotHash(cmd *redis.MapStringStringCmd, doctor, date, slotTime string) (Slot, error) {
	fields, err := cmd.Result()
	if err != nil {
		return Slot{}, fmt.Errorf("read slot hash: %w", err)
	}
	if len(fields) == 0 {
		return Slot{}, ErrNoSuchSlot
	}

	patient, _ := strconv.Atoi(fields["patient"])
	return Slot{
		Doctor:         doctor,
		Specialization: fields["specialization"],
		Date:           date,
		Time:           slotTime,
		Available:      fields["available"] == "1",
		PatientID:      patient,
	}, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
