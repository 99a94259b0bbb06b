package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/frontandrew/skylane/internal/domain"
	"github.com/frontandrew/skylane/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type laneRepository struct {
	db *pgxpool.Pool
}

func NewLaneRepository(db *pgxpool.Pool) repository.LaneRepository {
	return &laneRepository{db: db}
}

const laneColumns = `
	id, account_id, mapping_id, item_number, lane_option,
	origin_city, origin_state, origin_country,
	destination_city, destination_state, destination_country,
	origin_station, destination_station,
	pickup_time, service_level, custom_clearance, drive_to_dest,
	delivery_estimate, tat, notes, status, created_at, updated_at
`

const legColumns = `
	id, lane_id, sequence, flight_number, origin_station, destination_station,
	departure_time, arrival_time, cutoff_time, operating_days, aircraft_by_day,
	validation_messages, status
`

func (r *laneRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lane, error) {
	query := `
		SELECT ` + laneColumns + `
		FROM lanes
		WHERE id = $1
	`

	lane, err := scanLane(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLaneNotFound
		}
		return nil, err
	}

	legs, err := r.getLegs(ctx, []uuid.UUID{lane.ID})
	if err != nil {
		return nil, err
	}
	lane.Legs = legs[lane.ID]

	return lane, nil
}

func (r *laneRepository) GetByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Lane, error) {
	query := `
		SELECT ` + laneColumns + `
		FROM lanes
		WHERE account_id = $1
		ORDER BY created_at
	`
	return r.queryLanes(ctx, query, accountID)
}

func (r *laneRepository) GetByMapping(ctx context.Context, mappingID uuid.UUID) ([]*domain.Lane, error) {
	query := `
		SELECT ` + laneColumns + `
		FROM lanes
		WHERE mapping_id = $1
		ORDER BY created_at
	`
	return r.queryLanes(ctx, query, mappingID)
}

func (r *laneRepository) queryLanes(ctx context.Context, query string, arg interface{}) ([]*domain.Lane, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lanes []*domain.Lane
	var ids []uuid.UUID
	for rows.Next() {
		lane, err := scanLane(rows)
		if err != nil {
			return nil, err
		}
		lanes = append(lanes, lane)
		ids = append(ids, lane.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return lanes, nil
	}

	legsByLane, err := r.getLegs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, lane := range lanes {
		lane.Legs = legsByLane[lane.ID]
	}

	return lanes, nil
}

func (r *laneRepository) Save(ctx context.Context, lane *domain.Lane) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := saveLaneTx(ctx, tx, lane); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *laneRepository) SaveAll(ctx context.Context, lanes []*domain.Lane) error {
	if len(lanes) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, lane := range lanes {
		if err := saveLaneTx(ctx, tx, lane); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// saveLaneTx сохраняет лейн и заменяет его плечи целиком в рамках транзакции
func saveLaneTx(ctx context.Context, tx pgx.Tx, lane *domain.Lane) error {
	if lane.ID == uuid.Nil {
		lane.ID = uuid.New()
	}

	query := `
		INSERT INTO lanes (` + laneColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			mapping_id = EXCLUDED.mapping_id,
			item_number = EXCLUDED.item_number,
			lane_option = EXCLUDED.lane_option,
			origin_city = EXCLUDED.origin_city,
			origin_state = EXCLUDED.origin_state,
			origin_country = EXCLUDED.origin_country,
			destination_city = EXCLUDED.destination_city,
			destination_state = EXCLUDED.destination_state,
			destination_country = EXCLUDED.destination_country,
			origin_station = EXCLUDED.origin_station,
			destination_station = EXCLUDED.destination_station,
			pickup_time = EXCLUDED.pickup_time,
			service_level = EXCLUDED.service_level,
			custom_clearance = EXCLUDED.custom_clearance,
			drive_to_dest = EXCLUDED.drive_to_dest,
			delivery_estimate = EXCLUDED.delivery_estimate,
			tat = EXCLUDED.tat,
			notes = EXCLUDED.notes,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	_, err := tx.Exec(ctx, query,
		lane.ID,
		lane.AccountID,
		nullableUUID(lane.MappingID),
		lane.ItemNumber,
		lane.LaneOption,
		lane.OriginCity,
		lane.OriginState,
		lane.OriginCountry,
		lane.DestinationCity,
		lane.DestinationState,
		lane.DestinationCountry,
		lane.OriginStation,
		lane.DestinationStation,
		lane.PickupTime,
		string(lane.ServiceLevel),
		lane.CustomClearance,
		lane.DriveToDest,
		lane.DeliveryEstimate,
		lane.TAT,
		lane.Notes,
		string(lane.Status),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert lane: %w", err)
	}

	// Запись всегда заменяет список плеч целиком
	if _, err := tx.Exec(ctx, `DELETE FROM legs WHERE lane_id = $1`, lane.ID); err != nil {
		return fmt.Errorf("failed to delete legs: %w", err)
	}

	insertLeg := `
		INSERT INTO legs (` + legColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	for _, leg := range lane.Legs {
		// Временные клиентские ID заменяются постоянными при сохранении
		leg.ID = uuid.New()
		leg.LaneID = lane.ID

		aircraft, err := marshalAircraftByDay(leg.AircraftByDay)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, insertLeg,
			leg.ID,
			leg.LaneID,
			leg.Sequence,
			leg.FlightNumber,
			leg.OriginStation,
			leg.DestinationStation,
			leg.DepartureTime,
			leg.ArrivalTime,
			leg.CutoffTime,
			leg.OperatingDays,
			aircraft,
			leg.ValidationMessages,
			string(leg.Status),
		)
		if err != nil {
			return fmt.Errorf("failed to insert leg: %w", err)
		}
	}

	return nil
}

func (r *laneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM legs WHERE lane_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `DELETE FROM lanes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrLaneNotFound
	}

	return tx.Commit(ctx)
}

func (r *laneRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM lanes WHERE account_id = $1`, accountID).Scan(&count)
	return count, err
}

func (r *laneRepository) CountByMapping(ctx context.Context, mappingID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM lanes WHERE mapping_id = $1`, mappingID).Scan(&count)
	return count, err
}

// getLegs загружает плечи для набора лейнов одной выборкой
func (r *laneRepository) getLegs(ctx context.Context, laneIDs []uuid.UUID) (map[uuid.UUID][]*domain.Leg, error) {
	query := `
		SELECT ` + legColumns + `
		FROM legs
		WHERE lane_id = ANY($1)
		ORDER BY lane_id, sequence
	`

	rows, err := r.db.Query(ctx, query, laneIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	legsByLane := make(map[uuid.UUID][]*domain.Leg)
	for rows.Next() {
		leg := &domain.Leg{}
		var aircraft []byte
		var status string

		err := rows.Scan(
			&leg.ID,
			&leg.LaneID,
			&leg.Sequence,
			&leg.FlightNumber,
			&leg.OriginStation,
			&leg.DestinationStation,
			&leg.DepartureTime,
			&leg.ArrivalTime,
			&leg.CutoffTime,
			&leg.OperatingDays,
			&aircraft,
			&leg.ValidationMessages,
			&status,
		)
		if err != nil {
			return nil, err
		}

		leg.Status = domain.ValidationStatus(status)
		if len(aircraft) > 0 {
			if err := json.Unmarshal(aircraft, &leg.AircraftByDay); err != nil {
				return nil, fmt.Errorf("failed to unmarshal aircraft_by_day: %w", err)
			}
		}

		legsByLane[leg.LaneID] = append(legsByLane[leg.LaneID], leg)
	}

	return legsByLane, rows.Err()
}

// scanLane читает лейн из строки выборки
// Признак несохраненных изменений и поколение принадлежат ядру,
// persistence boundary их не хранит: загруженный лейн всегда чистый
func scanLane(row pgx.Row) (*domain.Lane, error) {
	lane := &domain.Lane{}
	var mappingID *uuid.UUID
	var serviceLevel, status string
	var createdAt time.Time

	err := row.Scan(
		&lane.ID,
		&lane.AccountID,
		&mappingID,
		&lane.ItemNumber,
		&lane.LaneOption,
		&lane.OriginCity,
		&lane.OriginState,
		&lane.OriginCountry,
		&lane.DestinationCity,
		&lane.DestinationState,
		&lane.DestinationCountry,
		&lane.OriginStation,
		&lane.DestinationStation,
		&lane.PickupTime,
		&serviceLevel,
		&lane.CustomClearance,
		&lane.DriveToDest,
		&lane.DeliveryEstimate,
		&lane.TAT,
		&lane.Notes,
		&status,
		&createdAt,
		&lane.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if mappingID != nil {
		lane.MappingID = *mappingID
	}
	lane.ServiceLevel = domain.ServiceLevel(serviceLevel)
	lane.Status = domain.ValidationStatus(status)

	return lane, nil
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func marshalAircraftByDay(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal aircraft_by_day: %w", err)
	}
	return data, nil
}
