package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"terralegit/internal/shipment/models"
	id "terralegit/pkg/domain"
	"terralegit/pkg/platform/pgerr"
	txcontext "terralegit/pkg/platform/tx"
)

// Postgres persists shipments. A partial unique index on shipments.case_id
// allows one live shipment per case; cancelled rows are kept beside it.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, sh *models.Shipment) error {
	route, err := json.Marshal(routeOrEmpty(sh.Route))
	if err != nil {
		return fmt.Errorf("marshal route: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO shipments (id, case_id, origin_country, destination_country, status, route, welfare_plan_id,
			estimated_departure, estimated_arrival, actual_departure, actual_arrival,
			held_for_welfare, welfare_cleared_at, cancel_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, sh.ID.UUID(), caseUUID(sh.CaseID), sh.OriginCountry, sh.DestinationCountry, string(sh.Status), route, sh.WelfarePlanID,
		sh.EstimatedDeparture, sh.EstimatedArrival, sh.ActualDeparture, sh.ActualArrival,
		sh.HeldForWelfare, sh.WelfareClearedAt, sh.CancelReason, sh.CreatedAt, sh.UpdatedAt)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("insert shipment: %w", err))
	}
	return nil
}

func (s *Postgres) Save(ctx context.Context, sh *models.Shipment) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE shipments SET status = $2, actual_departure = $3, actual_arrival = $4,
			held_for_welfare = $5, welfare_cleared_at = $6, cancel_reason = $7, updated_at = $8
		WHERE id = $1
	`, sh.ID.UUID(), string(sh.Status), sh.ActualDeparture, sh.ActualArrival,
		sh.HeldForWelfare, sh.WelfareClearedAt, sh.CancelReason, sh.UpdatedAt)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("update shipment: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return pgerr.Translate(fmt.Errorf("update shipment: %w", sql.ErrNoRows))
	}
	return nil
}

const shipmentColumns = `id, case_id, origin_country, destination_country, status, route, welfare_plan_id,
	estimated_departure, estimated_arrival, actual_departure, actual_arrival,
	held_for_welfare, welfare_cleared_at, cancel_reason, created_at, updated_at`

func (s *Postgres) Find(ctx context.Context, shipmentID id.ShipmentID) (*models.Shipment, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, shipmentID.UUID())
	sh, err := scanShipment(row)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("find shipment: %w", err))
	}
	return sh, nil
}

func (s *Postgres) FindByCase(ctx context.Context, caseID id.CaseID) (*models.Shipment, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE case_id = $1
		ORDER BY status = 'cancelled', created_at DESC LIMIT 1`, caseID.UUID())
	sh, err := scanShipment(row)
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("find shipment by case: %w", err))
	}
	return sh, nil
}

func (s *Postgres) AppendCheckpoint(ctx context.Context, cp models.WelfareCheckpoint) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO welfare_checkpoints (id, shipment_id, checkpoint_type, location, condition_notes, temperature, passed, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, cp.ID.UUID(), cp.ShipmentID.UUID(), string(cp.Type), cp.Location, cp.ConditionNotes, cp.Temperature, cp.Passed, cp.RecordedAt)
	if err != nil {
		return pgerr.Translate(fmt.Errorf("insert checkpoint: %w", err))
	}
	return nil
}

func (s *Postgres) ListCheckpoints(ctx context.Context, shipmentID id.ShipmentID) ([]models.WelfareCheckpoint, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, shipment_id, checkpoint_type, location, condition_notes, temperature, passed, recorded_at
		FROM welfare_checkpoints WHERE shipment_id = $1 ORDER BY recorded_at
	`, shipmentID.UUID())
	if err != nil {
		return nil, pgerr.Translate(fmt.Errorf("list checkpoints: %w", err))
	}
	defer rows.Close()

	var out []models.WelfareCheckpoint
	for rows.Next() {
		var (
			cp                 models.WelfareCheckpoint
			rawID, rawShipment uuid.UUID
			checkpointType     string
			temperature        sql.NullFloat64
		)
		if err := rows.Scan(&rawID, &rawShipment, &checkpointType, &cp.Location, &cp.ConditionNotes,
			&temperature, &cp.Passed, &cp.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		cp.ID = id.CheckpointID(rawID)
		cp.ShipmentID = id.ShipmentID(rawShipment)
		cp.Type = models.CheckpointType(checkpointType)
		if temperature.Valid {
			cp.Temperature = &temperature.Float64
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShipment(row scanner) (*models.Shipment, error) {
	var (
		sh     models.Shipment
		rawID  uuid.UUID
		caseID uuid.NullUUID
		status string
		route  []byte
	)
	if err := row.Scan(&rawID, &caseID, &sh.OriginCountry, &sh.DestinationCountry, &status, &route, &sh.WelfarePlanID,
		&sh.EstimatedDeparture, &sh.EstimatedArrival, &sh.ActualDeparture, &sh.ActualArrival,
		&sh.HeldForWelfare, &sh.WelfareClearedAt, &sh.CancelReason, &sh.CreatedAt, &sh.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(route, &sh.Route); err != nil {
		return nil, fmt.Errorf("decode route: %w", err)
	}
	sh.ID = id.ShipmentID(rawID)
	if caseID.Valid {
		c := id.CaseID(caseID.UUID)
		sh.CaseID = &c
	}
	sh.Status = models.Status(status)
	return &sh, nil
}

func caseUUID(c *id.CaseID) uuid.NullUUID {
	if c == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: c.UUID(), Valid: true}
}

func routeOrEmpty(r []models.Waypoint) []models.Waypoint {
	if r == nil {
		return []models.Waypoint{}
	}
	return r
}
