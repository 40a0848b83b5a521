package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dimitrije/salesdesk/internal/database"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrInvalidStage   = errors.New("invalid stage")
	ErrClientName     = errors.New("client name is required")
	ErrUnknownOwner   = errors.New("owner does not exist")
)

const clientColumns = `id, name, company, email, phone, province, brand, stage, value, owner_id, notes, created_by, created_at, updated_at`

type ClientService struct {
	db *database.DB
}

func NewClientService(db *database.DB) *ClientService {
	return &ClientService{db: db}
}

func (s *ClientService) Create(ctx context.Context, c *models.Client) (*models.Client, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, ErrClientName
	}
	if c.Stage == "" {
		c.Stage = models.StageLead
	}
	if !c.Stage.Valid() {
		return nil, ErrInvalidStage
	}

	client, err := scanClient(s.db.Pool.QueryRow(ctx, `
		INSERT INTO clients (name, company, email, phone, province, brand, stage, value, owner_id, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+clientColumns,
		c.Name, c.Company, c.Email, c.Phone, c.Province, c.Brand, string(c.Stage), c.Value,
		c.OwnerID, c.Notes, c.CreatedBy))
	if err != nil {
		return nil, classifyClientError(err, "failed to create client")
	}
	return client, nil
}

// GetByID returns the client when it is visible under scope. Invisible
// clients are reported as not found.
func (s *ClientService) GetByID(ctx context.Context, scope models.ClientScope, id uuid.UUID) (*models.Client, error) {
	client, err := scanClient(s.db.Pool.QueryRow(ctx, `
		SELECT `+clientColumns+` FROM clients WHERE id = $1
	`, id))
	if database.IsNoRows(err) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	if !scope.Allows(client) {
		return nil, ErrClientNotFound
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context, scope models.ClientScope, filter models.ClientFilter) ([]models.Client, error) {
	where, args := clientConditions(scope, filter)
	query := `SELECT ` + clientColumns + ` FROM clients` + where + ` ORDER BY updated_at DESC`

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *client)
	}
	return clients, rows.Err()
}

func (s *ClientService) Update(ctx context.Context, scope models.ClientScope, id uuid.UUID, upd models.ClientUpdate) (*models.Client, error) {
	if _, err := s.GetByID(ctx, scope, id); err != nil {
		return nil, err
	}
	if upd.Stage != nil && !upd.Stage.Valid() {
		return nil, ErrInvalidStage
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, ErrClientName
	}

	var stage *string
	if upd.Stage != nil {
		v := string(*upd.Stage)
		stage = &v
	}

	client, err := scanClient(s.db.Pool.QueryRow(ctx, `
		UPDATE clients SET
			name = COALESCE($1, name),
			company = COALESCE($2, company),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			province = COALESCE($5, province),
			brand = COALESCE($6, brand),
			stage = COALESCE($7, stage),
			value = COALESCE($8, value),
			owner_id = COALESCE($9, owner_id),
			notes = COALESCE($10, notes),
			updated_at = NOW()
		WHERE id = $11
		RETURNING `+clientColumns,
		upd.Name, upd.Company, upd.Email, upd.Phone, upd.Province, upd.Brand, stage, upd.Value,
		upd.OwnerID, upd.Notes, id))
	if database.IsNoRows(err) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, classifyClientError(err, "failed to update client")
	}
	return client, nil
}

func (s *ClientService) Delete(ctx context.Context, scope models.ClientScope, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, scope, id); err != nil {
		return err
	}
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}

// Pipeline returns one summary per stage in board order. Stages without
// clients are present with zero count and value.
func (s *ClientService) Pipeline(ctx context.Context, scope models.ClientScope) ([]models.StageSummary, error) {
	where, args := clientConditions(scope, models.ClientFilter{})
	rows, err := s.db.Pool.Query(ctx, `
		SELECT stage, COUNT(*), COALESCE(SUM(value), 0)::float8
		FROM clients`+where+`
		GROUP BY stage
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[models.Stage]models.StageSummary)
	for rows.Next() {
		var stage string
		var sum models.StageSummary
		if err := rows.Scan(&stage, &sum.Count, &sum.Value); err != nil {
			return nil, err
		}
		sum.Stage = models.Stage(stage)
		totals[sum.Stage] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pipeline := make([]models.StageSummary, 0, len(models.Stages))
	for _, stage := range models.Stages {
		sum, ok := totals[stage]
		if !ok {
			sum = models.StageSummary{Stage: stage}
		}
		pipeline = append(pipeline, sum)
	}
	return pipeline, nil
}

// OwnerSummaries reports client count, total value and won value per owning profile.
func (s *ClientService) OwnerSummaries(ctx context.Context) ([]models.OwnerSummary, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT p.id, p.name, COUNT(c.id),
		       COALESCE(SUM(c.value), 0)::float8,
		       COALESCE(SUM(c.value) FILTER (WHERE c.stage = 'won'), 0)::float8
		FROM profiles p
		LEFT JOIN clients c ON c.owner_id = p.id
		GROUP BY p.id, p.name
		ORDER BY p.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.OwnerSummary{}
	for rows.Next() {
		var sum models.OwnerSummary
		if err := rows.Scan(&sum.OwnerID, &sum.Name, &sum.Clients, &sum.Value, &sum.WonValue); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func clientConditions(scope models.ClientScope, filter models.ClientFilter) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if scope.Restricted {
		owner := arg(scope.OwnerID)
		provinces := arg(nonNil(scope.Provinces))
		brands := arg(nonNil(scope.Brands))
		conds = append(conds, fmt.Sprintf("(owner_id = %s OR province = ANY(%s) OR brand = ANY(%s))", owner, provinces, brands))
	}
	if filter.Stage != "" {
		conds = append(conds, "stage = "+arg(string(filter.Stage)))
	}
	if filter.OwnerID != nil {
		conds = append(conds, "owner_id = "+arg(*filter.OwnerID))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p := arg("%" + search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR company ILIKE %s OR email ILIKE %s)", p, p, p))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func classifyClientError(err error, msg string) error {
	if database.HasCode(err, database.CodeForeignKeyViolation) {
		return ErrUnknownOwner
	}
	if database.HasCode(err, database.CodeCheckViolation) {
		return ErrInvalidStage
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func scanClient(row pgx.Row) (*models.Client, error) {
	var c models.Client
	var stage string
	if err := row.Scan(
		&c.ID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Province, &c.Brand, &stage, &c.Value,
		&c.OwnerID, &c.Notes, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Stage = models.Stage(stage)
	return &c, nil
}
