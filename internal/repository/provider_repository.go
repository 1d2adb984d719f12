package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/imanubhardwaj/easyappointments/internal/models"
)

// ProviderRepository provides persistence for providers.
type ProviderRepository struct {
	db *sqlx.DB
}

// NewProviderRepository creates a new provider repository.
func NewProviderRepository(db *sqlx.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

const providerColumns = "id, email, first_name, last_name, phone, timezone, working_plan, service_ids, password_hash, active, created_at, updated_at"

// List returns providers with optional filtering and pagination.
func (r *ProviderRepository) List(ctx context.Context, filter models.ProviderFilter) ([]models.Provider, int, error) {
	base := "FROM providers WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.ServiceID != "" {
		conditions = append(conditions, fmt.Sprintf("service_ids::jsonb ? $%d", len(args)+1))
		args = append(args, filter.ServiceID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY last_name ASC, first_name ASC LIMIT %d OFFSET %d", providerColumns, base, size, offset)
	var providers []models.Provider
	if err := r.db.SelectContext(ctx, &providers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list providers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count providers: %w", err)
	}

	return providers, total, nil
}

// FindByID loads a provider by id.
func (r *ProviderRepository) FindByID(ctx context.Context, id string) (*models.Provider, error) {
	query := fmt.Sprintf("SELECT %s FROM providers WHERE id = $1", providerColumns)
	var provider models.Provider
	if err := r.db.GetContext(ctx, &provider, query, id); err != nil {
		return nil, err
	}
	return &provider, nil
}

// FindByEmail loads a provider by email.
func (r *ProviderRepository) FindByEmail(ctx context.Context, email string) (*models.Provider, error) {
	query := fmt.Sprintf("SELECT %s FROM providers WHERE email = $1", providerColumns)
	var provider models.Provider
	if err := r.db.GetContext(ctx, &provider, query, email); err != nil {
		return nil, err
	}
	return &provider, nil
}

// ListByService returns active providers assigned to a service, in a stable
// order so any-provider resolution keeps ties deterministic.
func (r *ProviderRepository) ListByService(ctx context.Context, serviceID string) ([]models.Provider, error) {
	query := fmt.Sprintf("SELECT %s FROM providers WHERE active = TRUE AND service_ids::jsonb ? $1 ORDER BY created_at ASC, id ASC", providerColumns)
	var providers []models.Provider
	if err := r.db.SelectContext(ctx, &providers, query, serviceID); err != nil {
		return nil, fmt.Errorf("list providers by service: %w", err)
	}
	return providers, nil
}

// Create stores a new provider record.
func (r *ProviderRepository) Create(ctx context.Context, provider *models.Provider) error {
	if provider.ID == "" {
		provider.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if provider.CreatedAt.IsZero() {
		provider.CreatedAt = now
	}
	provider.UpdatedAt = now

	const query = `INSERT INTO providers (id, email, first_name, last_name, phone, timezone, working_plan, service_ids, password_hash, active, created_at, updated_at) VALUES (:id, :email, :first_name, :last_name, :phone, :timezone, :working_plan, :service_ids, :password_hash, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, provider); err != nil {
		return fmt.Errorf("create provider: %w", err)
	}
	return nil
}

// Update modifies a provider record.
func (r *ProviderRepository) Update(ctx context.Context, provider *models.Provider) error {
	provider.UpdatedAt = time.Now().UTC()
	const query = `UPDATE providers SET email = :email, first_name = :first_name, last_name = :last_name, phone = :phone, timezone = :timezone, working_plan = :working_plan, service_ids = :service_ids, password_hash = :password_hash, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, provider); err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	return nil
}

// Delete removes a provider by id.
func (r *ProviderRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM providers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	return nil
}
