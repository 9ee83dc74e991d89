package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/agentboard/internal/model"
)

// Reference collections are read-only to the onboarding core. The Upsert
// methods exist for fixture import and tests.

var agentSortColumns = map[string]bool{
	"id": true, "name": true, "onboarding_status": true, "created_date": true,
}

const agentColumns = `id, name, email, npn, onboarding_status, nipr_status, ahip_completion_date, background_check_status, created_date`

// GetAgent retrieves an agent by ID. Returns ErrNotFound if absent.
func (s *Store) GetAgent(ctx context.Context, id string) (model.Agent, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+agentColumns+" FROM agents WHERE id = ?", id)

	a, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Agent{}, fmt.Errorf("get agent %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Agent{}, unavailable("get agent", err)
	}
	return a, nil
}

// ListAgents returns all agents. Default order is created_date ascending.
// Filter.AgentID is ignored.
func (s *Store) ListAgents(ctx context.Context, f Filter) ([]model.Agent, error) {
	order, err := orderBy(f.Sort, agentSortColumns, "created_date")
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+agentColumns+" FROM agents"+order)
	if err != nil {
		return nil, unavailable("list agents", err)
	}
	defer rows.Close()

	agents := []model.Agent{}
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("list agents: %w", err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate agents", err)
	}
	return agents, nil
}

// UpsertAgent inserts or replaces an agent record.
func (s *Store) UpsertAgent(ctx context.Context, a model.Agent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agents (`+agentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			npn = excluded.npn,
			onboarding_status = excluded.onboarding_status,
			nipr_status = excluded.nipr_status,
			ahip_completion_date = excluded.ahip_completion_date,
			background_check_status = excluded.background_check_status,
			created_date = excluded.created_date
	`,
		a.ID, a.Name, a.Email, a.NPN, a.OnboardingStatus, a.NIPRStatus,
		formatNullTime(a.AHIPCompletionDate), a.BackgroundCheckStatus, formatTime(a.CreatedDate),
	)
	if err != nil {
		return unavailable("upsert agent", err)
	}
	return nil
}

func scanAgent(sc scanner) (model.Agent, error) {
	var a model.Agent
	var ahip sql.NullString
	var created string

	if err := sc.Scan(
		&a.ID, &a.Name, &a.Email, &a.NPN, &a.OnboardingStatus, &a.NIPRStatus,
		&ahip, &a.BackgroundCheckStatus, &created,
	); err != nil {
		return model.Agent{}, err
	}

	var err error
	if a.AHIPCompletionDate, err = parseNullTime(ahip); err != nil {
		return model.Agent{}, fmt.Errorf("scan agent: %w", err)
	}
	if a.CreatedDate, err = parseTime(created); err != nil {
		return model.Agent{}, fmt.Errorf("scan agent: %w", err)
	}
	return a, nil
}

var documentSortColumns = map[string]bool{
	"id": true, "document_type": true, "status": true, "created_date": true,
}

// ListDocuments returns documents matching f. Default order is created_date ascending.
func (s *Store) ListDocuments(ctx context.Context, f Filter) ([]model.Document, error) {
	order, err := orderBy(f.Sort, documentSortColumns, "created_date")
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	conds, args := agentCond(f)

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, agent_id, document_type, status, created_date FROM documents"+where(conds)+order, args...)
	if err != nil {
		return nil, unavailable("list documents", err)
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		var d model.Document
		var created string
		if err := rows.Scan(&d.ID, &d.AgentID, &d.DocumentType, &d.Status, &created); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if d.CreatedDate, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate documents", err)
	}
	return docs, nil
}

// UpsertDocument inserts or replaces a document record.
func (s *Store) UpsertDocument(ctx context.Context, d model.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, agent_id, document_type, status, created_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			agent_id = excluded.agent_id,
			document_type = excluded.document_type,
			status = excluded.status,
			created_date = excluded.created_date
	`, d.ID, d.AgentID, d.DocumentType, d.Status, formatTime(d.CreatedDate))
	if err != nil {
		return unavailable("upsert document", err)
	}
	return nil
}

var licenseSortColumns = map[string]bool{
	"id": true, "state": true, "status": true, "expiration_date": true,
}

// ListLicenses returns licenses matching f. Default order is state ascending.
func (s *Store) ListLicenses(ctx context.Context, f Filter) ([]model.License, error) {
	order, err := orderBy(f.Sort, licenseSortColumns, "state")
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	conds, args := agentCond(f)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agent_id, state, license_number, status, nipr_verified, expiration_date
		FROM licenses`+where(conds)+order, args...)
	if err != nil {
		return nil, unavailable("list licenses", err)
	}
	defer rows.Close()

	licenses := []model.License{}
	for rows.Next() {
		var l model.License
		var expires sql.NullString
		if err := rows.Scan(&l.ID, &l.AgentID, &l.State, &l.LicenseNumber, &l.Status, &l.NIPRVerified, &expires); err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		if l.ExpirationDate, err = parseNullTime(expires); err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		licenses = append(licenses, l)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate licenses", err)
	}
	return licenses, nil
}

// UpsertLicense inserts or replaces a license record.
func (s *Store) UpsertLicense(ctx context.Context, l model.License) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO licenses (id, agent_id, state, license_number, status, nipr_verified, expiration_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			agent_id = excluded.agent_id,
			state = excluded.state,
			license_number = excluded.license_number,
			status = excluded.status,
			nipr_verified = excluded.nipr_verified,
			expiration_date = excluded.expiration_date
	`, l.ID, l.AgentID, l.State, l.LicenseNumber, l.Status, boolInt(l.NIPRVerified), formatNullTime(l.ExpirationDate))
	if err != nil {
		return unavailable("upsert license", err)
	}
	return nil
}

var appointmentSortColumns = map[string]bool{
	"id": true, "carrier_name": true, "appointment_status": true,
}

// ListAppointments returns carrier appointments matching f.
// Default order is carrier_name ascending.
func (s *Store) ListAppointments(ctx context.Context, f Filter) ([]model.Appointment, error) {
	order, err := orderBy(f.Sort, appointmentSortColumns, "carrier_name")
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	conds, args := agentCond(f)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agent_id, carrier_name, appointment_status
		FROM carrier_appointments`+where(conds)+order, args...)
	if err != nil {
		return nil, unavailable("list appointments", err)
	}
	defer rows.Close()

	appts := []model.Appointment{}
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.AgentID, &a.CarrierName, &a.AppointmentStatus); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate appointments", err)
	}
	return appts, nil
}

// UpsertAppointment inserts or replaces a carrier appointment record.
func (s *Store) UpsertAppointment(ctx context.Context, a model.Appointment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO carrier_appointments (id, agent_id, carrier_name, appointment_status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			agent_id = excluded.agent_id,
			carrier_name = excluded.carrier_name,
			appointment_status = excluded.appointment_status
	`, a.ID, a.AgentID, a.CarrierName, a.AppointmentStatus)
	if err != nil {
		return unavailable("upsert appointment", err)
	}
	return nil
}

var contractSortColumns = map[string]bool{
	"id": true, "carrier_name": true, "status": true,
}

// ListContracts returns contracts matching f. Default order is carrier_name ascending.
func (s *Store) ListContracts(ctx context.Context, f Filter) ([]model.Contract, error) {
	order, err := orderBy(f.Sort, contractSortColumns, "carrier_name")
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	conds, args := agentCond(f)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agent_id, carrier_name, status
		FROM contracts`+where(conds)+order, args...)
	if err != nil {
		return nil, unavailable("list contracts", err)
	}
	defer rows.Close()

	contracts := []model.Contract{}
	for rows.Next() {
		var c model.Contract
		if err := rows.Scan(&c.ID, &c.AgentID, &c.CarrierName, &c.Status); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate contracts", err)
	}
	return contracts, nil
}

// UpsertContract inserts or replaces a contract record.
func (s *Store) UpsertContract(ctx context.Context, c model.Contract) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (id, agent_id, carrier_name, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			agent_id = excluded.agent_id,
			carrier_name = excluded.carrier_name,
			status = excluded.status
	`, c.ID, c.AgentID, c.CarrierName, c.Status)
	if err != nil {
		return unavailable("upsert contract", err)
	}
	return nil
}

func agentCond(f Filter) ([]string, []any) {
	if f.AgentID == "" {
		return nil, nil
	}
	return []string{"agent_id = ?"}, []any{f.AgentID}
}
