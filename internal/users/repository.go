package users

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saferound/saferound/internal/bac"
)

// Sentinel errors surfaced by the repository.
var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

// Repository defines persistence for user profiles.
type Repository interface {
	Create(ctx context.Context, p Profile) (Profile, error)
	Get(ctx context.Context, userID string) (Profile, error)
	Upsert(ctx context.Context, p Profile) error
	Patch(ctx context.Context, userID string, patch ProfilePatch) error
	SetCutOff(ctx context.Context, userID string, cutOff bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const profileColumns = `user_id, age, weight_kg, sex, primary_contact, emergency_contacts, height_cm, tolerance, is_cut_off, created_at, updated_at`

func (r *repository) Create(ctx context.Context, p Profile) (Profile, error) {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.UserID, p.Age, p.WeightKg, string(p.Sex), p.PrimaryContact, p.EmergencyContacts,
		p.HeightCm, p.Tolerance, p.IsCutOff, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Profile{}, ErrDuplicate
		}
		return Profile{}, err
	}
	return p, nil
}

func (r *repository) Get(ctx context.Context, userID string) (Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE user_id = $1`, userID)
	return scanProfile(row)
}

// Upsert replaces the mutable profile fields. is_cut_off is deliberately left
// alone on update; only SetCutOff changes it.
func (r *repository) Upsert(ctx context.Context, p Profile) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			age = EXCLUDED.age,
			weight_kg = EXCLUDED.weight_kg,
			sex = EXCLUDED.sex,
			primary_contact = EXCLUDED.primary_contact,
			emergency_contacts = EXCLUDED.emergency_contacts,
			height_cm = EXCLUDED.height_cm,
			tolerance = EXCLUDED.tolerance,
			updated_at = EXCLUDED.updated_at`,
		p.UserID, p.Age, p.WeightKg, string(p.Sex), p.PrimaryContact, p.EmergencyContacts,
		p.HeightCm, p.Tolerance, p.IsCutOff, now,
	)
	return err
}

// Patch updates only the provided fields, building the SET clause dynamically.
func (r *repository) Patch(ctx context.Context, userID string, patch ProfilePatch) error {
	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Age != nil {
		add("age", *patch.Age)
	}
	if patch.WeightKg != nil {
		add("weight_kg", *patch.WeightKg)
	}
	if patch.Sex != nil {
		add("sex", string(*patch.Sex))
	}
	if patch.PrimaryContact != nil {
		add("primary_contact", *patch.PrimaryContact)
	}
	if patch.EmergencyContacts != nil {
		add("emergency_contacts", patch.EmergencyContacts)
	}
	if patch.HeightCm != nil {
		add("height_cm", *patch.HeightCm)
	}
	if patch.Tolerance != nil {
		add("tolerance", *patch.Tolerance)
	}
	if len(sets) == 0 {
		return nil
	}
	add("updated_at", time.Now().UTC())

	args = append(args, userID)
	query := "UPDATE users SET "
	for i, s := range sets {
		if i > 0 {
			query += ", "
		}
		query += s
	}
	query += " WHERE user_id = $" + strconv.Itoa(len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetCutOff(ctx context.Context, userID string, cutOff bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_cut_off = $1, updated_at = $2 WHERE user_id = $3`,
		cutOff, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	var sex string
	err := row.Scan(&p.UserID, &p.Age, &p.WeightKg, &sex, &p.PrimaryContact, &p.EmergencyContacts,
		&p.HeightCm, &p.Tolerance, &p.IsCutOff, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	p.Sex = bac.Sex(sex)
	return p, nil
}
