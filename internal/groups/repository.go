package groups

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saferound/saferound/internal/platform/db"
)

// ErrNotFound indicates the group (or membership) does not exist.
var ErrNotFound = errors.New("group not found")

// Repository defines persistence for groups and notifications.
type Repository interface {
	CreateGroup(ctx context.Context, group Group) error
	GetGroup(ctx context.Context, groupID string) (Group, error)
	AddMember(ctx context.Context, groupID, userID string) error
	FindByMember(ctx context.Context, userID string) (Group, error)
	ListMembers(ctx context.Context, groupID string) ([]string, error)
	InsertNotifications(ctx context.Context, notifications []Notification) error
	ListNotifications(ctx context.Context, recipientID string) ([]Notification, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// CreateGroup writes the group and the owner membership together.
func (r *repository) CreateGroup(ctx context.Context, group Group) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO groups (group_id, name, owner_id, created_at) VALUES ($1, $2, $3, $4)`,
			group.ID, group.Name, group.OwnerID, group.CreatedAt,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)`,
			group.ID, group.OwnerID, group.CreatedAt,
		)
		return err
	})
}

func (r *repository) GetGroup(ctx context.Context, groupID string) (Group, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT group_id, name, owner_id, created_at FROM groups WHERE group_id = $1`, groupID)
	var g Group
	err := row.Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrNotFound
	}
	if err != nil {
		return Group{}, err
	}
	return g, nil
}

func (r *repository) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, userID, time.Now().UTC())
	return err
}

func (r *repository) FindByMember(ctx context.Context, userID string) (Group, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT g.group_id, g.name, g.owner_id, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.group_id
		WHERE m.user_id = $1
		ORDER BY m.joined_at DESC LIMIT 1`, userID)
	var g Group
	err := row.Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrNotFound
	}
	if err != nil {
		return Group{}, err
	}
	return g, nil
}

func (r *repository) ListMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY joined_at ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

func (r *repository) InsertNotifications(ctx context.Context, notifications []Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, n := range notifications {
			if _, err := tx.Exec(ctx, `
				INSERT INTO notifications (notification_id, group_id, recipient_id, about_user_id, message, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				n.ID, n.GroupID, n.RecipientID, n.AboutUserID, n.Message, n.CreatedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) ListNotifications(ctx context.Context, recipientID string) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT notification_id, group_id, recipient_id, about_user_id, message, created_at
		FROM notifications WHERE recipient_id = $1
		ORDER BY created_at DESC LIMIT 100`, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.GroupID, &n.RecipientID, &n.AboutUserID, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
