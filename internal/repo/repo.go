package repo

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

type Profile struct {
	ID          int    `json:"id"`
	Login       string `json:"login"`
	Email       string `json:"email"`
	Description string `json:"description"`
	AvatarURL   string `json:"avatar_url"`
}

// CalcRun is one persisted ampacity solve.
type CalcRun struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Label     string    `json:"label"`
	Request   string    `json:"request"`
	AmpacityA float64   `json:"ampacity_a"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)
	GetProfileByID(ctx context.Context, id int) (Profile, error)
	UpdateProfile(ctx context.Context, id int, login, description string) (int, error)
	UpdateAvatar(ctx context.Context, id int, avatarURL string) error
	CountUsers(ctx context.Context) (int, error)

	SaveRun(ctx context.Context, userID int, label, request string, ampacity float64, status string) (int, error)
	ListRuns(ctx context.Context, userID, limit int) ([]CalcRun, error)
	LatestRuns(ctx context.Context, limit int) ([]CalcRun, error)
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserDB(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Open connects to Postgres using DATABASE_URL and exits on failure; the
// service cannot run without its store.
func Open() *sql.DB {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		connStr = "user=postgres dbname=postgres password=password sslmode=disable"
	}
	if !strings.Contains(connStr, "sslmode=") {
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			connStr = connStr + "?sslmode=require"
		} else {
			connStr = connStr + " sslmode=require"
		}
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("DB configuration error:", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		log.Fatal("DB not responding:", err)
	}
	return db
}

// EnsureSchema creates the account and calculation-run tables on first boot.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id          SERIAL PRIMARY KEY,
			login       TEXT NOT NULL UNIQUE,
			email       TEXT NOT NULL,
			password    TEXT NOT NULL,
			description TEXT,
			avatar_url  TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS calc_runs (
			id         SERIAL PRIMARY KEY,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			label      TEXT NOT NULL,
			request    TEXT NOT NULL,
			ampacity   DOUBLE PRECISION NOT NULL,
			status     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS calc_runs_user_idx ON calc_runs (user_id, created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

func (r *PostgresUserRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresUserRepository) GetProfileByID(ctx context.Context, id int) (Profile, error) {
	var p Profile
	query := "SELECT id, login, email, COALESCE(description, ''), COALESCE(avatar_url, '') FROM users WHERE id=$1"
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Login, &p.Email, &p.Description, &p.AvatarURL)
	return p, err
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id int, login, description string) (int, error) {
	query := "UPDATE users SET login=$2, description=$3 WHERE id=$1 RETURNING id"
	err := r.db.QueryRowContext(ctx, query, id, login, description).Scan(&id)
	return id, err
}

func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id int, avatarURL string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET avatar_url=$2 WHERE id=$1", id, avatarURL)
	return err
}

func (r *PostgresUserRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

func (r *PostgresUserRepository) SaveRun(ctx context.Context, userID int, label, request string, ampacity float64, status string) (int, error) {
	var id int
	query := `INSERT INTO calc_runs (user_id, label, request, ampacity, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, userID, label, request, ampacity, status).Scan(&id)
	return id, err
}

func (r *PostgresUserRepository) ListRuns(ctx context.Context, userID, limit int) ([]CalcRun, error) {
	query := `SELECT id, user_id, label, request, ampacity, status, created_at
	          FROM calc_runs WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`
	return r.scanRuns(ctx, query, userID, limit)
}

func (r *PostgresUserRepository) LatestRuns(ctx context.Context, limit int) ([]CalcRun, error) {
	query := `SELECT id, user_id, label, request, ampacity, status, created_at
	          FROM calc_runs ORDER BY created_at DESC LIMIT $1`
	return r.scanRuns(ctx, query, limit)
}

func (r *PostgresUserRepository) scanRuns(ctx context.Context, query string, args ...any) ([]CalcRun, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []CalcRun
	for rows.Next() {
		var run CalcRun
		if err := rows.Scan(&run.ID, &run.UserID, &run.Label, &run.Request, &run.AmpacityA, &run.Status, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
