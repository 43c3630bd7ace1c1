// Package sqldb provides the SQL implementation of storage.Storage.
// The same queries run on PostgreSQL (through the pgx stdlib driver) and on
// SQLite (through the pure Go modernc driver); the schema of each dialect is
// migrated with goose from the embedded migrations directory.
// Every query touching the addresses table is filtered by user_id.
package sqldb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/patric-chuzhbe/favaddr/internal/db/storage"
	"github.com/patric-chuzhbe/favaddr/internal/models"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Dialect selects the SQL engine behind a DB.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const pgUniqueViolation = "23505"

// goose keeps its dialect and filesystem in package globals.
var migrateMu sync.Mutex

type initOptions struct {
	DBPreReset bool
}

// InitOption configures New.
type InitOption func(*initOptions)

// WithDBPreReset drops the schema before migrating. Used by tests.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// DB is a storage.Storage backed by database/sql.
type DB struct {
	database          *sql.DB
	dialect           Dialect
	connectionTimeout time.Duration
	now               func() time.Time
}

// New opens the database described by dsn and migrates it to the latest
// schema. For SQLite dsn is a file path.
func New(
	ctx context.Context,
	dialect Dialect,
	dsn string,
	connectionTimeout time.Duration,
	optionsProto ...InitOption,
) (*DB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	var (
		database *sql.DB
		err      error
	)
	switch dialect {
	case DialectPostgres:
		database, err = sql.Open("pgx", dsn)
	case DialectSQLite:
		database, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err == nil {
			// one writer at a time, as SQLite serializes writes anyway
			database.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("in internal/db/sqldb/sqldb.go/New(): unknown dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("in internal/db/sqldb/sqldb.go/New(): error while `sql.Open()` calling: %w", err)
	}

	result := &DB{
		database:          database,
		dialect:           dialect,
		connectionTimeout: connectionTimeout,
		now:               time.Now,
	}

	if err := result.Ping(ctx); err != nil {
		return nil, errors.Join(
			fmt.Errorf("in internal/db/sqldb/sqldb.go/New(): error while `result.Ping()` calling: %w", err),
			database.Close(),
		)
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil, errors.Join(
				fmt.Errorf("in internal/db/sqldb/sqldb.go/New(): error while `result.resetDB()` calling: %w", err),
				database.Close(),
			)
		}
	}

	if err := result.migrate(ctx); err != nil {
		return nil, errors.Join(
			fmt.Errorf("in internal/db/sqldb/sqldb.go/New(): error while `result.migrate()` calling: %w", err),
			database.Close(),
		)
	}

	return result, nil
}

func (db *DB) migrate(ctx context.Context) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	gooseDialect := "postgres"
	if db.dialect == DialectSQLite {
		gooseDialect = "sqlite3"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}

	return goose.UpContext(ctx, db.database, "migrations/"+string(db.dialect))
}

func (db *DB) resetDB(ctx context.Context) error {
	statements := []string{
		`DROP TABLE IF EXISTS addresses`,
		`DROP TABLE IF EXISTS users`,
		`DROP TABLE IF EXISTS goose_db_version`,
	}
	for _, statement := range statements {
		if _, err := db.database.ExecContext(ctx, statement); err != nil {
			return err
		}
	}

	return nil
}

// rebind turns $N placeholders into the ?N form SQLite documents.
func (db *DB) rebind(query string) string {
	if db.dialect != DialectSQLite {
		return query
	}

	return strings.ReplaceAll(query, "$", "?")
}

const sqliteParams = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// sqliteDSN appends the connection pragmas to a file path or a file: URI
// that may already carry its own query.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqliteParams
	}
	return dsn + "?" + sqliteParams
}

func (db *DB) timestamp() time.Time {
	return db.now().UTC().Truncate(time.Microsecond)
}

func (db *DB) isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// modernc connections report extended result codes
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}

	return false
}

// CreateUser inserts a user. A taken email yields models.ErrDuplicateEmail.
func (db *DB) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	createdAt := db.timestamp()

	row := db.database.QueryRowContext(
		ctx,
		db.rebind(`INSERT INTO users (email, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id`),
		email,
		passwordHash,
		createdAt,
	)
	var userID int64
	if err := row.Scan(&userID); err != nil {
		if db.isUniqueViolation(err) {
			return nil, models.ErrDuplicateEmail
		}
		return nil, err
	}

	return &models.User{
		ID:           userID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}, nil
}

// GetUserByEmail looks a user up by exact email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.getUser(
		ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`,
		email,
	)
}

// GetUserByID looks a user up by id.
func (db *DB) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	return db.getUser(
		ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = $1`,
		userID,
	)
}

func (db *DB) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	row := db.database.QueryRowContext(ctx, db.rebind(query), arg)

	var (
		usr       models.User
		createdAt timestamp
	)
	err := row.Scan(&usr.ID, &usr.Email, &usr.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	usr.CreatedAt = createdAt.Time

	return &usr, nil
}

// ForUser returns the address operations restricted to one owner.
func (db *DB) ForUser(userID int64) storage.AddressScope {
	return &addressScope{db: db, userID: userID}
}

func (db *DB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (db *DB) GetNumberOfAddresses(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM addresses`)
}

func (db *DB) count(ctx context.Context, query string) (int64, error) {
	var result int64
	if err := db.database.QueryRowContext(ctx, query).Scan(&result); err != nil {
		return 0, err
	}

	return result, nil
}

// Ping verifies connectivity within the configured timeout.
func (db *DB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

func (db *DB) Close() error {
	return db.database.Close()
}
