package postgres

//nolint:revive
import (
	"net"
	"net/url"
	"time"

	"stagehand/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10
	postgresConnMaxLifetime   = 30 * time.Minute

	// sessions default to UTC so timestamptz columns scan as UTC instants
	defaultSessionTimezone = "UTC"
)

type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

type endpoint struct {
	name     string
	username string
	password string
	host     string
	port     string
	dbName   string
	sslMode  string
	timezone string
}

func New(config *config.Config) *Connection {
	return &Connection{
		Read:  CreatePostgresReadConn(*config),
		Write: CreatePostgresWriteConn(*config),
	}
}

// CreatePostgresWriteConn connects to the primary. Every write and every FOR UPDATE read goes here.
func CreatePostgresWriteConn(config config.Config) *sqlx.DB {
	return connect(config, newEndpoint("write", config.DB.Postgres.Write, config.DB.Postgres.Prefix))
}

// CreatePostgresReadConn connects to the replica used by list and get queries.
func CreatePostgresReadConn(config config.Config) *sqlx.DB {
	return connect(config, newEndpoint("read", config.DB.Postgres.Read, config.DB.Postgres.Prefix))
}

func connect(config config.Config, target endpoint) *sqlx.DB {
	return CreatePostgresConnection(target, config.DB.Postgres.MaxRetry, config.DB.Postgres.RetryWaitTime)
}

// newEndpoint prepends prefix to the node's database name.
func newEndpoint(name string, node config.PostgresNode, prefix string) endpoint {
	return endpoint{
		name:     name,
		username: node.Username,
		password: node.Password,
		host:     node.Host,
		port:     node.Port,
		dbName:   prefix + node.Name,
		sslMode:  node.SSLMode,
		timezone: node.Timezone,
	}
}

// DSN builds the lib/pq connection url for target.
func (target endpoint) DSN() string {
	query := url.Values{}
	query.Set("sslmode", target.sslMode)

	timezone := target.timezone
	if timezone == "" {
		timezone = defaultSessionTimezone
	}

	query.Set("timezone", timezone)

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(target.username, target.password),
		Host:     net.JoinHostPort(target.host, target.port),
		Path:     "/" + target.dbName,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

// CreatePostgresConnection creates a database connection, retrying up to maxRetry times.
func CreatePostgresConnection(target endpoint, maxRetry, waitTime int) *sqlx.DB {
	for retry := range max(maxRetry, 1) {
		sqlDB, err := sqlx.Connect("postgres", target.DSN())
		if err == nil {
			log.
				Info().
				Str("name", target.name).
				Str("host", target.host).
				Str("port", target.port).
				Str("dbName", target.dbName).
				Msg("Connected to database")
			sqlDB.SetMaxIdleConns(postgresMaxIdleConnection)
			sqlDB.SetMaxOpenConns(postgresMaxOpenConnection)
			sqlDB.SetConnMaxLifetime(postgresConnMaxLifetime)

			return sqlDB
		}

		log.
			Error().
			Err(err).
			Str("name", target.name).
			Str("host", target.host).
			Str("port", target.port).
			Str("dbName", target.dbName).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitTime) * time.Second)
	}

	log.Fatal().Str("name", target.name).Msg("Could not connect to database")

	return nil
}
