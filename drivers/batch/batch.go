package batch

import (
	"context"
	"database/sql"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/ssh"

	"github.com/datazip-inc/olake-pager/constants"
	"github.com/datazip-inc/olake-pager/pkg/jdbc"
	"github.com/datazip-inc/olake-pager/utils"
	"github.com/datazip-inc/olake-pager/utils/logger"

	// SQLite driver
	_ "modernc.org/sqlite"
)

// Source owns the connection to the database the entities are read from
type Source struct {
	config    *Config
	client    *sqlx.DB
	sshClient *ssh.Client
}

func NewSource(config *Config) *Source {
	return &Source{config: config}
}

// Setup validates the config, opens the connection and pings it
func (s *Source) Setup(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %s", err)
	}

	client, err := s.open()
	if err != nil {
		s.Close()
		return fmt.Errorf("failed to open database connection: %s", err)
	}
	// pages of every entity stream on their own connection
	client.SetMaxOpenConns(s.config.MaxThreads + 1)
	if s.config.Driver == constants.SQLite {
		client.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, constants.PingTimeout)
	defer cancel()
	if err := client.PingContext(pingCtx); err != nil {
		client.Close()
		s.Close()
		return fmt.Errorf("failed to ping database: %s", err)
	}

	flavor, major, minor, err := jdbc.ServerVersion(ctx, client, s.config.Driver)
	if err != nil {
		logger.Warnf("failed to fetch server version: %s", err)
	} else {
		logger.Infof("Connected to %s %d.%d", flavor, major, minor)
	}

	s.client = client
	return nil
}

func (s *Source) open() (*sqlx.DB, error) {
	driverName, err := jdbc.SQLDriverName(s.config.Driver)
	if err != nil {
		return nil, err
	}
	if s.config.SSHConfig == nil {
		return sqlx.Open(driverName, s.config.URI())
	}

	logger.Infof("Opening ssh tunnel through %s:%d", s.config.SSHConfig.Host, s.config.SSHConfig.Port)
	sshClient, err := s.config.SSHConfig.Connect()
	if err != nil {
		return nil, err
	}
	s.sshClient = sshClient
	dial := utils.Dialer(sshClient)

	switch s.config.Driver {
	case constants.MySQL:
		// every source registers its own network so tunnels never mix
		network := "ssh+" + utils.ULID()
		mysql.RegisterDialContext(network, func(ctx context.Context, addr string) (net.Conn, error) {
			return dial(ctx, "tcp", addr)
		})
		cfg := s.config.MySQLConfig()
		cfg.Net = network
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, err
		}
		return sqlx.NewDb(sql.OpenDB(connector), driverName), nil
	case constants.Postgres:
		connConfig, err := pgx.ParseConfig(s.config.URI())
		if err != nil {
			return nil, err
		}
		connConfig.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dial(ctx, network, addr)
		}
		return sqlx.NewDb(stdlib.OpenDB(*connConfig), driverName), nil
	default:
		return nil, fmt.Errorf("ssh tunnel is not supported for %s", s.config.Driver)
	}
}

// Reader returns the row source page statements are executed on
func (s *Source) Reader() *jdbc.Reader {
	return jdbc.NewReader(s.client)
}

func (s *Source) Client() *sqlx.DB {
	return s.client
}

func (s *Source) Config() *Config {
	return s.config
}

func (s *Source) Close() error {
	var err error
	if s.client != nil {
		err = s.client.Close()
		s.client = nil
	}
	if s.sshClient != nil {
		if sshErr := s.sshClient.Close(); sshErr != nil && err == nil {
			err = sshErr
		}
		s.sshClient = nil
	}
	return err
}
