package batch

import (
	"fmt"
	"maps"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/datazip-inc/olake-pager/constants"
	"github.com/datazip-inc/olake-pager/utils"
)

// Config describes the source database and the entities read from it
type Config struct {
	Driver        constants.DriverType `json:"driver" yaml:"driver" mapstructure:"driver" validate:"required,oneof=mysql postgres sqlite"`
	Host          string               `json:"host,omitempty" yaml:"host,omitempty" mapstructure:"host"`
	Port          int                  `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Username      string               `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`
	Password      string               `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	Database      string               `json:"database,omitempty" yaml:"database,omitempty" mapstructure:"database"`
	Path          string               `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
	DSN           string               `json:"dsn,omitempty" yaml:"dsn,omitempty" mapstructure:"dsn"`
	JDBCURLParams map[string]string    `json:"jdbc_url_params,omitempty" yaml:"jdbc_url_params,omitempty" mapstructure:"jdbc_url_params"`
	MaxThreads    int                  `json:"max_threads,omitempty" yaml:"max_threads,omitempty" mapstructure:"max_threads"`
	// SSLConfiguration applies to postgres only
	SSLConfiguration *utils.SSLConfig `json:"ssl,omitempty" yaml:"ssl,omitempty" mapstructure:"ssl"`
	SSHConfig        *utils.SSHConfig `json:"ssh_config,omitempty" yaml:"ssh_config,omitempty" mapstructure:"ssh_config"`
	// Params are exposed to templates as dataimporter.request.<name>
	Params   map[string]string `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
	Entities []Entity          `json:"entities" yaml:"entities" mapstructure:"entities" validate:"required,min=1,dive"`
}

// Entity is one paged statement set, named after the attributes it carries
type Entity struct {
	Name             string `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	BatchSize        int    `json:"batchSize" yaml:"batchSize" mapstructure:"batchSize" validate:"gt=0"`
	Query            string `json:"query" yaml:"query" mapstructure:"query" validate:"required"`
	DeltaQuery       string `json:"deltaQuery,omitempty" yaml:"deltaQuery,omitempty" mapstructure:"deltaQuery"`
	DeltaImportQuery string `json:"deltaImportQuery,omitempty" yaml:"deltaImportQuery,omitempty" mapstructure:"deltaImportQuery"`
	ParentDeltaQuery string `json:"parentDeltaQuery,omitempty" yaml:"parentDeltaQuery,omitempty" mapstructure:"parentDeltaQuery"`
	DeletedPKQuery   string `json:"deletedPkQuery,omitempty" yaml:"deletedPkQuery,omitempty" mapstructure:"deletedPkQuery"`
	PK               string `json:"pk,omitempty" yaml:"pk,omitempty" mapstructure:"pk" validate:"keylist"`
}

// Attributes renders the entity the way the cursor reads it
func (e *Entity) Attributes() map[string]string {
	return map[string]string{
		constants.EntityName:       e.Name,
		constants.BatchSize:        strconv.Itoa(e.BatchSize),
		constants.Query:            e.Query,
		constants.DeltaQuery:       e.DeltaQuery,
		constants.DeltaImportQuery: e.DeltaImportQuery,
		constants.ParentDeltaQuery: e.ParentDeltaQuery,
		constants.DeletedPKQuery:   e.DeletedPKQuery,
		constants.PrimaryKey:       e.PK,
	}
}

// URI generates the data source name for the configured driver
func (c *Config) URI() string {
	if c.DSN != "" {
		return c.DSN
	}

	switch c.Driver {
	case constants.MySQL:
		return c.MySQLConfig().FormatDSN()
	case constants.Postgres:
		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.Username, c.Password),
			Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:   "/" + c.Database,
		}
		query := u.Query()
		c.SSLConfiguration.Apply(query)
		for k, v := range c.JDBCURLParams {
			query.Set(k, v)
		}
		u.RawQuery = query.Encode()
		return u.String()
	default:
		return c.Path
	}
}

// MySQLConfig builds the go-sql-driver config from the connection fields
func (c *Config) MySQLConfig() *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	cfg.DBName = c.Database
	cfg.AllowNativePasswords = true
	// Note: It is not recommended to pass Java JDBC params to the MySQL go driver,
	// as these are two different ecosystems
	if len(c.JDBCURLParams) > 0 {
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		maps.Copy(cfg.Params, c.JDBCURLParams)
	}
	return cfg
}

// Validate checks the configuration for any missing or invalid fields and fills defaults
func (c *Config) Validate() error {
	if err := utils.Validate(c); err != nil {
		return err
	}

	if c.MaxThreads <= 0 {
		c.MaxThreads = constants.DefaultThreadCount
	}

	if c.DSN == "" {
		switch c.Driver {
		case constants.MySQL, constants.Postgres:
			if c.Host == "" {
				return fmt.Errorf("empty host name")
			} else if strings.Contains(c.Host, "https") || strings.Contains(c.Host, "http") {
				return fmt.Errorf("host should not contain http or https: %s", c.Host)
			}
			if c.Username == "" {
				return fmt.Errorf("username is required")
			}
			if c.Port == 0 {
				c.Port = map[constants.DriverType]int{constants.MySQL: 3306, constants.Postgres: 5432}[c.Driver]
			}
		case constants.SQLite:
			if c.Path == "" {
				return fmt.Errorf("path is required for sqlite")
			}
		}
	}

	if c.Driver == constants.Postgres && c.SSLConfiguration != nil {
		if err := c.SSLConfiguration.Validate(); err != nil {
			return fmt.Errorf("failed to validate ssl config: %s", err)
		}
	}

	if c.SSHConfig != nil {
		if c.Driver == constants.SQLite {
			return fmt.Errorf("ssh tunnel is not supported for sqlite")
		}
		if err := c.SSHConfig.Validate(); err != nil {
			return fmt.Errorf("failed to validate ssh config: %s", err)
		}
	}

	seen := make(map[string]bool, len(c.Entities))
	for _, entity := range c.Entities {
		if seen[entity.Name] {
			return fmt.Errorf("duplicate entity name: %s", entity.Name)
		}
		seen[entity.Name] = true
	}
	return nil
}

// Entity returns the entity named name
func (c *Config) Entity(name string) (*Entity, bool) {
	for idx := range c.Entities {
		if c.Entities[idx].Name == name {
			return &c.Entities[idx], true
		}
	}
	return nil, false
}
