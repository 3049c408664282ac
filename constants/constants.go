package constants

import "time"

// entity attributes
const (
	BatchSize        = "batchSize"
	Query            = "query"
	DeltaQuery       = "deltaQuery"
	DeltaImportQuery = "deltaImportQuery"
	ParentDeltaQuery = "parentDeltaQuery"
	DeletedPKQuery   = "deletedPkQuery"
	PrimaryKey       = "pk"
	EntityName       = "name"
)

// variable namespaces resolvable from statement templates
const (
	DeltaNamespace   = "dataimporter.delta."
	RequestNamespace = "dataimporter.request."
	LastIndexTime    = "dataimporter.last_index_time"
	IndexStartTime   = "dataimporter.index_start_time"
)

const (
	// WatermarkColumn is the only column the cursor resumes on
	WatermarkColumn    = "id"
	DefaultThreadCount = 3
	IndexTimeFormat    = "2006-01-02 15:04:05"
	PingTimeout        = 10 * time.Second
)

// record metadata added by the destination
const (
	OpType   = "_op_type"
	EntityID = "_entity"
	OpRead   = "r"
	OpUpsert = "u"
	OpDelete = "d"
	OpParent = "p"
)

// viper keys
const (
	ConfigFolder = "CONFIG_FOLDER"
	StatePath    = "STATE_PATH"
	OutputPath   = "OUTPUT_PATH"
	MetricsPath  = "METRICS_PATH"
	LogLevel     = "LOG_LEVEL"
	EnvPrefix    = "OLAKE_PAGER"
)

type DriverType string

const (
	MySQL    DriverType = "mysql"
	Postgres DriverType = "postgres"
	SQLite   DriverType = "sqlite"
)
