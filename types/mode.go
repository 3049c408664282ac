package types

// ProcessType tells whether the current run is a full or an incremental import
type ProcessType string

const (
	FullDump  ProcessType = "FULL_DUMP"
	DeltaDump ProcessType = "DELTA_DUMP"
)

// QueryMode is the intent a cursor session was opened for
type QueryMode int

const (
	FullMode QueryMode = iota
	DeltaMode
	DeletedKeysMode
	ParentDeltaMode
)

func (m QueryMode) String() string {
	switch m {
	case FullMode:
		return "full"
	case DeltaMode:
		return "delta"
	case DeletedKeysMode:
		return "deleted_keys"
	case ParentDeltaMode:
		return "parent_delta"
	default:
		return "unknown"
	}
}
