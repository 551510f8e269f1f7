package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Configuration errors
	ConfigMissingTargetError
	ConfigMissingLocationsError
	ConfigEndDateError
	ConfigSameDatabaseError

	// Database errors
	DBNotConnectedError
	DBTargetExistsError
	DBCheckExistsError
	DBCreateDatabaseError
	DBDropDatabaseError
	DBQueryIDsError

	// Schema errors
	SchemaListTablesError
	SchemaReferencesError
	SchemaDeclaredReadError
	SchemaUnknownTableError

	// Query file errors
	QueryFileReadError
	QueryFileEmptyError

	// Copy errors
	CopyConnectionError
	CopyStructureError
	CopyCountError
	CopyInsertError
	CopyCommitError
	CopyMismatchError

	// Extraction errors
	ExtractPhaseError
	ExtractBackfillLimitError
	ExtractCancelledError
	ExtractNoRootError

	// Dump errors
	DumpStartError
	DumpExitError
)
