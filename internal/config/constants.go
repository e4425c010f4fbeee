package config

const Version = "0.4.0"

// SourceFileExt is the extension of files holding one comprehension each.
const SourceFileExt = ".comp"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".comp", ".comprehension"}

// Project files searched for by FindConfig, in order.
var ConfigFileNames = []string{"comprehend.yaml", "comprehend.yml"}

// Import path and package name of the runtime the generated code calls.
const (
	RuntimeImportPath = "github.com/funvibe/comprehend/pkg/rt"
	RuntimePackage    = "rt"
)

// Identifiers introduced by generated code. The double underscore keeps
// them out of the way of user names.
const (
	SinkIdent  = "__sink"
	YieldIdent = "yield"
)

// Default Go type used when no element/key/value type is configured.
const DefaultType = "any"

// Runtime helpers referenced by the backends.
const (
	RangeFunc          = "Range"
	RangeInclusiveFunc = "RangeInclusive"
	CloneFunc          = "Clone"
	SnapshotFunc       = "Snapshot"
	FlattenFunc        = "Flatten"
	Flatten2Func       = "Flatten2"
)
