package classify

// DiffType is the change direction of a patch line.
type DiffType int

const (
	Unknown DiffType = iota
	Addition
	Deletion
)

// String returns the column value of the diff type.
func (d DiffType) String() string {
	switch d {
	case Addition:
		return "Addition"
	case Deletion:
		return "Deletion"
	default:
		return "Unknown"
	}
}

// DeclarationType is the kind of declaration a line looks like.
type DeclarationType int

const (
	Type DeclarationType = iota
	Var
)

// String returns the column value of the declaration type.
func (d DeclarationType) String() string {
	if d == Var {
		return "Var"
	}
	return "Type"
}

// Record is one emitted row: a classified line plus the identifying fields of
// its commit, file and repository.
type Record struct {
	DiffType          DiffType
	LineContent       string
	DeclarationType   DeclarationType
	Indentation       int
	SecondsSinceEpoch int64
	CommitHash        string
	FileName          string
	ProjectName       string
	Committer         string // empty when the commit has no committer name
}

// Columns lists the record fields in output order.
var Columns = []string{
	"diff_type",
	"line_content",
	"declaration_type",
	"indentation",
	"seconds_since_epoch",
	"commit_hash",
	"file_name",
	"project_name",
	"committer",
}
