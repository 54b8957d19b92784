package warcrec

import "fmt"

// ProtocolVersion is the WARC/<major>.<minor> token on a record's first
// line.
type ProtocolVersion struct {
	Major uint8
	Minor uint8
}

// Canonical versions.
var (
	V1_0 = ProtocolVersion{Major: 1, Minor: 0}
	V1_1 = ProtocolVersion{Major: 1, Minor: 1}
)

func (v ProtocolVersion) String() string {
	return fmt.Sprintf("WARC/%d.%d", v.Major, v.Minor)
}
