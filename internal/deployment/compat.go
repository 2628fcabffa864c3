package deployment

import "racectl/internal/version"

// Compatible reports whether a record stamped with recordVersion can be used
// by a tool running toolVersion: same major and minor, and a patch no newer
// than the tool's. A tool version that does not parse, such as a "dev"
// build, accepts every record. A record version that does not parse is
// never compatible.
func Compatible(toolVersion, recordVersion string) bool {
	tool, err := version.Parse(toolVersion)
	if err != nil {
		return true
	}
	record, err := version.Parse(recordVersion)
	if err != nil {
		return false
	}
	return version.IsCompatible(tool, record)
}
