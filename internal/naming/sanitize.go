package naming

import "strings"

// errorLogReplacer turns path separators, drive colons and dots into a
// filler so any input path becomes a single flat file name.
var errorLogReplacer = strings.NewReplacer("/", "_", `\`, "_", ":", "_", ".", "_")

// ErrorLogName returns the error-log file name for an input path.
//
//	input/parts/cup.obj → input_parts_cup_obj.txt
func ErrorLogName(inputPath string) string {
	return errorLogReplacer.Replace(inputPath) + ".txt"
}
