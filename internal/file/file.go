package file

import "os"

// Exists returns a bool indicating if the specified file exists or not. It
// returns false if there is any error checking for the file's existence.
func Exists(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return true
}
