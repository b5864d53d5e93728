package file

import "os"

// Exists returns a bool indicating if the specified file exists or not.
func Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}
