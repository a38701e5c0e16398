package util

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/workledger/registry-services/constants"
)

// StringListContains returns true if the list of strings contains item.
func StringListContains(list []string, item string) bool {
	for i := range list {
		if list[i] == item {
			return true
		}
	}
	return false
}

// FileExists returns true if a file or directory exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ExpandTilde expands a leading ~ to the current user's home directory.
func ExpandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("cannot expand %s: %v", path, err)
	}
	return filepath.Join(usr.HomeDir, strings.TrimPrefix(path, "~")), nil
}

// ProjectRoot returns the root directory of this source tree. Tests
// use it to find files under testdata.
func ProjectRoot() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Dir(filepath.Dir(thisFile))
}

// HasAllowedExtension returns true if filename ends in one of the
// extensions we accept for registration.
func HasAllowedExtension(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ext != "" && StringListContains(constants.AllowedExtensions, ext)
}
