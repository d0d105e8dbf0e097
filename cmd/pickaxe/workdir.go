package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
)

// sensitiveDirs 不适合作为工作目录的系统路径
var sensitiveDirs = []*regexp.Regexp{
	regexp.MustCompile(`^/$`),
	regexp.MustCompile(`^/usr`),
	regexp.MustCompile(`^/etc`),
	regexp.MustCompile(`^/var`),
	regexp.MustCompile(`^/bin`),
	regexp.MustCompile(`^/sbin`),
	regexp.MustCompile(`^/lib`),
	regexp.MustCompile(`^/opt`),
	regexp.MustCompile(`^/proc`),
	regexp.MustCompile(`^/sys`),
	regexp.MustCompile(`^/dev`),
	regexp.MustCompile(`^/tmp`),
}

// resolveWorkDir 校验 -C 指定的目录，返回解析符号链接后的绝对路径和可选的警告
func resolveWorkDir(dir, home string) (string, string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return "", "", fmt.Errorf("directory '%s' does not exist", abs)
	}
	if err != nil {
		return "", "", err
	}
	if !info.IsDir() {
		return "", "", fmt.Errorf("'%s' is not a directory", abs)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", "", err
	}
	if runtime.GOOS == "windows" {
		return resolved, "", nil
	}

	for _, re := range sensitiveDirs {
		if re.MatchString(resolved) {
			return resolved, fmt.Sprintf("you are about to run pickaxe in a system directory: %s\n"+
				"   Consider using a dedicated workspace directory instead.", resolved), nil
		}
	}
	if home != "" && resolved == home {
		return resolved, fmt.Sprintf("you are about to run pickaxe in your home directory: %s\n"+
			"   Consider using a dedicated workspace directory like ~/workspace or ~/projects.", resolved), nil
	}
	return resolved, "", nil
}
