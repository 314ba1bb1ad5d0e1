//go:build windows

package config

// POSIX variable names used in shared config files, mapped to their Windows equivalents.
var windowsEnvAliases = map[string]string{
	"HOSTNAME": "COMPUTERNAME",
	"HOME":     "USERPROFILE",
	"TMPDIR":   "TEMP",
}

func mapEnvKey(key string) string {
	if alias, ok := windowsEnvAliases[key]; ok {
		return alias
	}
	return key
}
