// Package paths resolves the directories and files keyconfig uses.
//
// Locations follow the XDG Base Directory conventions through
// github.com/adrg/xdg:
//
//	| File             | Default location                       |
//	|------------------|----------------------------------------|
//	| CLI config       | <ConfigHome>/keyconfig/config.yaml     |
//	| settings store   | <ConfigHome>/keyconfig/settings.yaml   |
//
// KEYCONFIG_CONFIG_DIR replaces <ConfigHome>/keyconfig for both files.
package paths
