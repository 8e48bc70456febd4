// Package backup keeps snapshots of settings files so that changes made by
// set, unset, edit, and restore can be undone.
//
// Each settings file gets its own directory under [paths.BackupDir], and
// each snapshot is a timestamped directory inside it:
//
//	~/.config/keyconfig/backups/
//	└── settings.yaml-3f2a9c1b7d04/
//	    └── 20260123T100712.123456/
//	        ├── manifest.json
//	        └── settings.yaml
//
// The manifest records the original path, permissions, and a SHA256 hash
// that [Manager.Restore] verifies before writing the file back. Snapshots
// are written with owner-only permissions because settings files often
// hold credentials.
//
// Commands call [EnsureBackedUp] before writing, which snapshots a file at
// most once per process:
//
//	mgr := backup.NewManager(backup.WithRetentionCount(cfg.BackupRetention))
//	if err := backup.EnsureBackedUp(mgr, path); err != nil {
//	    return err
//	}
package backup
